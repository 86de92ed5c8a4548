// Package smtp delivers composed messages over SMTP.
package smtp

import (
	"context"
	"io"

	mail "gopkg.in/mail.v2"

	genericmail "github.com/kevinrenskers/generic-mail"
)

var _ genericmail.Sender = &SMTPSender{}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
}

// dialer is the part of mail.Dialer the sender uses.
type dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type SMTPSender struct {
	dialer dialer
}

func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{
		dialer: mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPSender) SendMessage(ctx context.Context, m *genericmail.Message) error {
	if err := validateMessage(m); err != nil {
		return err
	}

	// mail.v2 dials synchronously with no context support, so cancellation
	// is only honored up front.
	if err := ctx.Err(); err != nil {
		return genericmail.NewServiceError("context cancelled before send", err)
	}

	if err := s.dialer.DialAndSend(buildMessage(m)); err != nil {
		return genericmail.NewServiceError("failed to send over smtp", err)
	}
	return nil
}

func buildMessage(m *genericmail.Message) *mail.Message {
	msg := mail.NewMessage()

	msg.SetHeader("From", m.FromAddress)
	msg.SetHeader("To", m.ToAddresses...)
	if len(m.CCAddresses) > 0 {
		msg.SetHeader("Cc", m.CCAddresses...)
	}
	if len(m.BCCAddresses) > 0 {
		msg.SetHeader("Bcc", m.BCCAddresses...)
	}
	msg.SetHeader("Subject", m.Subject)

	for name, value := range m.Headers {
		msg.SetHeader(name, value)
	}

	msg.SetBody(m.ContentType, m.Body)
	if m.Alternative != nil {
		msg.AddAlternative(m.Alternative.ContentType, m.Alternative.Body)
	}

	for _, a := range m.Attachments {
		content := a.Content
		msg.Attach(a.FileName,
			mail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			mail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}

	return msg
}

func validateMessage(m *genericmail.Message) error {
	if m.FromAddress == "" {
		return genericmail.NewValidationError("from address is required", nil)
	}

	if len(m.ToAddresses)+len(m.CCAddresses)+len(m.BCCAddresses) == 0 {
		return genericmail.NewValidationError("at least one recipient is required", nil)
	}

	if m.Body == "" {
		return genericmail.NewValidationError("message body is required", nil)
	}

	return nil
}
