package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/mail"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	genericmail "github.com/kevinrenskers/generic-mail"
)

var _ genericmail.Sender = &GmailSender{}

type GmailSender struct {
	service *gmail.Service
	userID  string
}

func NewGmailSender(ctx context.Context, credentialsJSON []byte, userEmail string) (*GmailSender, error) {
	config, err := google.JWTConfigFromJSON(credentialsJSON, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account file: %v", err)
	}

	config.Subject = userEmail

	service, err := gmail.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Gmail client: %v", err)
	}

	return &GmailSender{
		service: service,
		userID:  "me",
	}, nil
}

func (g *GmailSender) SendMessage(ctx context.Context, m *genericmail.Message) error {
	if err := validateMessage(m); err != nil {
		return err
	}

	message, err := createMessage(m)
	if err != nil {
		return genericmail.NewValidationError("Failed to create message", err)
	}

	_, err = g.service.Users.Messages.Send(g.userID, message).Context(ctx).Do()
	if err != nil {
		return mapGmailError(err)
	}

	return nil
}

func createMessage(m *genericmail.Message) (*gmail.Message, error) {
	headers := []string{
		fmt.Sprintf("From: %s", m.FromAddress),
		fmt.Sprintf("To: %s", strings.Join(m.ToAddresses, ", ")),
		fmt.Sprintf("Subject: %s", mime.QEncoding.Encode("utf-8", m.Subject)),
		"MIME-Version: 1.0",
	}

	if len(m.CCAddresses) > 0 {
		headers = append(headers, fmt.Sprintf("Cc: %s", strings.Join(m.CCAddresses, ", ")))
	}

	if len(m.BCCAddresses) > 0 {
		headers = append(headers, fmt.Sprintf("Bcc: %s", strings.Join(m.BCCAddresses, ", ")))
	}

	for _, name := range sortedHeaderNames(m.Headers) {
		headers = append(headers, fmt.Sprintf("%s: %s", name, m.Headers[name]))
	}

	var body string
	if m.Alternative != nil {
		boundary := "alt_" + uuid.NewString()
		headers = append(headers, fmt.Sprintf("Content-Type: multipart/alternative; boundary=%s", boundary))
		body = fmt.Sprintf(`
--%s
Content-Type: %s; charset=utf-8
Content-Transfer-Encoding: 8bit

%s

--%s
Content-Type: %s; charset=utf-8
Content-Transfer-Encoding: 8bit

%s

--%s--`, boundary, m.ContentType, m.Body, boundary, m.Alternative.ContentType, m.Alternative.Body, boundary)
	} else {
		headers = append(headers, fmt.Sprintf("Content-Type: %s; charset=utf-8", m.ContentType))
		headers = append(headers, "Content-Transfer-Encoding: 8bit")
		body = m.Body
	}

	if len(m.Attachments) > 0 {
		return createMessageWithAttachments(headers, body, m.Attachments)
	}

	raw := strings.Join(headers, "\r\n") + "\r\n\r\n" + body

	return &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}, nil
}

func createMessageWithAttachments(headers []string, body string, attachments []genericmail.Attachment) (*gmail.Message, error) {
	boundary := "mixed_" + uuid.NewString()

	// The body keeps the content type negotiated above; it becomes the
	// first part of the mixed message.
	var bodyContentType string
	for i, header := range headers {
		if strings.HasPrefix(header, "Content-Type:") {
			bodyContentType = strings.TrimSpace(strings.TrimPrefix(header, "Content-Type:"))
			headers[i] = fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s", boundary)
			break
		}
	}
	if bodyContentType == "" {
		bodyContentType = "text/plain; charset=utf-8"
		headers = append(headers, fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s", boundary))
	}

	var parts []string

	bodyPart := fmt.Sprintf(`--%s
Content-Type: %s

%s`, boundary, bodyContentType, body)
	parts = append(parts, bodyPart)

	for _, attachment := range attachments {
		encodedContent := base64.StdEncoding.EncodeToString(attachment.Content)

		attachmentPart := fmt.Sprintf(`--%s
Content-Type: %s; name="%s"
Content-Disposition: attachment; filename="%s"
Content-Transfer-Encoding: base64

%s`, boundary, attachment.ContentType, attachment.FileName, attachment.FileName, encodedContent)
		parts = append(parts, attachmentPart)
	}

	parts = append(parts, fmt.Sprintf("--%s--", boundary))

	raw := strings.Join(headers, "\r\n") + "\r\n\r\n" + strings.Join(parts, "\r\n")

	return &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}, nil
}

// Headers are emitted in a stable order so equivalent messages produce
// identical raw payloads.
func sortedHeaderNames(headers map[string]string) []string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateMessage(m *genericmail.Message) error {
	if m.FromAddress == "" {
		return genericmail.NewValidationError("From address is required", nil)
	}

	if _, err := mail.ParseAddress(m.FromAddress); err != nil {
		return genericmail.NewInvalidEmailError("Invalid from address format", err)
	}

	if len(m.ToAddresses) == 0 && len(m.CCAddresses) == 0 && len(m.BCCAddresses) == 0 {
		return genericmail.NewValidationError("At least one recipient is required", nil)
	}

	allRecipients := append(m.ToAddresses, m.CCAddresses...)
	allRecipients = append(allRecipients, m.BCCAddresses...)
	for _, addr := range allRecipients {
		if _, err := mail.ParseAddress(addr); err != nil {
			return genericmail.NewInvalidEmailError(fmt.Sprintf("Invalid recipient address format: %s", addr), err)
		}
	}

	if m.Subject == "" {
		return genericmail.NewValidationError("Subject is required", nil)
	}

	if m.Body == "" {
		return genericmail.NewValidationError("Message body is required", nil)
	}

	return nil
}

func mapGmailError(err error) error {
	if apiErr, ok := err.(*googleapi.Error); ok {
		message := strings.ToLower(apiErr.Message)

		switch apiErr.Code {
		case 400:
			if strings.Contains(message, "invalid") &&
				(strings.Contains(message, "recipient") ||
					strings.Contains(message, "email") ||
					strings.Contains(message, "address")) {
				return genericmail.NewInvalidEmailError("Invalid email address", err)
			}
			if strings.Contains(message, "malformed") || strings.Contains(message, "encoding") {
				return genericmail.NewValidationError("Invalid message format", err)
			}
			if strings.Contains(message, "too large") || strings.Contains(message, "size") {
				return genericmail.NewValidationError("Message too large", err)
			}
			return genericmail.NewValidationError("Invalid request parameters", err)

		case 401:
			return genericmail.NewValidationError("Authentication failed - check service account credentials", err)

		case 403:
			if strings.Contains(message, "scope") || strings.Contains(message, "permission") {
				return genericmail.NewUnverifiedDomainError("Insufficient permissions to send email", err)
			}
			if strings.Contains(message, "domain") {
				return genericmail.NewUnverifiedDomainError("Domain policy prevents sending", err)
			}
			if strings.Contains(message, "blocked") {
				return genericmail.NewMessageRejectedError("Sender blocked by recipient", err)
			}
			return genericmail.NewUnverifiedDomainError("Permission denied", err)

		case 429:
			return genericmail.NewRateLimitedError("Gmail API rate limit exceeded", err)

		case 500:
			return genericmail.NewServiceError("Internal Gmail server error", err)

		case 503:
			return genericmail.NewServiceError("Gmail service temporarily unavailable", err)

		case 504:
			return genericmail.NewServiceError("Gmail API request timeout", err)

		default:
			return genericmail.NewServiceError(fmt.Sprintf("Gmail API error (HTTP %d)", apiErr.Code), err)
		}
	}

	lowered := strings.ToLower(err.Error())
	if strings.Contains(lowered, "context") && strings.Contains(lowered, "deadline") {
		return genericmail.NewServiceError("Request timeout", err)
	}
	if strings.Contains(lowered, "connection") || strings.Contains(lowered, "network") {
		return genericmail.NewServiceError("Network error", err)
	}

	return genericmail.NewUnknownError("Gmail API error", err)
}
