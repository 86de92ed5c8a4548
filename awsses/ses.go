package awsses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"

	genericmail "github.com/kevinrenskers/generic-mail"
)

var _ genericmail.Sender = &AWSSESSender{}

type SESClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type AWSSESSender struct {
	sesClient SESClient
}

func NewAWSSESSender(client SESClient) *AWSSESSender {
	return &AWSSESSender{
		sesClient: client,
	}
}

func (a *AWSSESSender) SendMessage(ctx context.Context, m *genericmail.Message) error {
	if err := validateMessage(m); err != nil {
		return err
	}

	_, err := a.sesClient.SendEmail(ctx, &sesv2.SendEmailInput{
		Content: &types.EmailContent{
			Simple: &types.Message{
				Body: &types.Body{
					Html: htmlContentFromMessage(m),
					Text: textContentFromMessage(m),
				},
				Subject:     utf8Content(m.Subject),
				Headers:     headersToAWS(m.Headers),
				Attachments: attachmentsToAWS(m.Attachments),
			},
		},
		Destination: &types.Destination{
			ToAddresses:  m.ToAddresses,
			CcAddresses:  m.CCAddresses,
			BccAddresses: m.BCCAddresses,
		},
		FromEmailAddress: aws.String(m.FromAddress),
	})

	if err != nil {
		return categorizeAWSError(err)
	}

	return nil
}

func headersToAWS(headers map[string]string) []types.MessageHeader {
	if len(headers) == 0 {
		return nil
	}

	awsHeaders := make([]types.MessageHeader, 0, len(headers))
	for name, value := range headers {
		awsHeaders = append(awsHeaders, types.MessageHeader{
			Name:  aws.String(name),
			Value: aws.String(value),
		})
	}

	return awsHeaders
}

func attachmentsToAWS(attachments []genericmail.Attachment) []types.Attachment {
	if len(attachments) == 0 {
		return nil
	}

	awsAttachments := make([]types.Attachment, len(attachments))
	for i, a := range attachments {
		awsAttachments[i] = types.Attachment{
			FileName:           aws.String(a.FileName),
			RawContent:         a.Content,
			ContentType:        aws.String(a.ContentType),
			ContentDescription: aws.String(a.Description),
			ContentDisposition: types.AttachmentContentDispositionAttachment,
		}
	}

	return awsAttachments
}

// SES models a message as independent text and html bodies, so the
// primary/alternative structure is flattened back into the two slots.
func textContentFromMessage(m *genericmail.Message) *types.Content {
	if m.ContentType == genericmail.ContentTypeText && m.Body != "" {
		return utf8Content(m.Body)
	}
	return nil
}

func htmlContentFromMessage(m *genericmail.Message) *types.Content {
	if m.ContentType == genericmail.ContentTypeHTML && m.Body != "" {
		return utf8Content(m.Body)
	}
	if m.Alternative != nil && m.Alternative.ContentType == genericmail.ContentTypeHTML && m.Alternative.Body != "" {
		return utf8Content(m.Alternative.Body)
	}
	return nil
}

func utf8Content(s string) *types.Content {
	return &types.Content{
		Data:    aws.String(s),
		Charset: aws.String("UTF-8"),
	}
}

func validateMessage(m *genericmail.Message) error {
	if m.FromAddress == "" {
		return genericmail.NewValidationError("from address is required", nil)
	}

	if !isValidEmailAddress(m.FromAddress) {
		return genericmail.NewInvalidEmailError("invalid from address format", nil)
	}

	if len(m.ToAddresses)+len(m.CCAddresses)+len(m.BCCAddresses) == 0 {
		return genericmail.NewValidationError("at least one recipient is required", nil)
	}

	allAddresses := append(append(m.ToAddresses, m.CCAddresses...), m.BCCAddresses...)
	for _, addr := range allAddresses {
		if !isValidEmailAddress(addr) {
			return genericmail.NewInvalidEmailError(fmt.Sprintf("invalid recipient address: %s", addr), nil)
		}
	}

	if m.Subject == "" {
		return genericmail.NewValidationError("subject is required", nil)
	}

	if m.Body == "" {
		return genericmail.NewValidationError("message body is required", nil)
	}

	return nil
}

func categorizeAWSError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "TooManyRequestsException":
			return genericmail.NewRateLimitedError("sending rate limit exceeded", err)
		case "MessageRejected":
			return genericmail.NewMessageRejectedError("message rejected by SES", err)
		case "MailFromDomainNotVerifiedException":
			return genericmail.NewUnverifiedDomainError("sender domain not verified", err)
		case "InvalidParameterValueException":
			return genericmail.NewInvalidEmailError("invalid email parameter", err)
		case "ServiceUnavailableException", "InternalServiceErrorException":
			return genericmail.NewServiceError("AWS SES service error", err)
		}
	}

	return genericmail.NewUnknownError("failed to send email", err)
}

func isValidEmailAddress(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}
