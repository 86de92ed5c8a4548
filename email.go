// Package genericmail composes emails from a declarative description.
//
// An Email describes recipients, bodies and optional templates; the
// Composer decides whether to send a text part, an HTML part, or both,
// converting between the two representations when only one is supplied,
// and hands the assembled Message to a Sender for delivery.
package genericmail

import "context"

// Content types for the primary and alternative message parts.
const (
	ContentTypeText = "text/plain"
	ContentTypeHTML = "text/html"
)

// Email is the declarative input to the Composer. Fields are set once at
// construction; an Email describes a single outbound message and is not
// meant to be reused or shared between goroutines.
type Email struct {
	To  []string
	CC  []string
	BCC []string

	Subject string
	// FromAddress overrides the Composer's default sender when set.
	FromAddress string

	TextBody string
	HTMLBody string

	// TextTemplate and HTMLTemplate switch the Composer to custom
	// template mode. Either both are set or both are unset.
	TextTemplate string
	HTMLTemplate string

	// Attachments are file paths, resolved by the Composer's
	// AttachmentSource when the message is built.
	Attachments []string

	Headers map[string]string

	// Context holds extra template variables, merged into the render
	// context last so caller keys win on collision.
	Context map[string]any
}

// Message is an assembled outbound email, ready for a Sender.
type Message struct {
	Subject      string
	FromAddress  string
	ToAddresses  []string
	CCAddresses  []string
	BCCAddresses []string

	// Body is the primary part, with ContentType either
	// ContentTypeText or ContentTypeHTML.
	Body        string
	ContentType string

	// Alternative is an optional second representation of the body,
	// attached when both a text and an HTML part were rendered.
	Alternative *MessagePart

	Headers     map[string]string
	Attachments []Attachment
}

// MessagePart is an alternative representation of a message body.
type MessagePart struct {
	Body        string
	ContentType string
}

type Attachment struct {
	FileName    string
	ContentType string
	Content     []byte
	Description string
}

// Sender delivers an assembled message.
type Sender interface {
	SendMessage(ctx context.Context, m *Message) error
}

// Site is the metadata made available to every template.
type Site struct {
	Domain string
	Name   string
}

// SiteProvider supplies the site metadata for the render context.
type SiteProvider interface {
	CurrentSite(ctx context.Context) (Site, error)
}

// StaticSite is a SiteProvider returning fixed values.
type StaticSite Site

func (s StaticSite) CurrentSite(ctx context.Context) (Site, error) {
	return Site(s), nil
}

// Renderer renders a named template with the given data. Implementations
// report unknown names with a TEMPLATE_NOT_FOUND error.
type Renderer interface {
	Render(name string, data map[string]any) (string, error)
}

// HTMLConverter turns plain text (Markdown) into HTML.
type HTMLConverter interface {
	ToHTML(text string) (string, error)
}

// TextConverter turns HTML into plain text.
type TextConverter interface {
	ToText(html string) (string, error)
}

// AttachmentSource resolves an attachment reference to its content.
type AttachmentSource interface {
	Load(path string) (Attachment, error)
}
