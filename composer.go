package genericmail

import (
	"context"
	"fmt"
	"strings"
)

// Default template names, resolved by the configured Renderer when the
// Email carries no custom templates.
const (
	DefaultTextTemplate = "email/base_text_email.tmpl"
	DefaultHTMLTemplate = "email/base_html_email.tmpl"
)

// Config wires the Composer's collaborators. Sender and Renderer are
// required for Send; the converters are required only when a variant has
// to be derived from the other one's body.
type Config struct {
	Sender   Sender
	Sites    SiteProvider
	Renderer Renderer

	// HTMLConverter derives an HTML body from a text body (Markdown).
	HTMLConverter HTMLConverter
	// TextConverter derives a text body from an HTML body.
	TextConverter TextConverter

	// Attachments resolves attachment paths. Defaults to FileSource.
	Attachments AttachmentSource

	// DefaultFrom is used when an Email has no FromAddress.
	DefaultFrom string

	// TextTemplate and HTMLTemplate override the built-in default
	// template names.
	TextTemplate string
	HTMLTemplate string
}

// Composer turns an Email into at most one Message and hands it to the
// configured Sender.
type Composer struct {
	sender      Sender
	sites       SiteProvider
	renderer    Renderer
	toHTML      HTMLConverter
	toText      TextConverter
	attachments AttachmentSource

	defaultFrom  string
	textTemplate string
	htmlTemplate string
}

func NewComposer(cfg Config) *Composer {
	attachments := cfg.Attachments
	if attachments == nil {
		attachments = FileSource{}
	}
	textTemplate := cfg.TextTemplate
	if textTemplate == "" {
		textTemplate = DefaultTextTemplate
	}
	htmlTemplate := cfg.HTMLTemplate
	if htmlTemplate == "" {
		htmlTemplate = DefaultHTMLTemplate
	}

	return &Composer{
		sender:       cfg.Sender,
		sites:        cfg.Sites,
		renderer:     cfg.Renderer,
		toHTML:       cfg.HTMLConverter,
		toText:       cfg.TextConverter,
		attachments:  attachments,
		defaultFrom:  cfg.DefaultFrom,
		textTemplate: textTemplate,
		htmlTemplate: htmlTemplate,
	}
}

// Compose wraps an Email for rendering. The Composition memoizes derived
// bodies and the render context, so it is single-use and not safe for
// concurrent calls.
func (c *Composer) Compose(e *Email) *Composition {
	return &Composition{composer: c, email: e}
}

// Send decides which variants to produce, renders them, assembles the
// message and delivers it. It returns true iff a message was handed to
// the Sender; false means there was legitimately nothing to send (no
// recipients, or no variant resolved and opts.FailSilently is set).
func (c *Composer) Send(ctx context.Context, e *Email, opts SendOptions) (bool, error) {
	if c.sender == nil {
		return false, NewConfigurationError("no sender configured", nil)
	}

	cp := c.Compose(e)

	sendText := opts.Text.resolve(e.TextTemplate != "" || e.TextBody != "")
	sendHTML := opts.HTML.resolve(e.HTMLTemplate != "" || e.HTMLBody != "")

	if !sendText && !sendHTML {
		if opts.FailSilently {
			return false, nil
		}
		return false, NewNothingToSendError("nothing to send", nil)
	}

	if cp.customTemplates() {
		if e.TextTemplate == "" || e.HTMLTemplate == "" {
			return false, NewConfigurationError("when using custom templates, both the text and the html versions must be provided", nil)
		}
	} else {
		// Default templates wrap a body, so one must exist in some
		// form. Either field satisfies either variant, the missing
		// one is derived.
		hasBody := e.TextBody != "" || e.HTMLBody != ""
		if sendText && !hasBody {
			return false, NewBodyNotSetError("sending text with the default templates requires text_body or html_body", nil)
		}
		if sendHTML && !hasBody {
			return false, NewBodyNotSetError("sending html with the default templates requires html_body or text_body", nil)
		}
	}

	m, err := cp.CreateMessage(ctx, sendText, sendHTML)
	if err != nil {
		return false, err
	}
	if m == nil {
		return false, nil
	}

	if err := c.sender.SendMessage(ctx, m); err != nil {
		return false, err
	}
	return true, nil
}

// Composition is the per-Email rendering state.
type Composition struct {
	composer *Composer
	email    *Email

	textBody *string
	htmlBody *string
	context  map[string]any
}

// TextBody returns the email's text body, deriving it from the HTML body
// when unset. Conversion runs at most once per Composition.
func (cp *Composition) TextBody() (string, error) {
	if cp.textBody != nil {
		return *cp.textBody, nil
	}

	body := cp.email.TextBody
	if body == "" && cp.email.HTMLBody != "" {
		if cp.composer.toText == nil {
			return "", NewConfigurationError("no html-to-text converter configured", nil)
		}
		converted, err := cp.composer.toText.ToText(cp.email.HTMLBody)
		if err != nil {
			return "", NewRenderError("converting html body to text", err)
		}
		body = converted
	}

	cp.textBody = &body
	return body, nil
}

// HTMLBody returns the email's HTML body, deriving it from the text body
// (rendered as Markdown) when unset. Conversion runs at most once per
// Composition.
func (cp *Composition) HTMLBody() (string, error) {
	if cp.htmlBody != nil {
		return *cp.htmlBody, nil
	}

	body := cp.email.HTMLBody
	if body == "" && cp.email.TextBody != "" {
		if cp.composer.toHTML == nil {
			return "", NewConfigurationError("no text-to-html converter configured", nil)
		}
		converted, err := cp.composer.toHTML.ToHTML(cp.email.TextBody)
		if err != nil {
			return "", NewRenderError("converting text body to html", err)
		}
		body = converted
	}

	cp.htmlBody = &body
	return body, nil
}

// CreateMessage renders the requested variants and assembles the outbound
// message. It returns nil without error when there are no recipients or
// no variant was requested.
func (cp *Composition) CreateMessage(ctx context.Context, sendText, sendHTML bool) (*Message, error) {
	to := normalizeAddressList(cp.email.To)
	if len(to) == 0 {
		return nil, nil
	}

	if !sendText && !sendHTML {
		return nil, nil
	}

	var text, html string
	var err error
	if sendText {
		text, err = cp.renderVariant(ctx, variantText)
		if err != nil {
			return nil, err
		}
	}
	if sendHTML {
		html, err = cp.renderVariant(ctx, variantHTML)
		if err != nil {
			return nil, err
		}
	}

	m := &Message{
		Subject:      cp.email.Subject,
		FromAddress:  cp.fromAddress(),
		ToAddresses:  to,
		CCAddresses:  normalizeAddressList(cp.email.CC),
		BCCAddresses: normalizeAddressList(cp.email.BCC),
		Headers:      cp.email.Headers,
	}

	if sendText {
		m.Body = text
		m.ContentType = ContentTypeText
		if sendHTML {
			m.Alternative = &MessagePart{Body: html, ContentType: ContentTypeHTML}
		}
	} else {
		// No text part, send as pure html.
		m.Body = html
		m.ContentType = ContentTypeHTML
	}

	for _, path := range cp.email.Attachments {
		a, err := cp.composer.attachments.Load(path)
		if err != nil {
			return nil, NewAttachmentError(fmt.Sprintf("loading attachment %q", path), err)
		}
		m.Attachments = append(m.Attachments, a)
	}

	return m, nil
}

type variant int

const (
	variantText variant = iota
	variantHTML
)

func (cp *Composition) renderVariant(ctx context.Context, v variant) (string, error) {
	if cp.composer.renderer == nil {
		return "", NewConfigurationError("no template renderer configured", nil)
	}

	name, err := cp.templateName(v)
	if err != nil {
		return "", err
	}

	base, err := cp.buildContext(ctx)
	if err != nil {
		return "", err
	}

	var body string
	if v == variantText {
		body, err = cp.TextBody()
	} else {
		body, err = cp.HTMLBody()
	}
	if err != nil {
		return "", err
	}

	// Body is a generic slot for the variant at hand, distinct from the
	// TextBody/HTMLBody keys already present in the base context. A
	// caller-supplied Body key still wins, it arrives via the base map.
	data := make(map[string]any, len(base)+1)
	data["Body"] = body
	for k, val := range base {
		data[k] = val
	}

	return cp.composer.renderer.Render(name, data)
}

func (cp *Composition) templateName(v variant) (string, error) {
	if cp.customTemplates() {
		name := cp.email.TextTemplate
		if v == variantHTML {
			name = cp.email.HTMLTemplate
		}
		if name == "" {
			return "", NewConfigurationError("when using custom templates, both the text and the html versions must be provided", nil)
		}
		return name, nil
	}

	if v == variantHTML {
		return cp.composer.htmlTemplate, nil
	}
	return cp.composer.textTemplate, nil
}

// buildContext returns the template context: site metadata, both derived
// bodies, and the Email's extra Context merged in last. Computed once per
// Composition.
func (cp *Composition) buildContext(ctx context.Context) (map[string]any, error) {
	if cp.context != nil {
		return cp.context, nil
	}

	var site Site
	if cp.composer.sites != nil {
		var err error
		site, err = cp.composer.sites.CurrentSite(ctx)
		if err != nil {
			return nil, NewRenderError("looking up current site", err)
		}
	}

	text, err := cp.TextBody()
	if err != nil {
		return nil, err
	}
	html, err := cp.HTMLBody()
	if err != nil {
		return nil, err
	}

	data := map[string]any{
		"Domain":   site.Domain,
		"SiteName": site.Name,
		"TextBody": text,
		"HTMLBody": html,
	}
	for k, v := range cp.email.Context {
		data[k] = v
	}

	cp.context = data
	return data, nil
}

func (cp *Composition) customTemplates() bool {
	return cp.email.TextTemplate != "" || cp.email.HTMLTemplate != ""
}

func (cp *Composition) fromAddress() string {
	if cp.email.FromAddress != "" {
		return cp.email.FromAddress
	}
	return cp.composer.defaultFrom
}

func normalizeAddressList(addrs []string) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if strings.TrimSpace(a) == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}
