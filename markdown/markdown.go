// Package markdown derives an HTML body from a plain-text body by
// rendering it as Markdown.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"

	genericmail "github.com/kevinrenskers/generic-mail"
)

var _ genericmail.HTMLConverter = &Converter{}

type Converter struct {
	md goldmark.Markdown
}

func New() *Converter {
	return &Converter{md: goldmark.New()}
}

func (c *Converter) ToHTML(text string) (string, error) {
	if text == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(text), &buf); err != nil {
		return "", genericmail.NewRenderError("rendering markdown", err)
	}
	return buf.String(), nil
}
