// Package plaintext derives a plain-text body from an HTML body.
package plaintext

import (
	"jaytaylor.com/html2text"

	genericmail "github.com/kevinrenskers/generic-mail"
)

var _ genericmail.TextConverter = &Converter{}

type Converter struct {
	options html2text.Options
}

func New() *Converter {
	return &Converter{}
}

func (c *Converter) ToText(html string) (string, error) {
	if html == "" {
		return "", nil
	}

	text, err := html2text.FromString(html, c.options)
	if err != nil {
		return "", genericmail.NewRenderError("converting html to text", err)
	}
	return text, nil
}
