// Package templates is the default Renderer for the composer. Templates
// are parsed with text/template, so escaping is the template author's
// concern; the HTML body handed to the default html template is already
// rendered HTML and must pass through untouched.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	genericmail "github.com/kevinrenskers/generic-mail"
)

//go:embed email/*.tmpl
var defaultFS embed.FS

var _ genericmail.Renderer = &Engine{}

// Engine renders named templates from a filesystem, falling back to the
// embedded default templates for names not present there.
type Engine struct {
	fsys fs.FS
}

// NewEngine returns an Engine reading from fsys. A nil fsys serves only
// the embedded defaults.
func NewEngine(fsys fs.FS) *Engine {
	return &Engine{fsys: fsys}
}

func (e *Engine) Render(name string, data map[string]any) (string, error) {
	raw, err := e.read(name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Parse(string(raw))
	if err != nil {
		return "", genericmail.NewRenderError(fmt.Sprintf("parsing template %q", name), err)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", genericmail.NewRenderError(fmt.Sprintf("executing template %q", name), err)
	}
	return out.String(), nil
}

func (e *Engine) read(name string) ([]byte, error) {
	if e.fsys != nil {
		raw, err := fs.ReadFile(e.fsys, name)
		if err == nil {
			return raw, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, genericmail.NewRenderError(fmt.Sprintf("reading template %q", name), err)
		}
	}

	raw, err := fs.ReadFile(defaultFS, name)
	if err != nil {
		return nil, genericmail.NewTemplateNotFoundError(fmt.Sprintf("template %q not found", name), err)
	}
	return raw, nil
}
