package render

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"shieldsite/internal/models"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer draws page sections as HTML fragments.
type Renderer struct {
	tpl *template.Template
	min *minify.M
}

type Option func(*Renderer)

// WithMinify strips insignificant whitespace from rendered fragments.
func WithMinify() Option {
	return func(r *Renderer) {
		m := minify.New()
		m.AddFunc("text/html", html.Minify)
		r.min = m
	}
}

func New(opts ...Option) (*Renderer, error) {
	tpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{tpl: tpl}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Render writes the active sections, in the order given, to w.
func (r *Renderer) Render(w io.Writer, sections []models.PageSection) error {
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, "sections", Layout(sections)); err != nil {
		return err
	}
	if r.min == nil {
		_, err := buf.WriteTo(w)
		return err
	}
	return r.min.Minify("text/html", w, &buf)
}

// HTML is Render into a value that templates embed without escaping.
func (r *Renderer) HTML(sections []models.PageSection) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, sections); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
