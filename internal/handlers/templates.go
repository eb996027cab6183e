package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"time"

	"shieldsite/internal/contenttree"

	"github.com/gin-contrib/multitemplate"
)

// TemplateFuncs are available to every page template.
var TemplateFuncs = template.FuncMap{
	// content reads a content-tree value and falls back when it is empty.
	"content": func(tree contenttree.Tree, path, fallback string) string {
		return contenttree.GetOr(tree, path, fallback)
	},
	"year": func() int { return time.Now().Year() },
}

var pageTemplates = map[string][]string{
	"about.html":    {"base.html", "about.html"},
	"programs.html": {"base.html", "programs.html"},
	"impact.html":   {"base.html", "impact.html"},
	"admin.html":    {"base.html", "admin.html"},
	"login.html":    {"base.html", "login.html"},
	"404.html":      {"base.html", "404.html"},
	"error.html":    {"base.html", "error.html"},
}

// NewHTMLRenderer parses the page templates from templatesFS.
func NewHTMLRenderer(templatesFS fs.FS) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()
	for name, files := range pageTemplates {
		tpl, err := template.New(files[0]).Funcs(TemplateFuncs).ParseFS(templatesFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.Add(name, tpl)
	}
	return r, nil
}
