// Package view renders the server-side HTML pages. Each page template is
// parsed together with the shared layout and executed through it.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/daily-journal/blog/internal/markdown"
)

const (
	layoutFile   = "layout.html"
	layoutName   = "layout"
	excerptRunes = 180
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Renderer.Render.
const (
	PageIndex   = "index"
	PageCompose = "compose"
	PagePost    = "post"
	PageSignup  = "signup"
	PageLogin   = "login"
	PageAbout   = "about"
	PageContact = "contact"
)

// Renderer implements echo.Renderer over the embedded page set.
type Renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

// New parses every embedded page with the shared layout.
func New() (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	return parse(sub)
}

func parse(fsys fs.FS) (*Renderer, error) {
	files, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}

	funcs := template.FuncMap{
		"markdown":  markdown.ToHTML,
		"excerpt":   func(s string) string { return markdown.Excerpt(s, excerptRunes) },
		"chromaCSS": markdown.ChromaCSS,
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		t, err := template.New(file).Funcs(funcs).ParseFS(fsys, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".html")] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render executes the named page through the layout.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	return t.ExecuteTemplate(w, layoutName, data)
}
