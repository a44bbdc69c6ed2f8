// Package views holds the embedded HTML templates and static assets.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Site is the author and site metadata shared by every page.
type Site struct {
	Name        string
	Role        string
	Description string
	URL         string
	Twitter     string
	GitHub      string
	LinkedIn    string
	IssuesURL   string
}

// Page is the data passed to the layout.
type Page struct {
	Site        Site
	Title       string
	Description string
	Path        string
	Preview     bool
	Data        any
}

// Templates holds one parsed template set per page.
type Templates struct {
	pages map[string]*template.Template
}

// Page names accepted by Render.
const (
	PageHome     = "home"
	PageAbout    = "about"
	PageUses     = "uses"
	PageBlog     = "blog"
	PagePost     = "post"
	PageNotFound = "notfound"
)

var pageNames = []string{PageHome, PageAbout, PageUses, PageBlog, PagePost, PageNotFound}

var funcs = template.FuncMap{
	"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	"plural": func(n int, singular, plural string) string {
		if n == 1 {
			return singular
		}
		return plural
	},
	"year": func() int { return time.Now().Year() },
	"twitterSearch": func(link string) string {
		return "https://mobile.twitter.com/search?q=" + url.QueryEscape(link)
	},
}

// Load parses every page together with the layout.
func Load() (*Templates, error) {
	t := &Templates{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		t.pages[name] = tmpl
	}
	return t, nil
}

// MustLoad is like Load but panics on error.
func MustLoad() *Templates {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// Render executes the named page into w. Output is buffered so a failing
// template never writes a partial page.
func (t *Templates) Render(w io.Writer, name string, page *Page) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Static returns the embedded static assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
