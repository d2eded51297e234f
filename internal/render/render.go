// Package render executes the html/template layouts. Every page layout gets
// its own clone of base.html and the partials, so pages can each define
// "main" without overwriting one another.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gabrielperales/gabriel.perales.me/internal/catalog"
	"github.com/gabrielperales/gabriel.perales.me/internal/model"
	"github.com/gabrielperales/gabriel.perales.me/internal/slug"
)

const (
	BaseLayout       = "base.html"
	HomeLayout       = "home.html"
	ProjectsLayout   = "projects.html"
	PostListLayout   = "list-posts.html"
	PostLayout       = "single-post.html"
	TagIndexLayout   = "tags.html"
	TagLayout        = "tag.html"
	NotFoundLayout   = "404.html"
	partialsDir      = "partials"
	embeddedRootName = "layouts"
)

// RequiredLayouts must exist in any layouts directory.
var RequiredLayouts = []string{
	HomeLayout, ProjectsLayout, PostListLayout, PostLayout, TagIndexLayout, TagLayout, NotFoundLayout,
}

var ErrUnknownLayout = errors.New("unknown layout")

//go:embed layouts
var defaultLayouts embed.FS

// DefaultLayouts returns the layouts bundled with the binary.
func DefaultLayouts() fs.FS {
	sub, err := fs.Sub(defaultLayouts, embeddedRootName)
	if err != nil {
		panic(err)
	}
	return sub
}

var funcs = template.FuncMap{
	"formatDate": func(d model.Date) string { return d.Format("January 2, 2006") },
	"isoDate":    func(d model.Date) string { return d.Format("2006-01-02") },
	"tagURL":     func(tag string) string { return catalog.TagsPath + slug.Tag(tag) + "/" },
	"slugify":    slug.Make,
}

// Renderer holds one parsed template set per page layout.
type Renderer struct {
	pages map[string]*template.Template
	log   logrus.FieldLogger
}

// NewFromDir parses layouts from dir, or the bundled layouts when dir does
// not exist.
func NewFromDir(dir string, log logrus.FieldLogger) (*Renderer, error) {
	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat layouts directory '%s': %w", dir, err)
		}
		log.WithField("dir", dir).Info("layouts directory not found, using bundled layouts")
		return New(DefaultLayouts(), log)
	}
	log.WithField("dir", dir).Debug("loading layouts")
	return New(os.DirFS(dir), log)
}

// New parses base.html, partials/*.html and every other top-level .html
// file in fsys.
func New(fsys fs.FS, log logrus.FieldLogger) (*Renderer, error) {
	partials, err := fs.Glob(fsys, path.Join(partialsDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to find partials: %w", err)
	}
	base, err := template.New(BaseLayout).Funcs(funcs).ParseFS(fsys, append([]string{BaseLayout}, partials...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s and partials: %w", BaseLayout, err)
	}

	names, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to find page layouts: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(names)), log: log}
	for _, name := range names {
		if name == BaseLayout {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone %s for %s: %w", BaseLayout, name, err)
		}
		page, err := clone.ParseFS(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layout %s: %w", name, err)
		}
		r.pages[name] = page
	}

	var missing []string
	for _, name := range RequiredLayouts {
		if _, ok := r.pages[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("layouts missing: %s", strings.Join(missing, ", "))
	}

	log.WithField("layouts", r.Layouts()).Debug("parsed layouts")
	return r, nil
}

// Layouts lists the page layouts by name.
func (r *Renderer) Layouts() []string {
	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a page layout exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// LayoutFor picks the page layout of a post: its front-matter layout when it
// exists, single-post.html otherwise.
func (r *Renderer) LayoutFor(p *model.Post) string {
	if p.Layout == "" {
		return PostLayout
	}
	if r.Has(p.Layout) {
		return p.Layout
	}
	r.log.WithFields(logrus.Fields{
		"post":   p.SourcePath,
		"layout": p.Layout,
	}).Warnf("front-matter layout not found, using %s", PostLayout)
	return PostLayout
}

// Render executes a page layout into w. Nothing is written when execution
// fails.
func (r *Renderer) Render(w io.Writer, layout string, data PageData) error {
	t, ok := r.pages[layout]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLayout, layout)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, BaseLayout, data); err != nil {
		return fmt.Errorf("failed to execute template '%s': %w", layout, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
