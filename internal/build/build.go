// Package build writes a loaded site to the output directory as static HTML.
package build

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gabrielperales/gabriel.perales.me/internal/catalog"
	"github.com/gabrielperales/gabriel.perales.me/internal/config"
	"github.com/gabrielperales/gabriel.perales.me/internal/render"
	"github.com/gabrielperales/gabriel.perales.me/internal/site"
)

// TagDataFile maps tag slugs to post counts for client-side tag clouds.
const TagDataFile = "tag-data.json"

// Result summarizes a finished build.
type Result struct {
	Pages  int
	Posts  int
	Drafts int
	Tags   int
}

// Builder renders a site into cfg.OutputDir.
type Builder struct {
	cfg      config.Config
	renderer *render.Renderer
	log      logrus.FieldLogger
}

func New(cfg config.Config, renderer *render.Renderer, log logrus.FieldLogger) *Builder {
	return &Builder{cfg: cfg, renderer: renderer, log: log}
}

// Run cleans the output directory, copies static assets and writes every
// page. Drafts get pages only when buildDrafts is set and are never listed.
func (b *Builder) Run(s *site.Site) (Result, error) {
	var res Result
	outputDir := b.cfg.OutputDir
	if err := b.cfg.Validate(); err != nil {
		return res, fmt.Errorf("refusing to build: %w", err)
	}

	b.log.WithField("dir", outputDir).Info("cleaning output directory")
	if err := os.RemoveAll(outputDir); err != nil {
		return res, fmt.Errorf("failed to remove output directory '%s': %w", outputDir, err)
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return res, fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}

	if _, err := os.Stat(b.cfg.StaticDir); err == nil {
		b.log.WithFields(logrus.Fields{"from": b.cfg.StaticDir, "to": outputDir}).Info("copying static assets")
		if err := copyDirContents(b.cfg.StaticDir, outputDir, b.log); err != nil {
			return res, fmt.Errorf("failed to copy static assets: %w", err)
		}
	} else {
		b.log.WithField("dir", b.cfg.StaticDir).Info("static assets directory not found, skipping copy")
	}

	write := func(urlPath, layout string, data render.PageData) error {
		if err := b.writePage(urlPath, layout, data); err != nil {
			return err
		}
		res.Pages++
		return nil
	}

	if err := write("/", render.HomeLayout, render.Home(s)); err != nil {
		return res, err
	}
	if err := write("/projects/", render.ProjectsLayout, render.Projects(s)); err != nil {
		return res, err
	}
	if err := write(catalog.PostsPath, render.PostListLayout, render.PostList(s)); err != nil {
		return res, err
	}

	for _, p := range s.Posts.All() {
		if p.Draft && !b.cfg.BuildDrafts {
			b.log.WithField("post", p.SourcePath).Debug("skipping draft")
			continue
		}
		if err := write(p.Permalink, b.renderer.LayoutFor(p), render.Post(s, p)); err != nil {
			return res, err
		}
		if p.Draft {
			res.Drafts++
		} else {
			res.Posts++
		}
	}

	if err := write(catalog.TagsPath, render.TagIndexLayout, render.TagIndex(s)); err != nil {
		return res, err
	}
	for _, g := range s.Posts.Tags(catalog.ListOptions{}) {
		if err := write(g.Permalink, render.TagLayout, render.Tag(s, g)); err != nil {
			return res, err
		}
		res.Tags++
	}

	if err := b.writeFile(render.NotFoundLayout, render.NotFoundLayout, render.NotFound(s)); err != nil {
		return res, err
	}
	res.Pages++

	if err := b.writeTagData(s); err != nil {
		return res, err
	}

	b.log.WithFields(logrus.Fields{
		"pages":  res.Pages,
		"posts":  res.Posts,
		"drafts": res.Drafts,
		"tags":   res.Tags,
	}).Info("build completed")
	return res, nil
}

// writePage renders urlPath as <output>/<urlPath>/index.html.
func (b *Builder) writePage(urlPath, layout string, data render.PageData) error {
	rel := filepath.Join(filepath.FromSlash(strings.Trim(urlPath, "/")), "index.html")
	return b.writeFile(rel, layout, data)
}

func (b *Builder) writeFile(rel, layout string, data render.PageData) error {
	var buf bytes.Buffer
	if err := b.renderer.Render(&buf, layout, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", rel, err)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, rel)
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", outputPath, err)
	}
	b.log.WithFields(logrus.Fields{"path": outputPath, "layout": layout}).Debug("generated page")
	return nil
}

func (b *Builder) writeTagData(s *site.Site) error {
	data, err := json.MarshalIndent(s.Posts.TagCounts(catalog.ListOptions{}), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", TagDataFile, err)
	}
	path := filepath.Join(b.cfg.OutputDir, TagDataFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return nil
}
