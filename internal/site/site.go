// Package site assembles the projects and posts a build or preview server
// renders.
package site

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gabrielperales/gabriel.perales.me/internal/catalog"
	"github.com/gabrielperales/gabriel.perales.me/internal/config"
	"github.com/gabrielperales/gabriel.perales.me/internal/content"
	"github.com/gabrielperales/gabriel.perales.me/internal/markdown"
	"github.com/gabrielperales/gabriel.perales.me/internal/model"
	"github.com/gabrielperales/gabriel.perales.me/internal/projects"
)

// Site is everything loaded from the content tree. It is not modified after
// Load returns.
type Site struct {
	Title         string
	Description   string
	Author        string
	BaseURL       string
	HomePostCount int
	Params        map[string]interface{}
	Projects      []model.Project
	Posts         *catalog.Catalog
}

// RecentPosts is the home page listing.
func (s *Site) RecentPosts() []*model.Post {
	return s.Posts.Recent(s.HomePostCount)
}

// Load reads projects and posts and renders every post body.
func Load(cfg config.Config, log logrus.FieldLogger) (*Site, error) {
	projectList, err := projects.Load(cfg.ProjectsFile, log)
	if err != nil {
		return nil, err
	}

	posts, err := content.LoadDir(cfg.ContentDir, log)
	if err != nil {
		return nil, err
	}

	md := markdown.New()
	for _, p := range posts {
		html, err := md.Convert(p.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.SourcePath, err)
		}
		p.ContentHTML = html
	}

	cat, err := catalog.New(posts)
	if err != nil {
		return nil, fmt.Errorf("invalid post collection: %w", err)
	}

	params := cfg.Params
	if params == nil {
		params = map[string]interface{}{}
	}

	s := &Site{
		Title:         cfg.SiteTitle,
		Description:   cfg.Description,
		Author:        cfg.Author,
		BaseURL:       cfg.BaseURL,
		HomePostCount: cfg.HomePostCount,
		Params:        params,
		Projects:      projectList,
		Posts:         cat,
	}
	log.WithFields(logrus.Fields{
		"projects":  len(s.Projects),
		"posts":     cat.Len(),
		"published": len(cat.Published()),
	}).Info("site loaded")
	return s, nil
}
