package render

import (
	"strings"

	"github.com/gabrielperales/gabriel.perales.me/internal/catalog"
	"github.com/gabrielperales/gabriel.perales.me/internal/model"
	"github.com/gabrielperales/gabriel.perales.me/internal/site"
)

// PageData is the value every layout executes with. Only the fields the page
// needs are set.
type PageData struct {
	SiteTitle string
	PageTitle string
	BaseURL   string
	Params    map[string]interface{}
	Site      *site.Site

	Post  *model.Post
	Posts []*model.Post
	Tag   catalog.TagGroup
	Tags  []catalog.TagGroup

	// Preview is set when the page shows drafts.
	Preview bool
}

// NewPageData fills the site-wide fields.
func NewPageData(s *site.Site, pageTitle string) PageData {
	return PageData{
		SiteTitle: s.Title,
		PageTitle: pageTitle,
		BaseURL:   s.BaseURL,
		Params:    s.Params,
		Site:      s,
	}
}

// AbsURL prefixes an absolute site path with BaseURL.
func (d PageData) AbsURL(p string) string {
	if d.BaseURL == "" {
		return p
	}
	return strings.TrimSuffix(d.BaseURL, "/") + "/" + strings.TrimPrefix(p, "/")
}

// Home is the data for home.html.
func Home(s *site.Site) PageData {
	d := NewPageData(s, "")
	d.Posts = s.RecentPosts()
	return d
}

// Projects is the data for projects.html.
func Projects(s *site.Site) PageData {
	return NewPageData(s, "Projects")
}

// PostList is the data for list-posts.html. Drafts are never listed.
func PostList(s *site.Site) PageData {
	d := NewPageData(s, "Blog")
	d.Posts = s.Posts.Published()
	return d
}

// Post is the data for a single post page.
func Post(s *site.Site, p *model.Post) PageData {
	d := NewPageData(s, p.Title)
	d.Post = p
	d.Preview = p.Draft
	return d
}

// TagIndex is the data for tags.html.
func TagIndex(s *site.Site) PageData {
	d := NewPageData(s, "Tags")
	d.Tags = s.Posts.Tags(catalog.ListOptions{})
	return d
}

// Tag is the data for tag.html.
func Tag(s *site.Site, g catalog.TagGroup) PageData {
	d := NewPageData(s, g.Name)
	d.Tag = g
	d.Posts = g.Posts
	return d
}

// NotFound is the data for 404.html.
func NotFound(s *site.Site) PageData {
	return NewPageData(s, "Page not found")
}
