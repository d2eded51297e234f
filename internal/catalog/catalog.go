// Package catalog indexes parsed posts for listings, tag pages and slug
// lookups. A Catalog is immutable once built and safe for concurrent reads.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gabrielperales/gabriel.perales.me/internal/model"
	"github.com/gabrielperales/gabriel.perales.me/internal/slug"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrEmptySlug     = errors.New("title produces an empty slug")
	ErrDuplicateSlug = errors.New("duplicate slug")
)

// PostsPath is the URL prefix of post pages.
const PostsPath = "/posts/"

// TagsPath is the URL prefix of tag pages.
const TagsPath = "/tags/"

// ListOptions selects which posts a view includes.
type ListOptions struct {
	IncludeDrafts bool
}

// TagGroup is every post declaring one tag.
type TagGroup struct {
	Name      string
	Slug      string
	Permalink string
	Posts     []*model.Post
}

// Count is the number of posts in the group.
func (g TagGroup) Count() int { return len(g.Posts) }

type Catalog struct {
	all    []*model.Post
	public []*model.Post
	bySlug map[string]*model.Post
}

// New assigns slugs and permalinks and sorts posts newest first. Two posts
// whose titles produce the same slug are an authoring error.
func New(posts []*model.Post) (*Catalog, error) {
	c := &Catalog{
		all:    make([]*model.Post, 0, len(posts)),
		bySlug: make(map[string]*model.Post, len(posts)),
	}

	var errs []error
	for _, p := range posts {
		s := slug.Make(p.Title)
		if s == "" {
			errs = append(errs, fmt.Errorf("%s: %w: %q", p.SourcePath, ErrEmptySlug, p.Title))
			continue
		}
		if prev, ok := c.bySlug[s]; ok {
			errs = append(errs, fmt.Errorf("%w %q: %s and %s", ErrDuplicateSlug, s, prev.SourcePath, p.SourcePath))
			continue
		}
		p.Slug = s
		p.Permalink = PostsPath + s + "/"
		c.bySlug[s] = p
		c.all = append(c.all, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	sortNewestFirst(c.all)
	c.public = make([]*model.Post, 0, len(c.all))
	for _, p := range c.all {
		if !p.Draft {
			c.public = append(c.public, p)
		}
	}
	return c, nil
}

// sortNewestFirst orders by date descending, then title and slug so equal
// dates still list deterministically.
func sortNewestFirst(posts []*model.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if !a.Date.Time.Equal(b.Date.Time) {
			return a.Date.Time.After(b.Date.Time)
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.Slug < b.Slug
	})
}

// Len is the number of posts including drafts.
func (c *Catalog) Len() int { return len(c.all) }

// Posts returns the date-sorted listing selected by opts. The returned slice
// must not be modified.
func (c *Catalog) Posts(opts ListOptions) []*model.Post {
	if opts.IncludeDrafts {
		return c.all
	}
	return c.public
}

// All is every post, drafts included, newest first.
func (c *Catalog) All() []*model.Post { return c.all }

// Published is the public listing: no drafts, newest first.
func (c *Catalog) Published() []*model.Post { return c.public }

// Recent returns at most n published posts.
func (c *Catalog) Recent(n int) []*model.Post {
	if n < 0 || n >= len(c.public) {
		return c.public
	}
	return c.public[:n]
}

// Lookup finds a post by slug. Drafts are only found when opts allows them.
func (c *Catalog) Lookup(s string, opts ListOptions) (*model.Post, error) {
	p, ok := c.bySlug[s]
	if !ok || (p.Draft && !opts.IncludeDrafts) {
		return nil, fmt.Errorf("post %q: %w", s, ErrNotFound)
	}
	return p, nil
}

// Tags groups the listing selected by opts by tag key, largest group first.
// Spellings that differ only in case share a group named after the first one
// seen; a lowercase tag in slug form is shown title-cased.
func (c *Catalog) Tags(opts ListOptions) []TagGroup {
	titleCaser := cases.Title(language.English)
	groups := make(map[string]*TagGroup)
	for _, p := range c.Posts(opts) {
		seen := make(map[string]bool, len(p.Tags))
		for _, tag := range p.Tags {
			key := slug.Tag(tag)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			g, ok := groups[key]
			if !ok {
				name := tag
				if name == key {
					name = titleCaser.String(tag)
				}
				g = &TagGroup{Name: name, Slug: key, Permalink: TagsPath + key + "/"}
				groups[key] = g
			}
			g.Posts = append(g.Posts, p)
		}
	}

	out := make([]TagGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count() != out[j].Count() {
			return out[i].Count() > out[j].Count()
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}

// Tag returns one group by its key, as produced by slug.Tag.
func (c *Catalog) Tag(s string, opts ListOptions) (TagGroup, error) {
	for _, g := range c.Tags(opts) {
		if g.Slug == s {
			return g, nil
		}
	}
	return TagGroup{}, fmt.Errorf("tag %q: %w", s, ErrNotFound)
}

// TagCounts maps tag keys to the number of posts declaring them.
func (c *Catalog) TagCounts(opts ListOptions) map[string]int {
	counts := make(map[string]int)
	for _, g := range c.Tags(opts) {
		counts[g.Slug] = g.Count()
	}
	return counts
}
