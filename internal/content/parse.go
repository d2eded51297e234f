// Package content reads and writes blog post documents: a YAML front-matter
// block between "---" lines followed by a markdown body.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v2"

	"github.com/gabrielperales/gabriel.perales.me/internal/model"
	"github.com/gabrielperales/gabriel.perales.me/internal/slug"
)

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// rawFrontMatter defers date handling so bad dates map to ErrInvalidDate
// instead of a decoder error.
type rawFrontMatter struct {
	Title   string      `yaml:"title"`
	Date    interface{} `yaml:"date"`
	Tags    []string    `yaml:"tags"`
	Draft   bool        `yaml:"draft"`
	Summary string      `yaml:"summary"`
	Images  []string    `yaml:"images"`
	Type    string      `yaml:"type"`
	Layout  string      `yaml:"layout"`
}

// Parse reads one post document. path is only used for error messages and
// Post.SourcePath. Type is left as written; LoadDir fills in the default.
func Parse(path string, r io.Reader) (*model.Post, error) {
	var raw rawFrontMatter
	rest, err := frontmatter.MustParse(r, &raw, yamlFormat)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return nil, &DocumentError{Path: path, Err: ErrNoFrontMatter}
		}
		return nil, &DocumentError{Path: path, Err: fmt.Errorf("%w: %v", ErrInvalidFrontMatter, err)}
	}

	fm, err := raw.validate()
	if err != nil {
		return nil, &DocumentError{Path: path, Err: err}
	}

	return &model.Post{
		FrontMatter: fm,
		Body:        bytes.TrimLeft(rest, "\r\n"),
		SourcePath:  path,
	}, nil
}

func (raw rawFrontMatter) validate() (model.FrontMatter, error) {
	fm := model.FrontMatter{
		Title:   strings.TrimSpace(raw.Title),
		Draft:   raw.Draft,
		Summary: strings.TrimSpace(raw.Summary),
		Type:    strings.TrimSpace(raw.Type),
		Layout:  strings.TrimSpace(raw.Layout),
		Images:  []string{},
	}
	if fm.Title == "" {
		return fm, ErrMissingTitle
	}

	date, err := parseDate(raw.Date)
	if err != nil {
		return fm, err
	}
	fm.Date = date

	tags, err := normalizeTags(raw.Tags)
	if err != nil {
		return fm, err
	}
	fm.Tags = tags

	for _, img := range raw.Images {
		if img = strings.TrimSpace(img); img != "" {
			fm.Images = append(fm.Images, img)
		}
	}
	return fm, nil
}

func parseDate(v interface{}) (model.Date, error) {
	switch d := v.(type) {
	case nil:
		return model.Date{}, ErrMissingDate
	case string:
		if strings.TrimSpace(d) == "" {
			return model.Date{}, ErrMissingDate
		}
		date, err := model.ParseDate(d)
		if err != nil {
			return model.Date{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		return date, nil
	default:
		return model.Date{}, fmt.Errorf("%w: unexpected value %v", ErrInvalidDate, v)
	}
}

// normalizeTags trims tags and drops repeats that differ only in case,
// keeping the first spelling.
func normalizeTags(in []string) ([]string, error) {
	tags := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for i, tag := range in {
		tag = strings.TrimSpace(tag)
		key := slug.Tag(tag)
		if key == "" {
			return nil, fmt.Errorf("%w: tag %d is blank", ErrEmptyTag, i+1)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}
	return tags, nil
}
