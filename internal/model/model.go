package model

import (
	"html/template"
)

// Project is one portfolio card. Href and ImgSrc are optional; layouts omit
// the link or image when they are empty.
type Project struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Href        string `yaml:"href,omitempty"`
	ImgSrc      string `yaml:"imgSrc,omitempty"`
}

// FrontMatter is the metadata block at the top of a post document.
type FrontMatter struct {
	Title   string   `yaml:"title"`
	Date    Date     `yaml:"date"`
	Tags    []string `yaml:"tags"`
	Draft   bool     `yaml:"draft"`
	Summary string   `yaml:"summary"`
	Images  []string `yaml:"images"`
	Type    string   `yaml:"type"`
	Layout  string   `yaml:"layout,omitempty"`
}

// Post is a parsed blog post document.
type Post struct {
	FrontMatter

	// Body is the markdown text following the front-matter.
	Body       []byte
	SourcePath string

	// Set by the catalog and the renderer.
	Slug        string
	Permalink   string
	ContentHTML template.HTML
}
