package content

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

const validDoc = `---
title: Release notes for the new iterator API
date: 2025-04-08
tags: [go, iterators, " Go "]
draft: false
summary: A tour of range-over-func.
images:
  - /static/images/iter.png
type: Blog
---

Some **markdown** here.

` + "```go\nfor v := range seq {\n}\n```\n"

func TestParse(t *testing.T) {
	post, err := Parse("posts/iter.md", strings.NewReader(validDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if post.Title != "Release notes for the new iterator API" {
		t.Errorf("Title = %q", post.Title)
	}
	want := time.Date(2025, 4, 8, 0, 0, 0, 0, time.UTC)
	if !post.Date.Time.Equal(want) {
		t.Errorf("Date = %v, want %v", post.Date.Time, want)
	}
	if got := post.Date.String(); got != "2025-04-08" {
		t.Errorf("Date.String() = %q", got)
	}
	// " Go " collapses into "go".
	if wantTags := []string{"go", "iterators"}; !reflect.DeepEqual(post.Tags, wantTags) {
		t.Errorf("Tags = %v, want %v", post.Tags, wantTags)
	}
	if post.Draft {
		t.Error("Draft = true, want false")
	}
	if post.Summary != "A tour of range-over-func." {
		t.Errorf("Summary = %q", post.Summary)
	}
	if !reflect.DeepEqual(post.Images, []string{"/static/images/iter.png"}) {
		t.Errorf("Images = %v", post.Images)
	}
	if post.Type != "Blog" {
		t.Errorf("Type = %q", post.Type)
	}
	if !bytes.HasPrefix(post.Body, []byte("Some **markdown**")) {
		t.Errorf("Body = %q", post.Body)
	}
	if post.SourcePath != "posts/iter.md" {
		t.Errorf("SourcePath = %q", post.SourcePath)
	}
}

func TestParseDefaults(t *testing.T) {
	doc := "---\ntitle: Minimal\ndate: '2024-10-26'\n---\nbody\n"
	post, err := Parse("min.md", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if post.Tags == nil || len(post.Tags) != 0 {
		t.Errorf("Tags = %#v, want empty non-nil", post.Tags)
	}
	if post.Images == nil || len(post.Images) != 0 {
		t.Errorf("Images = %#v, want empty non-nil", post.Images)
	}
	if post.Draft {
		t.Error("Draft defaulted to true")
	}
}

func TestParseDateLayouts(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2025-03-29", "2025-03-29"},
		{"'2025-03-29T10:30:00Z'", "2025-03-29T10:30:00Z"},
		{"'2025-03-29T10:30:00'", "2025-03-29T10:30:00"},
		{"'2025-03-29 10:30:00'", "2025-03-29 10:30:00"},
	}
	for _, tt := range tests {
		doc := "---\ntitle: Dated\ndate: " + tt.raw + "\n---\n"
		post, err := Parse("d.md", strings.NewReader(doc))
		if err != nil {
			t.Errorf("date %s: Parse() error = %v", tt.raw, err)
			continue
		}
		if got := post.Date.String(); got != tt.want {
			t.Errorf("date %s: String() = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestParseKeepsDistinctTags(t *testing.T) {
	tests := []struct {
		tags string
		want []string
	}{
		{`[C, C++, "C#"]`, []string{"C", "C++", "C#"}},
		{`["🦀", rust, "++"]`, []string{"🦀", "rust", "++"}},
		{`[go-lang, go lang, Go Lang]`, []string{"go-lang", "go lang"}},
		{`[c++, C++]`, []string{"c++"}},
	}
	for _, tt := range tests {
		doc := "---\ntitle: T\ndate: 2025-01-01\ntags: " + tt.tags + "\n---\n"
		post, err := Parse("t.md", strings.NewReader(doc))
		if err != nil {
			t.Errorf("tags %s: Parse() error = %v", tt.tags, err)
			continue
		}
		if !reflect.DeepEqual(post.Tags, tt.want) {
			t.Errorf("tags %s: got %q, want %q", tt.tags, post.Tags, tt.want)
		}
	}
}

func TestParseDateRejectsNonStrings(t *testing.T) {
	for _, v := range []interface{}{time.Date(2025, 4, 8, 0, 0, 0, 0, time.UTC), 2025, []string{"2025-04-08"}} {
		if _, err := parseDate(v); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("parseDate(%#v) error = %v, want ErrInvalidDate", v, err)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"no front-matter", "# Just markdown\n", ErrNoFrontMatter},
		{"missing title", "---\ndate: 2025-01-01\n---\n", ErrMissingTitle},
		{"blank title", "---\ntitle: '  '\ndate: 2025-01-01\n---\n", ErrMissingTitle},
		{"missing date", "---\ntitle: T\n---\n", ErrMissingDate},
		{"invalid date", "---\ntitle: T\ndate: 2025-13-45\n---\n", ErrInvalidDate},
		{"unparseable date", "---\ntitle: T\ndate: yesterday\n---\n", ErrInvalidDate},
		{"numeric date", "---\ntitle: T\ndate: 2025\n---\n", ErrInvalidDate},
		{"empty tag", "---\ntitle: T\ndate: 2025-01-01\ntags: [go, '']\n---\n", ErrEmptyTag},
		{"blank tag", "---\ntitle: T\ndate: 2025-01-01\ntags: [go, '   ']\n---\n", ErrEmptyTag},
		{"tags not a list", "---\ntitle: T\ndate: 2025-01-01\ntags:\n  a: b\n---\n", ErrInvalidFrontMatter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.md", strings.NewReader(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.want)
			}
			var docErr *DocumentError
			if !errors.As(err, &docErr) || docErr.Path != "bad.md" {
				t.Errorf("error %v does not carry the document path", err)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	docs := []string{
		validDoc,
		"---\ntitle: Draft thoughts\ndate: 2025-03-29\ndraft: true\n---\n\nNot yet.\n",
		"---\ntitle: 'Colons: everywhere'\ndate: '2024-10-26T08:00:00+02:00'\ntags: [yaml]\nlayout: wide.html\n---\n\nBody\n",
	}
	for _, doc := range docs {
		first, err := Parse("a.md", strings.NewReader(doc))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		out, err := Marshal(first)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		second, err := Parse("a.md", bytes.NewReader(out))
		if err != nil {
			t.Fatalf("Parse(Marshal()) error = %v\n%s", err, out)
		}

		if first.Title != second.Title || first.Draft != second.Draft ||
			first.Summary != second.Summary || first.Type != second.Type || first.Layout != second.Layout {
			t.Errorf("scalar fields changed:\n%+v\n%+v", first.FrontMatter, second.FrontMatter)
		}
		if !first.Date.Equal(second.Date) || first.Date.String() != second.Date.String() {
			t.Errorf("date changed: %s -> %s", first.Date, second.Date)
		}
		if !reflect.DeepEqual(first.Tags, second.Tags) {
			t.Errorf("tags changed: %v -> %v", first.Tags, second.Tags)
		}
		if !reflect.DeepEqual(first.Images, second.Images) {
			t.Errorf("images changed: %v -> %v", first.Images, second.Images)
		}
		if !bytes.Equal(first.Body, second.Body) {
			t.Errorf("body changed: %q -> %q", first.Body, second.Body)
		}
	}
}
