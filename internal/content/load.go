package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gabrielperales/gabriel.perales.me/internal/model"
)

// DefaultType is the post type for documents directly under the content root.
const DefaultType = "post"

// LoadDir parses every markdown file below root. A document that fails to
// parse does not stop the walk; all failures are returned together so an
// author sees every broken file in one build.
func LoadDir(root string, log logrus.FieldLogger) ([]*model.Post, error) {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content directory '%s' not found. Please create it and add your Markdown files", root)
		}
		return nil, fmt.Errorf("failed to stat content directory '%s': %w", root, err)
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("error accessing path '%s' during walk: %w", path, walkErr)
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	posts := make([]*model.Post, 0, len(paths))
	var errs []error
	for _, path := range paths {
		post, err := LoadFile(root, path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		log.WithFields(logrus.Fields{
			"path":  path,
			"title": post.Title,
			"draft": post.Draft,
		}).Debug("parsed post")
		posts = append(posts, post)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%d of %d documents failed to parse: %w", len(errs), len(paths), errors.Join(errs...))
	}
	return posts, nil
}

// LoadFile parses one document and fills in its type from the directory it
// sits in, unless the front-matter names one.
func LoadFile(root, path string) (*model.Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DocumentError{Path: path, Err: err}
	}
	defer f.Close()

	post, err := Parse(path, f)
	if err != nil {
		return nil, err
	}
	if post.Type == "" {
		post.Type = typeFromPath(root, path)
	}
	return post, nil
}

func typeFromPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return DefaultType
	}
	parts := strings.Split(filepath.Dir(rel), string(filepath.Separator))
	if len(parts) > 0 && parts[0] != "." && parts[0] != "" {
		return parts[0]
	}
	return DefaultType
}
