// Package projects loads the portfolio project list.
package projects

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/gabrielperales/gabriel.perales.me/internal/model"
)

var ErrMissingField = errors.New("missing required field")

// Load reads the YAML project list at path. Order in the file is display
// order. A missing file means the site has no projects.
func Load(path string, log logrus.FieldLogger) ([]model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.WithField("path", path).Info("no projects file, rendering without projects")
			return []model.Project{}, nil
		}
		return nil, fmt.Errorf("error reading projects file %s: %w", path, err)
	}

	list, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error in projects file %s: %w", path, err)
	}
	log.WithFields(logrus.Fields{"path": path, "count": len(list)}).Debug("loaded projects")
	return list, nil
}

// Parse decodes and validates a YAML sequence of projects.
func Parse(data []byte) ([]model.Project, error) {
	var list []model.Project
	if err := yaml.UnmarshalStrict(data, &list); err != nil {
		return nil, fmt.Errorf("error unmarshalling projects: %w", err)
	}

	var errs []error
	for i := range list {
		p := &list[i]
		p.Title = strings.TrimSpace(p.Title)
		p.Description = strings.TrimSpace(p.Description)
		p.Href = strings.TrimSpace(p.Href)
		p.ImgSrc = strings.TrimSpace(p.ImgSrc)
		if p.Title == "" {
			errs = append(errs, fmt.Errorf("project %d: %w: title", i, ErrMissingField))
		}
		if p.Description == "" {
			errs = append(errs, fmt.Errorf("project %d (%q): %w: description", i, p.Title, ErrMissingField))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if list == nil {
		list = []model.Project{}
	}
	return list, nil
}
