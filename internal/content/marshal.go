package content

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/gabrielperales/gabriel.perales.me/internal/model"
)

// Marshal writes p back in document form. Parse(Marshal(p)) reproduces the
// same front-matter values and body.
func Marshal(p *model.Post) ([]byte, error) {
	fm := p.FrontMatter
	if fm.Tags == nil {
		fm.Tags = []string{}
	}
	if fm.Images == nil {
		fm.Images = []string{}
	}

	meta, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal front-matter for %q: %w", fm.Title, err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(meta)
	buf.WriteString("---\n\n")
	buf.Write(p.Body)
	return buf.Bytes(), nil
}
