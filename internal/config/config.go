package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config holds the site settings read from config.yaml, FOLIO_* environment
// variables and flag defaults.
type Config struct {
	SiteTitle     string                 `mapstructure:"siteTitle"`
	Description   string                 `mapstructure:"description"`
	Author        string                 `mapstructure:"author"`
	BaseURL       string                 `mapstructure:"baseURL"`
	OutputDir     string                 `mapstructure:"outputDir"`
	ContentDir    string                 `mapstructure:"contentDir"`
	LayoutsDir    string                 `mapstructure:"layoutsDir"`
	StaticDir     string                 `mapstructure:"staticDir"`
	ProjectsFile  string                 `mapstructure:"projectsFile"`
	BuildDrafts   bool                   `mapstructure:"buildDrafts"`
	HomePostCount int                    `mapstructure:"homePostCount"`
	LogLevel      string                 `mapstructure:"logLevel"`
	LogFormat     string                 `mapstructure:"logFormat"`
	Params        map[string]interface{} `mapstructure:"params"`
}

// Defaults maps every config key to its default value.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"siteTitle":     "My Portfolio",
		"description":   "",
		"author":        "",
		"baseURL":       "",
		"outputDir":     "public",
		"contentDir":    "content",
		"layoutsDir":    "layouts",
		"staticDir":     "static",
		"projectsFile":  filepath.Join("data", "projects.yaml"),
		"buildDrafts":   false,
		"homePostCount": 5,
		"logLevel":      "info",
		"logFormat":     "text",
	}
}

// Default returns a Config populated with Defaults.
func Default() Config {
	return Config{
		SiteTitle:     "My Portfolio",
		OutputDir:     "public",
		ContentDir:    "content",
		LayoutsDir:    "layouts",
		StaticDir:     "static",
		ProjectsFile:  filepath.Join("data", "projects.yaml"),
		HomePostCount: 5,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Validate reports settings the build cannot work with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("outputDir must not be empty")
	}
	if strings.TrimSpace(c.ContentDir) == "" {
		return fmt.Errorf("contentDir must not be empty")
	}
	if err := c.validateOutputDir(); err != nil {
		return err
	}
	if c.HomePostCount < 0 {
		return fmt.Errorf("homePostCount must not be negative, got %d", c.HomePostCount)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid logLevel: %w", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("logFormat must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// validateOutputDir rejects an outputDir whose removal at the start of a
// build would delete sources, and one that would be built inside the
// content or static tree.
func (c Config) validateOutputDir() error {
	out, err := filepath.Abs(c.OutputDir)
	if err != nil {
		return fmt.Errorf("invalid outputDir %q: %w", c.OutputDir, err)
	}

	sources := []struct{ key, dir string }{
		{"contentDir", c.ContentDir},
		{"staticDir", c.StaticDir},
		{"layoutsDir", c.LayoutsDir},
	}
	if strings.TrimSpace(c.ProjectsFile) != "" {
		sources = append(sources, struct{ key, dir string }{"projectsFile", filepath.Dir(c.ProjectsFile)})
	}
	for _, src := range sources {
		if strings.TrimSpace(src.dir) == "" {
			continue
		}
		dir, err := filepath.Abs(src.dir)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", src.key, src.dir, err)
		}
		if within(out, dir) {
			return fmt.Errorf("outputDir %q contains %s %q and would delete it", c.OutputDir, src.key, src.dir)
		}
		if (src.key == "contentDir" || src.key == "staticDir") && within(dir, out) {
			return fmt.Errorf("outputDir %q must not be inside %s %q", c.OutputDir, src.key, src.dir)
		}
	}
	return nil
}

// within reports whether path is dir or lies below it. Both must be absolute.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// NewLogger builds the logger described by LogLevel and LogFormat.
func (c Config) NewLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
