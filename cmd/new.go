package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gabrielperales/gabriel.perales.me/internal/content"
	"github.com/gabrielperales/gabriel.perales.me/internal/model"
	"github.com/gabrielperales/gabriel.perales.me/internal/slug"
)

var (
	newTags    []string
	newSummary string
	newType    string
	newDraft   bool
)

var newCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Creates a new post document with front-matter",
	Long: `The new command writes content/posts/<slug>.md with today's date and the
given front-matter. It never overwrites an existing document.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		path, err := newPost(appConfig.ContentDir, model.FrontMatter{
			Title:   strings.TrimSpace(strings.Join(args, " ")),
			Date:    model.NewDate(now.Year(), now.Month(), now.Day()),
			Tags:    newTags,
			Draft:   newDraft,
			Summary: newSummary,
			Images:  []string{},
			Type:    newType,
		})
		if err != nil {
			return err
		}
		logger.WithField("path", path).Info("created post")
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// newPost writes a post skeleton to <contentDir>/posts/<slug>.md.
func newPost(contentDir string, fm model.FrontMatter) (string, error) {
	s := slug.Make(fm.Title)
	if s == "" {
		return "", fmt.Errorf("title %q produces an empty slug", fm.Title)
	}

	data, err := content.Marshal(&model.Post{FrontMatter: fm, Body: []byte("Write your post here.\n")})
	if err != nil {
		return "", err
	}

	// Parse it back so a bad tag fails here rather than at the next build.
	if _, err := content.Parse(s+".md", bytes.NewReader(data)); err != nil {
		return "", err
	}

	path := filepath.Join(contentDir, "posts", s+".md")
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create directory for '%s': %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("post '%s' already exists", path)
		}
		return "", fmt.Errorf("failed to create '%s': %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return path, nil
}

func init() {
	newCmd.Flags().StringSliceVarP(&newTags, "tags", "t", nil, "comma separated tags")
	newCmd.Flags().StringVarP(&newSummary, "summary", "s", "", "short summary")
	newCmd.Flags().StringVar(&newType, "type", "Blog", "post type label")
	newCmd.Flags().BoolVarP(&newDraft, "draft", "D", true, "mark the post as a draft")
	rootCmd.AddCommand(newCmd)
}
