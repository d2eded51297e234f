package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gabrielperales/gabriel.perales.me/internal/catalog"
	"github.com/gabrielperales/gabriel.perales.me/internal/site"
	"github.com/gabrielperales/gabriel.perales.me/internal/slug"
)

var listDrafts bool
var listTag string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists posts newest first",
	Long: `The list command prints every published post, newest first. Use --drafts
to include drafts and --tag to show only posts declaring a tag.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := site.Load(appConfig, logger)
		if err != nil {
			return err
		}
		return writeList(cmd.OutOrStdout(), s.Posts, catalog.ListOptions{IncludeDrafts: listDrafts}, listTag)
	},
}

func writeList(out io.Writer, c *catalog.Catalog, opts catalog.ListOptions, tag string) error {
	posts := c.Posts(opts)
	if tag != "" {
		g, err := c.Tag(slug.Tag(tag), opts)
		if err != nil {
			return err
		}
		posts = g.Posts
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSLUG\tDRAFT\tTAGS")
	for _, p := range posts {
		draft := ""
		if p.Draft {
			draft = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Date.Format("2006-01-02"), p.Slug, draft, strings.Join(p.Tags, ", "))
	}
	return w.Flush()
}

func init() {
	listCmd.Flags().BoolVarP(&listDrafts, "drafts", "D", false, "include draft posts")
	listCmd.Flags().StringVarP(&listTag, "tag", "t", "", "only posts declaring this tag")
	rootCmd.AddCommand(listCmd)
}
