package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gabrielperales/gabriel.perales.me/internal/build"
	"github.com/gabrielperales/gabriel.perales.me/internal/config"
	"github.com/gabrielperales/gabriel.perales.me/internal/render"
	"github.com/gabrielperales/gabriel.perales.me/internal/site"
)

var buildDrafts bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the static site from projects, posts, layouts and static assets",
	Long: `The build command parses every Markdown post in './content/' and the
project list in './data/projects.yaml', renders them with the layouts in
'./layouts/' (or the bundled ones), copies './static/' and writes the site
to the configured output directory (default './public/').

Any post with malformed front-matter fails the build.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		if buildDrafts {
			cfg.BuildDrafts = true
		}
		_, err := runBuild(cfg)
		return err
	},
}

func runBuild(cfg config.Config) (build.Result, error) {
	logger.WithFields(logrus.Fields{
		"outputDir": cfg.OutputDir,
		"baseURL":   cfg.BaseURL,
		"siteTitle": cfg.SiteTitle,
	}).Info("starting build")

	s, err := site.Load(cfg, logger)
	if err != nil {
		return build.Result{}, err
	}
	r, err := render.NewFromDir(cfg.LayoutsDir, logger)
	if err != nil {
		return build.Result{}, err
	}
	return build.New(cfg, r, logger).Run(s)
}

func init() {
	buildCmd.Flags().BoolVarP(&buildDrafts, "drafts", "D", false, "also write pages for draft posts (they stay unlisted)")
	rootCmd.AddCommand(buildCmd)
}
