package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gabrielperales/gabriel.perales.me/internal/render"
	"github.com/gabrielperales/gabriel.perales.me/internal/server"
	"github.com/gabrielperales/gabriel.perales.me/internal/site"
)

var serverPort int
var serveDrafts bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves a live preview of the site and reloads it on changes",
	Long: `The serve command loads the site into memory and serves it locally. It
watches the content, layouts, static and data directories and reloads the
site when anything changes. With --drafts, draft posts can be opened at
their permalink for preview; they never appear in listings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("performing initial load")
		s, err := site.Load(appConfig, logger)
		if err != nil {
			return fmt.Errorf("initial load failed, fix the issues and try again: %w", err)
		}
		r, err := render.NewFromDir(appConfig.LayoutsDir, logger)
		if err != nil {
			return fmt.Errorf("initial load failed, fix the issues and try again: %w", err)
		}

		srv := server.New(appConfig, s, r, server.Options{Drafts: serveDrafts}, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		watchDirs := []string{
			appConfig.ContentDir,
			appConfig.LayoutsDir,
			appConfig.StaticDir,
			filepath.Dir(appConfig.ProjectsFile),
		}
		go func() {
			err := server.Watch(ctx, watchDirs, server.DefaultDebounce, logger, func() {
				logger.Info("reloading site due to changes")
				if err := srv.Reload(); err != nil {
					logger.WithError(err).Error("reload failed, still serving the previous version")
					return
				}
				logger.Info("site reloaded")
			})
			if err != nil {
				logger.WithError(err).Error("file watching stopped")
			}
		}()

		addr := fmt.Sprintf(":%d", serverPort)
		logger.WithField("drafts", serveDrafts).Infof("serving site on http://localhost%s, press Ctrl+C to stop", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "Port to serve the site on")
	serveCmd.Flags().BoolVarP(&serveDrafts, "drafts", "D", false, "make draft posts reachable for preview")
	rootCmd.AddCommand(serveCmd)
}
