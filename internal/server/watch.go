package server

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is how long Watch waits after the last change before
// calling onChange.
const DefaultDebounce = 500 * time.Millisecond

// Watch calls onChange once per burst of file changes below roots until ctx
// is done. Missing roots are skipped; directories created later are picked
// up as they appear.
func Watch(ctx context.Context, roots []string, debounce time.Duration, log logrus.FieldLogger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watched := 0
	for _, root := range roots {
		if _, statErr := os.Stat(root); os.IsNotExist(statErr) {
			log.WithField("dir", root).Info("directory not found, not watching")
			continue
		}
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.WithError(err).WithField("path", path).Warn("error walking directory")
				return nil
			}
			if d.IsDir() {
				if err := watcher.Add(path); err != nil {
					log.WithError(err).WithField("path", path).Warn("failed to watch directory")
					return nil
				}
				watched++
			}
			return nil
		})
		if walkErr != nil {
			log.WithError(walkErr).WithField("dir", root).Warn("error during initial directory walk")
		}
	}
	log.WithField("dirs", watched).Info("watching for changes")

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
				continue
			}
			log.WithFields(logrus.Fields{"path": event.Name, "op": event.Op.String()}).Debug("change detected")

			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					log.WithError(err).WithField("path", event.Name).Warn("failed to watch new directory")
				}
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, onChange)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
