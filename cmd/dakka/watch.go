// watch.go — Re-run a job whenever one file changes.
package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce coalesces the write bursts of an appending producer.
const watchDebounce = 200 * time.Millisecond

// watchFile calls fn after every settled change to path until ctx is done.
// The parent directory is watched so editors that replace the file by
// rename are still seen. Errors from fn are logged, not returned.
func watchFile(ctx context.Context, path string, log *zap.Logger, fn func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	log.Info("watching for changes", zap.String("path", abs))

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			timer.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			if err := fn(); err != nil {
				log.Warn("re-export failed", zap.Error(err))
				continue
			}
			log.Debug("re-exported", zap.String("path", abs))
		}
	}
}
