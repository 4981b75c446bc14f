package universe

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"elite-trader/internal/logger"

	"github.com/fsnotify/fsnotify"
)

// Watch calls onChange after dataset files in dataDir stop changing for
// debounce. It blocks until ctx is cancelled.
func Watch(ctx context.Context, dataDir string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dataDir); err != nil {
		return fmt.Errorf("watch %s: %w", dataDir, err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isDatasetFile(ev.Name) || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Data", fmt.Sprintf("Watcher error: %v", err))
		case <-fire:
			fire = nil
			onChange()
		}
	}
}

func isDatasetFile(path string) bool {
	switch filepath.Base(path) {
	case CommoditiesFile, SystemsFile, StationsFile, ListingsFile:
		return true
	}
	return false
}
