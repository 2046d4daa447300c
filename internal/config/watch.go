package config

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file on change and hands the parsed result to
// onReload. It watches the containing directory so editor rename-and-replace
// saves are caught, debounces rapid events, and skips reloads that fail to
// parse. Blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	filename := filepath.Base(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	log.Printf("Watching %s for config changes", path)

	const debounce = 500 * time.Millisecond
	var debounceTimer *time.Timer

	reload := func() {
		cfg, _, err := LoadFromPath(path)
		if err != nil {
			log.Printf("Config reload skipped: %v", err)
			return
		}
		log.Printf("Config reloaded from %s", path)
		onReload(cfg)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Config watcher error: %v", err)

		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return ctx.Err()
		}
	}
}
