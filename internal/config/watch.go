package config

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file on change and hands the result to onChange.
// Edits are debounced because editors commonly emit several write events per
// save. The returned stop function releases the watcher.
func Watch(path string, defaults *Config, onChange func(*Config)) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors often replace the file on save, which
	// drops a watch registered on the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		var lastReload time.Time
		for {
			select {
			case <-done:
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if time.Since(lastReload) < 500*time.Millisecond {
					continue
				}
				lastReload = time.Now()

				cfg, err := ParseFile(path, defaults)
				if err != nil {
					log.Printf("[CONFIG] reload failed: %v", err)
					continue
				}
				log.Printf("[CONFIG] reloaded %s", path)
				onChange(cfg)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("[CONFIG] watch error: %v", err)
			}
		}
	}()

	return func() {
		close(done)
		w.Close()
	}, nil
}
