package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the burst of events editors emit on save.
const debounceWindow = 500 * time.Millisecond

// Watch reloads the config file at path whenever it changes and hands
// the result to onChange. The parent directory is watched so atomic
// saves (write temp, rename over) are seen. Returns a stop function.
func Watch(path string, onChange func(*Config), onError func(error)) (func(), error) {
	if path == "" {
		path = DefaultPath()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	var mu sync.Mutex
	var pending *time.Timer

	reload := func() {
		cfg, err := Load(abs)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				mu.Lock()
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(debounceWindow, reload)
				mu.Unlock()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		w.Close()
		mu.Lock()
		if pending != nil {
			pending.Stop()
		}
		mu.Unlock()
	}, nil
}
