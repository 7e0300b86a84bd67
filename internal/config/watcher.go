package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"llmgateway/internal/logging"
)

// Watcher watches a config file for changes and invokes onChange with a
// freshly loaded FileConfig.
type Watcher struct {
	path   string
	fsw    *fsnotify.Watcher
	stopCh chan struct{}
}

// WatchFile starts watching path for writes/renames and calls onChange
// with the reloaded config on every event. The returned Watcher must be
// closed with Close to stop the goroutine and release the fsnotify
// handle.
func WatchFile(path string, onChange func(*FileConfig, error)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{path: path, fsw: fsw, stopCh: make(chan struct{})}
	go w.loop(onChange)
	return w, nil
}

func (w *Watcher) loop(onChange func(*FileConfig, error)) {
	log := logging.Logger().WithField("component", "config.watcher")
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := Reload(w.path)
			if err != nil {
				log.WithError(err).Warn("config reload failed, keeping previous config")
			}
			onChange(cfg, err)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("config watcher error")
		case <-w.stopCh:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stopCh)
	return w.fsw.Close()
}
