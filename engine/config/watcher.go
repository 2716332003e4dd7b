package config

import (
	"errors"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/albedo/engine/core"
)

// Watcher reloads the config file whenever it changes on disk and
// hands the result to the registered callback.
type Watcher struct {
	path     string
	onChange func(*Config)

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func Watch(path string, onChange func(*Config)) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     path,
		onChange: onChange,
		done:     make(chan struct{}),
		fsnotify: fsWatch,
	}
	if err := w.fsnotify.Add(path); err != nil {
		w.fsnotify.Close()
		return nil, err
	}

	go w.start()
	return w, nil
}

func (w *Watcher) start() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				// Editors often write in two steps; keep the old
				// config until the file parses again.
				core.LogWarn("config reload failed: %s", err)
				continue
			}
			core.LogInfo("config reloaded from %s", w.path)
			if w.onChange != nil {
				w.onChange(cfg)
			}
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("config watcher: %s", err)
		}
	}
}

func (w *Watcher) Close() error {
	if w.isClosed {
		return errors.New("config watcher already closed")
	}
	w.isClosed = true
	close(w.done)
	return w.fsnotify.Close()
}
