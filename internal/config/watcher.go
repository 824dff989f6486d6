package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the configuration file when it changes on disk and hands
// the new Config to a callback. The callback runs on the watcher goroutine;
// callers must marshal it onto the event loop themselves.
type Watcher struct {
	fw   *fsnotify.Watcher
	done chan struct{}
}

// Watch starts watching path. Reload errors (mid-write parses, validation
// failures) are logged and the previous configuration stays in effect.
func Watch(path string, onChange func(Config), log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors replace files on save, which drops a
	// watch held on the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{fw: fw, done: make(chan struct{})}
	go w.run(path, onChange, log)
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	<-w.done
	return err
}

func (w *Watcher) run(path string, onChange func(Config), log *zap.Logger) {
	defer close(w.done)

	abs, _ := filepath.Abs(path)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			evAbs, _ := filepath.Abs(ev.Name)
			if evAbs != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				log.Warn("config reload failed", zap.Error(err))
				continue
			}
			log.Info("config reloaded", zap.String("path", path))
			onChange(cfg)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Warn("config watcher error", zap.Error(err))
		}
	}
}
