package fs

import (
	"path/filepath"
	"sync"

	"github.com/codefionn/aifm/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// Event is a filesystem change below a watched directory.
type Event struct {
	Op   string `json:"op"`
	Path string `json:"path"`
}

// Watcher reports changes in the working root and in directories that
// were listed through the Service.
type Watcher struct {
	watcher   *fsnotify.Watcher
	handler   func(Event)
	stopWatch chan struct{}
	stopOnce  sync.Once
	done      chan struct{}

	mu      sync.Mutex
	watched map[string]struct{}
}

// NewWatcher starts a watcher that calls handler for every event.
func NewWatcher(handler func(Event)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:   fw,
		handler:   handler,
		stopWatch: make(chan struct{}),
		done:      make(chan struct{}),
		watched:   make(map[string]struct{}),
	}
	go w.watchFiles()
	return w, nil
}

// Watch adds dir. Watching the same directory twice is a no-op.
func (w *Watcher) Watch(dir string) error {
	dir = filepath.Clean(dir)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.watched[dir]; ok {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.watched[dir] = struct{}{}
	return nil
}

// Retarget drops every watched directory and watches root instead.
func (w *Watcher) Retarget(root string) error {
	w.mu.Lock()
	for dir := range w.watched {
		if err := w.watcher.Remove(dir); err != nil {
			logger.Global().Debug("watcher: remove %s: %v", dir, err)
		}
		delete(w.watched, dir)
	}
	w.mu.Unlock()

	return w.Watch(root)
}

// Watched returns the number of watched directories.
func (w *Watcher) Watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watched)
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopWatch)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) watchFiles() {
	defer close(w.done)
	for {
		select {
		case <-w.stopWatch:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			op := opName(event.Op)
			if op == "" {
				continue
			}
			if w.handler != nil {
				w.handler(Event{Op: op, Path: event.Name})
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Global().Error("filesystem watcher error: %v", err)
		}
	}
}

func opName(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	case op.Has(fsnotify.Write):
		return "write"
	default:
		return ""
	}
}
