// Package watch reports which tracked files were touched on disk since the
// last commit. It is advisory: commit and status decisions still come from
// fingerprints.
package watch

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

var ignoreDirs = map[string]bool{
	".git":         true,
	".svc":         true,
	"node_modules": true,
	"vendor":       true,
}

// Watcher watches the directories holding tracked files.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	done    chan struct{}

	mu      sync.RWMutex
	tracked map[string]bool
	touched map[string]fsnotify.Op
	dirs    map[string]bool
}

// New starts a watcher for files under root.
func New(root string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		root:    abs,
		watcher: fw,
		logger:  logger,
		done:    make(chan struct{}),
		tracked: make(map[string]bool),
		touched: make(map[string]fsnotify.Op),
		dirs:    make(map[string]bool),
	}
	go w.watchLoop()
	return w, nil
}

// Track starts reporting events for name, relative to the root.
func (w *Watcher) Track(name string) error {
	name = filepath.Clean(name)
	if ShouldIgnore(name) {
		return nil
	}
	dir := filepath.Dir(filepath.Join(w.root, name))

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.tracked[name] = true
	return nil
}

// Untrack stops reporting name. The directory stays watched.
func (w *Watcher) Untrack(name string) {
	name = filepath.Clean(name)
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.tracked, name)
	delete(w.touched, name)
}

// Touched returns the tracked files with events since the last Reset,
// sorted by name.
func (w *Watcher) Touched() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	names := make([]string, 0, len(w.touched))
	for name := range w.touched {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset forgets every touched file.
func (w *Watcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touched = make(map[string]fsnotify.Op)
}

// Close stops the watcher and waits for its loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		w.logger.Error("getting relative path", zap.Error(err))
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.tracked[rel] {
		return
	}
	w.touched[rel] |= event.Op
	w.logger.Debug("tracked file touched",
		zap.String("file", rel),
		zap.String("op", event.Op.String()),
	)
}

// ShouldIgnore reports whether path lies in a directory that is never
// watched.
func ShouldIgnore(path string) bool {
	if path == "" || path == "." {
		return true
	}
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if ignoreDirs[part] {
			return true
		}
	}
	return false
}
