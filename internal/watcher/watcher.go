// Package watcher re-runs detection when the files that drive it change.
// Only manifest-level changes matter: editing source code never alters the
// signal set, so events are filtered down to the files the catalog can see.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"rulekit/internal/logging"
)

// ChangeHandler receives the batch of changed paths after a quiet period.
type ChangeHandler func(changed []string)

// Watcher watches a project root for manifest and config changes.
type Watcher struct {
	root     string
	debounce time.Duration
	logger   *logging.Logger

	// interesting filters events to files that can change detection results.
	interesting func(name string) bool

	mu      sync.Mutex
	timer   *time.Timer
	changed map[string]bool
}

// relevantFiles are the basenames whose changes can alter the signal set.
var relevantFiles = map[string]bool{
	"package.json":      true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"go.mod":            true,
	"go.sum":            true,
	"requirements.txt":  true,
	"pyproject.toml":    true,
	"poetry.lock":       true,
	"Cargo.toml":        true,
	"Cargo.lock":        true,
	"wrangler.toml":     true,
	"config.json":       true, // .rulekit/config.json
}

// New creates a watcher for the project root.
func New(root string, debounce time.Duration, logger *logging.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		root:     root,
		debounce: debounce,
		logger:   logger,
		interesting: func(name string) bool {
			return relevantFiles[filepath.Base(name)]
		},
		changed: make(map[string]bool),
	}
}

// Run blocks until the context is cancelled, invoking handler with the set of
// changed paths after each quiet period.
func (w *Watcher) Run(ctx context.Context, handler ChangeHandler) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	// Watch the root and the config directory. Manifests live at the top
	// level; nested manifests are picked up on the next explicit run.
	if err := fsw.Add(w.root); err != nil {
		return err
	}
	confDir := filepath.Join(w.root, ".rulekit")
	if err := fsw.Add(confDir); err != nil {
		w.logger.Debug("Config directory not watched", map[string]interface{}{
			"dir":   confDir,
			"error": err.Error(),
		})
	}

	w.logger.Info("Watching for manifest changes", map[string]interface{}{
		"root":     w.root,
		"debounce": w.debounce.String(),
	})

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.interesting(event.Name) {
				continue
			}
			w.record(event.Name, handler)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watch error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

// record accumulates a change and (re)arms the debounce timer.
func (w *Watcher) record(path string, handler ChangeHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.changed[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		batch := make([]string, 0, len(w.changed))
		for p := range w.changed {
			batch = append(batch, p)
		}
		w.changed = make(map[string]bool)
		w.mu.Unlock()

		if len(batch) > 0 {
			handler(batch)
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
