// Package watch keeps the in-memory notebook in step with its file on disk.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/quill/internal/checksum"
	"github.com/starford/quill/internal/storage"
)

// DefaultDebounce is used when Watch is given a non-positive debounce.
const DefaultDebounce = 200 * time.Millisecond

// EventCallback is called after the watcher acts on the notebook file.
// kind is one of "loaded", "conflict", "removed".
type EventCallback func(kind string, path string)

// Reloader is the part of the note service the watcher drives.
type Reloader interface {
	CurrentPath() string
	Checksum() string
	Dirty() bool
	Reload(ctx context.Context) error
}

// Watch starts an fsnotify watcher on the notebook root and processes file
// change events until ctx is cancelled.
//
// Events for the current notebook file are debounced. When the settled file
// differs from the last loaded or saved version it is reloaded if there are
// no unsaved changes; otherwise a "conflict" is reported and memory is kept.
func Watch(ctx context.Context, svc Reloader, store storage.Provider, root string, debounce time.Duration, logger *slog.Logger, cb EventCallback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	c := &checker{svc: svc, store: store, logger: logger, cb: cb}

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			c.check(ctx)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					continue
				}
			}

			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			current := svc.CurrentPath()
			if current == "" || filepath.Clean(current) != rel {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				logger.Debug("watcher: notebook event", slog.String("path", rel), slog.String("op", ev.Op.String()))
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// checker compares the settled file against the service state. It remembers
// what it already reported so a burst of events yields one callback.
type checker struct {
	svc    Reloader
	store  storage.Provider
	logger *slog.Logger
	cb     EventCallback

	missing     bool
	conflictSum string
}

func (c *checker) emit(kind, path string) {
	if c.cb != nil {
		c.cb(kind, path)
	}
}

func (c *checker) check(ctx context.Context) {
	path := c.svc.CurrentPath()
	if path == "" {
		return
	}

	data, err := c.store.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		if !c.missing {
			c.missing = true
			c.logger.Warn("watcher: notebook removed", slog.String("path", path))
			c.emit("removed", path)
		}
		return
	}
	if err != nil {
		c.logger.Warn("watcher: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	c.missing = false

	sum := checksum.Sum(data)
	if sum == c.svc.Checksum() {
		return
	}

	if c.svc.Dirty() {
		if sum != c.conflictSum {
			c.conflictSum = sum
			c.logger.Warn("watcher: notebook changed on disk with unsaved edits", slog.String("path", path))
			c.emit("conflict", path)
		}
		return
	}

	if err := c.svc.Reload(ctx); err != nil {
		c.logger.Warn("watcher: reload failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	c.conflictSum = ""
	c.logger.Debug("watcher: reloaded", slog.String("path", path))
	c.emit("loaded", path)
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
