package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/lectio/internal/storage"
)

const debounceDelay = 200 * time.Millisecond

// Target is a data file the watcher keeps in step with memory.
type Target struct {
	// Path relative to the data directory.
	Path string
	// Checksum returns the digest of what the program itself last read or
	// wrote, so its own saves are not mistaken for outside edits.
	Checksum func() string
	// Reload is called after the file changed outside the program.
	Reload func()
}

// Watch follows the targets' directories and reloads a target when its file
// is edited by something else, until ctx is cancelled. Bursts of events for
// the same file are debounced.
//
// Directories are watched rather than files, because atomic saves replace
// the file and a watch on the old inode would go silent.
func Watch(ctx context.Context, store storage.Provider, logger *slog.Logger, targets ...Target) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	byPath := make(map[string]*Target, len(targets))
	dirs := make(map[string]bool)
	for i := range targets {
		abs, err := store.Abs(targets[i].Path)
		if err != nil {
			return err
		}
		byPath[abs] = &targets[i]
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return err
		}
		dirs[dir] = true
		logger.Info("watcher: started", slog.String("dir", dir))
	}

	fired := make(chan *Target, len(targets))
	timers := make(map[*Target]*time.Timer, len(targets))
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	schedule := func(t *Target) {
		if timer, ok := timers[t]; ok {
			timer.Reset(debounceDelay)
			return
		}
		timers[t] = time.AfterFunc(debounceDelay, func() {
			select {
			case fired <- t:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case t := <-fired:
			reloadIfChanged(store, t, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			t, ok := byPath[filepath.Clean(ev.Name)]
			if !ok {
				continue
			}
			schedule(t)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func reloadIfChanged(store storage.Provider, t *Target, logger *slog.Logger) {
	cs, err := store.Checksum(t.Path)
	if err != nil {
		logger.Warn("watcher: checksum failed", slog.String("path", t.Path), slog.String("error", err.Error()))
		return
	}
	if cs == t.Checksum() {
		return
	}
	logger.Info("watcher: reloading", slog.String("path", t.Path))
	t.Reload()
}
