package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/lectio/internal/index"
	"github.com/starford/lectio/internal/notes"
	"github.com/starford/lectio/internal/notify"
	"github.com/starford/lectio/internal/storage"
	"github.com/starford/lectio/internal/tracker"
)

// workspace is the data directory opened for one run: storage, index and
// the tracker over them.
type workspace struct {
	store *storage.FS
	db    *index.DB
	svc   *tracker.Service
}

func openWorkspace(cfg *Config, logger *slog.Logger, extra ...tracker.Option) (*workspace, error) {
	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	opts := []tracker.Option{
		tracker.WithStrict(cfg.Chapters.Strict),
		tracker.WithIndex(db),
		tracker.WithLogger(logger),
		tracker.WithNotifier(notify.NewLogger(logger)),
		tracker.WithSession(notes.Session{Author: cfg.Session.Author}),
	}
	svc := tracker.New(store, tracker.Files{
		Chapters: cfg.Data.ChaptersFile,
		Notes:    cfg.Data.NotesFile,
	}, append(opts, extra...)...)

	if err := svc.Load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load data: %w", err)
	}
	return &workspace{store: store, db: db, svc: svc}, nil
}

func (w *workspace) Close() error {
	return w.db.Close()
}
