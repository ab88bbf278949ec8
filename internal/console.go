package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/lectio/internal/models"
	"github.com/starford/lectio/internal/view"
)

// Console runs one-shot commands against the data files and prints the
// result. Logs go to stderr as text.
type Console struct {
	ws  *workspace
	out io.Writer
}

// OpenConsole loads the data files named by the config.
func OpenConsole(opts ...Option) (*Console, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	out := app.out
	if out == nil {
		out = os.Stdout
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))

	ws, err := openWorkspace(app.config, logger)
	if err != nil {
		return nil, err
	}
	return &Console{ws: ws, out: out}, nil
}

// Close releases the index.
func (c *Console) Close() error {
	return c.ws.Close()
}

// Show prints the chapter table.
func (c *Console) Show(mode string) error {
	_, err := fmt.Fprintln(c.out, view.Table(c.ws.svc.ChapterRows(mode)))
	return err
}

// Attend records an attended lecture for chapter n and saves.
func (c *Console) Attend(n int) error {
	return c.count(n, c.ws.svc.Attend)
}

// Miss records a missed lecture for chapter n and saves.
func (c *Console) Miss(n int) error {
	return c.count(n, c.ws.svc.Miss)
}

func (c *Console) count(n int, op func() (models.Chapter, error)) error {
	if _, err := c.ws.svc.SelectChapter(n); err != nil {
		return err
	}
	if _, err := op(); err != nil {
		return err
	}
	if err := c.ws.svc.SaveChapters(); err != nil {
		return err
	}
	return c.Show(view.ModeChapters)
}

// Notes prints a chapter's notes.
func (c *Console) Notes(chapterID, query, sort string) error {
	_, err := fmt.Fprintln(c.out, view.Cards(c.ws.svc.NoteCards(chapterID, query, sort)))
	return err
}

// AddNote adds an HTML note to a chapter and prints it.
func (c *Console) AddNote(chapterID, html string, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	card, err := c.ws.svc.AddNote(chapterID, html, tags)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, view.Cards([]view.Card{card}))
	return err
}

// RemoveNote deletes a note.
func (c *Console) RemoveNote(chapterID string, noteID int64) error {
	if err := c.ws.svc.DeleteNote(chapterID, noteID); err != nil {
		return err
	}
	_, err := fmt.Fprintf(c.out, "deleted note %d from chapter %s\n", noteID, chapterID)
	return err
}

// Search prints index hits for query.
func (c *Console) Search(query string, limit int) error {
	results, err := c.ws.svc.Search(query, limit)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, view.SearchTable(results))
	return err
}
