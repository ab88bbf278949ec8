package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lectio/internal/tracker"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *tracker.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Chapters.
	r.Get("/chapters", h.ListChapters)
	r.Post("/chapters/{number}/select", h.SelectChapter)
	r.Post("/chapters/attend", h.Attend)
	r.Post("/chapters/miss", h.Miss)
	r.Post("/chapters/save", h.SaveChapters)

	// Notes.
	r.Get("/notes/{chapter}", h.ListNotes)
	r.Post("/notes/{chapter}", h.AddNote)
	r.Post("/notes/{chapter}/{id}/edit", h.EditNote)
	r.Post("/notes/{chapter}/{id}/cancel", h.CancelEdit)
	r.Put("/notes/{chapter}/{id}", h.UpdateNote)
	r.Delete("/notes/{chapter}/{id}", h.DeleteNote)

	// Tag buffer.
	r.Get("/tags", h.ListTags)
	r.Post("/tags", h.AddTag)
	r.Delete("/tags/{tag}", h.RemoveTag)

	// Search.
	r.Get("/search", h.Search)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
