package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lectio/internal/tracker"
	"github.com/starford/lectio/internal/view"
)

// Handler holds API route handlers.
type Handler struct {
	svc *tracker.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *tracker.Service) *Handler {
	return &Handler{svc: svc}
}

// noteParams extracts the chapter id and note id from the URL.
func noteParams(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	chapter := chi.URLParam(r, "chapter")
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return "", 0, false
	}
	return chapter, id, true
}

// ListChapters handles GET /api/chapters.
func (h *Handler) ListChapters(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode != view.ModeChapters {
		mode = view.ModeModules
	}
	resp := ChapterListResponse{Mode: mode, Rows: h.svc.ChapterRows(mode)}
	if sel, ok := h.svc.Selected(); ok {
		resp.Selected = &sel
	}
	writeJSON(w, http.StatusOK, resp)
}

// SelectChapter handles POST /api/chapters/{number}/select.
func (h *Handler) SelectChapter(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid chapter number"))
		return
	}
	ch, err := h.svc.SelectChapter(n)
	if err != nil {
		writeError(w, "select chapter", err)
		return
	}
	writeJSON(w, http.StatusOK, chapterResponse(ch))
}

// Attend handles POST /api/chapters/attend.
func (h *Handler) Attend(w http.ResponseWriter, _ *http.Request) {
	ch, err := h.svc.Attend()
	if err != nil {
		writeError(w, "attend", err)
		return
	}
	writeJSON(w, http.StatusOK, chapterResponse(ch))
}

// Miss handles POST /api/chapters/miss.
func (h *Handler) Miss(w http.ResponseWriter, _ *http.Request) {
	ch, err := h.svc.Miss()
	if err != nil {
		writeError(w, "miss", err)
		return
	}
	writeJSON(w, http.StatusOK, chapterResponse(ch))
}

// SaveChapters handles POST /api/chapters/save.
func (h *Handler) SaveChapters(w http.ResponseWriter, _ *http.Request) {
	if err := h.svc.SaveChapters(); err != nil {
		writeError(w, "save chapters", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListNotes handles GET /api/notes/{chapter}.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	chapter := chi.URLParam(r, "chapter")
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, NoteListResponse{
		ChapterID: chapter,
		Notes:     h.svc.NoteCards(chapter, q.Get("q"), q.Get("sort")),
	})
}

// AddNote handles POST /api/notes/{chapter}.
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req AddNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	card, err := h.svc.AddNote(chi.URLParam(r, "chapter"), req.Content, req.Tags)
	if err != nil {
		writeError(w, "add note", err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// EditNote handles POST /api/notes/{chapter}/{id}/edit.
func (h *Handler) EditNote(w http.ResponseWriter, r *http.Request) {
	chapter, id, ok := noteParams(w, r)
	if !ok {
		return
	}
	card, err := h.svc.EditNote(chapter, id)
	if err != nil {
		writeError(w, "edit note", err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// CancelEdit handles POST /api/notes/{chapter}/{id}/cancel.
func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	chapter, id, ok := noteParams(w, r)
	if !ok {
		return
	}
	card, err := h.svc.CancelEdit(chapter, id)
	if err != nil {
		writeError(w, "cancel edit", err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// UpdateNote handles PUT /api/notes/{chapter}/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	chapter, id, ok := noteParams(w, r)
	if !ok {
		return
	}
	var req UpdateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	card, err := h.svc.UpdateNote(chapter, id, req.Content, req.Tags)
	if err != nil {
		writeError(w, "update note", err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// DeleteNote handles DELETE /api/notes/{chapter}/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	chapter, id, ok := noteParams(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteNote(chapter, id); err != nil {
		writeError(w, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTags handles GET /api/tags.
func (h *Handler) ListTags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TagsResponse{Tags: h.svc.Tags()})
}

// AddTag handles POST /api/tags.
func (h *Handler) AddTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: h.svc.AddTag(req.Tag)})
}

// RemoveTag handles DELETE /api/tags/{tag}.
func (h *Handler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	if decoded, err := url.PathUnescape(tag); err == nil {
		tag = decoded
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: h.svc.RemoveTag(tag)})
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
