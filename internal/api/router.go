package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/quill/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// notify, if non-nil, is called after the notebook is opened or saved.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler, notify NotebookNotifier) chi.Router {
	h := NewHandler(svc, notify)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Notebook file.
	r.Get("/notebook", h.Notebook)
	r.Post("/notebook/open", h.OpenNotebook)
	r.Post("/notebook/save", h.SaveNotebook)
	r.Get("/notebooks", h.Notebooks)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
