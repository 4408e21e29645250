package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/quill/internal/checksum"
	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/noteservice"
)

// NotebookNotifier is told about notebook file operations made through the API.
// kind is "loaded" or "saved".
type NotebookNotifier func(kind, path string)

// Handler holds API route handlers.
type Handler struct {
	svc    *noteservice.Service
	notify NotebookNotifier
}

// NewHandler creates a new Handler. notify may be nil.
func NewHandler(svc *noteservice.Service, notify NotebookNotifier) *Handler {
	if notify == nil {
		notify = func(string, string) {}
	}
	return &Handler{svc: svc, notify: notify}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List note summaries in notebook order
//	@Tags			notes
//	@Produce		json
//	@Success		200		{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	items := h.svc.ListNotes(r.Context())
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note by ID
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note ID"
//	@Success		200		{object}	NoteDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.GetNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a note and append it to the notebook
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NoteRequest	true	"Note fields"
//	@Success		201		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.svc.SubmitNote(r.Context(), "", req.apply(models.Fields{}))
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Edit a note in place
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Note ID"
//	@Param			body	body		NoteRequest	true	"Fields to change"
//	@Success		200		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.svc.UpdateNote(r.Context(), chi.URLParam(r, "id"), req.apply)
	if err != nil {
		writeError(w, "update note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			id	path	string	true	"Note ID"
//	@Success		204		"Note deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeInfo responds with the notebook state and its checksum as ETag.
func (h *Handler) writeInfo(w http.ResponseWriter, r *http.Request) {
	info := h.svc.Info(r.Context())
	if info.Checksum != "" {
		w.Header().Set("ETag", checksum.ETag(info.Checksum))
	}
	writeJSON(w, http.StatusOK, info)
}

// Notebook handles GET /api/notebook.
//
//	@Summary		Describe the open notebook
//	@Tags			notebook
//	@Produce		json
//	@Success		200	{object}	NotebookInfo
//	@Security		BearerAuth
//	@Router			/notebook [get]
func (h *Handler) Notebook(w http.ResponseWriter, r *http.Request) {
	h.writeInfo(w, r)
}

// OpenNotebook handles POST /api/notebook/open.
//
//	@Summary		Replace the notebook with a document from the notebook directory
//	@Tags			notebook
//	@Accept			json
//	@Produce		json
//	@Param			body	body		OpenNotebookRequest	true	"Document to open"
//	@Success		200		{object}	NotebookInfo
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notebook/open [post]
func (h *Handler) OpenNotebook(w http.ResponseWriter, r *http.Request) {
	var req OpenNotebookRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.Open(r.Context(), req.Path); err != nil {
		writeError(w, "open notebook", err)
		return
	}
	h.notify("loaded", req.Path)
	h.writeInfo(w, r)
}

// SaveNotebook handles POST /api/notebook/save.
//
//	@Summary		Write the whole notebook to disk
//	@Tags			notebook
//	@Accept			json
//	@Produce		json
//	@Param			If-Match	header	string				false	"Checksum of the file expected on disk"
//	@Param			body		body	SaveNotebookRequest	false	"Target path; defaults to the current one"
//	@Success		200		{object}	NotebookInfo
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notebook/save [post]
func (h *Handler) SaveNotebook(w http.ResponseWriter, r *http.Request) {
	var req SaveNotebookRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ifMatch := checksum.FromETag(r.Header.Get("If-Match"))
	if err := h.svc.Save(r.Context(), req.Path, ifMatch); err != nil {
		writeError(w, "save notebook", err)
		return
	}
	h.notify("saved", h.svc.CurrentPath())
	h.writeInfo(w, r)
}

// Notebooks handles GET /api/notebooks.
//
//	@Summary		List notebook documents
//	@Tags			notebook
//	@Produce		json
//	@Success		200	{object}	NotebooksResponse
//	@Security		BearerAuth
//	@Router			/notebooks [get]
func (h *Handler) Notebooks(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.Notebooks(r.Context())
	if err != nil {
		writeError(w, "list notebooks", err)
		return
	}
	writeJSON(w, http.StatusOK, NotebooksResponse{Notebooks: files})
}
