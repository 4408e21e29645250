package api

import (
	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/noteservice"
)

// NoteRequest is the request body for creating or editing a note.
// Omitted fields are empty on create and keep their value on edit.
type NoteRequest struct {
	Title       *string `json:"title" example:"Hello"`
	Text        *string `json:"text" example:"Some text"`
	CodeSnippet *string `json:"code_snippet" example:"fmt.Println(1)"`
	Link        *string `json:"link" example:"https://go.dev"`
	Tags        *string `json:"tags" example:"go, notes"`
}

// apply overlays the set request fields onto f.
func (r NoteRequest) apply(f models.Fields) models.Fields {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&f.Title, r.Title)
	set(&f.Text, r.Text)
	set(&f.CodeSnippet, r.CodeSnippet)
	set(&f.Link, r.Link)
	set(&f.Tags, r.Tags)
	return f
}

// OpenNotebookRequest is the request body for POST /notebook/open.
type OpenNotebookRequest struct {
	Path string `json:"path" example:"work.json" validate:"required"`
}

// SaveNotebookRequest is the request body for POST /notebook/save.
type SaveNotebookRequest struct {
	Path string `json:"path,omitempty" example:"work.json"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = noteservice.NoteListItem

// NotebookInfo describes the open notebook (aliased from the domain layer).
type NotebookInfo = noteservice.NotebookInfo

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// NotebooksResponse lists the notebook documents in the notebook directory.
type NotebooksResponse struct {
	Notebooks []models.NotebookFile `json:"notebooks" validate:"required"`
}
