// Package models defines the domain types for Quill.
package models

import "time"

// Note is a single notebook entry.
//
// ID is assigned in memory when a note is created or loaded and is never
// written to the notebook file.
type Note struct {
	ID          string `json:"-"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	CodeSnippet string `json:"code snippet"`
	Link        string `json:"link"`
	Tags        string `json:"tags"`
	Meta        string `json:"meta"`
}

// Fields returns the user-editable part of the note.
func (n Note) Fields() Fields {
	return Fields{
		Title:       n.Title,
		Text:        n.Text,
		CodeSnippet: n.CodeSnippet,
		Link:        n.Link,
		Tags:        n.Tags,
	}
}

// Fields holds the values a user can type into an editor session.
// Meta is deliberately absent: it is stamped on submit.
type Fields struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	CodeSnippet string `json:"code_snippet"`
	Link        string `json:"link"`
	Tags        string `json:"tags"`
}

// NotebookFile is a lightweight representation of a notebook document on disk.
type NotebookFile struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
