// Package editor implements one-shot note editing sessions.
package editor

import (
	"strings"
	"sync"
	"time"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/notebook"
)

// TimestampLayout is the layout of the timestamp inside a note's meta field.
const TimestampLayout = "2006-01-02 15:04:05"

// MetaPrefix starts every meta field.
const MetaPrefix = "Edited on "

// Meta returns the meta field for a note saved at t.
func Meta(t time.Time) string {
	return MetaPrefix + t.Format(TimestampLayout)
}

// Mode is fixed when a session is opened.
type Mode string

// Session modes.
const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Submitter is the store side of a session.
type Submitter interface {
	Submit(targetID string, n models.Note) (models.Note, notebook.Change)
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the time source used for the meta field.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session is a single create-or-edit interaction. It produces exactly one
// insertion or replacement and cannot be reused afterwards.
type Session struct {
	mode     Mode
	target   string
	original models.Fields
	store    Submitter
	now      func() time.Time

	mu     sync.Mutex
	closed bool
}

// NewCreate opens a session for a fresh note.
func NewCreate(store Submitter, opts ...Option) *Session {
	return newSession(store, ModeCreate, "", models.Fields{}, opts)
}

// NewEdit opens a session on an existing note, pre-populated with its fields.
func NewEdit(store Submitter, n models.Note, opts ...Option) *Session {
	return newSession(store, ModeEdit, n.ID, n.Fields(), opts)
}

func newSession(store Submitter, mode Mode, target string, f models.Fields, opts []Option) *Session {
	s := &Session{
		mode:     mode,
		target:   target,
		original: f,
		store:    store,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the session mode.
func (s *Session) Mode() Mode { return s.mode }

// Target returns the ID of the note being edited, or "" in create mode.
func (s *Session) Target() string { return s.target }

// Fields returns the values the session was opened with.
func (s *Session) Fields() models.Fields { return s.original }

// Submit stamps f with the current time and hands it to the store. Text and
// code snippet lose surrounding whitespace; the single-line fields are kept
// exactly as typed. The session is closed afterwards.
func (s *Session) Submit(f models.Fields) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.Note{}, apperr.ErrSessionClosed
	}
	s.closed = true

	n := models.Note{
		Title:       f.Title,
		Text:        strings.TrimSpace(f.Text),
		CodeSnippet: strings.TrimSpace(f.CodeSnippet),
		Link:        f.Link,
		Tags:        f.Tags,
		Meta:        Meta(s.now()),
	}
	stored, _ := s.store.Submit(s.target, n)
	return stored, nil
}

// Close ends the session without saving anything.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Closed reports whether the session has ended.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
