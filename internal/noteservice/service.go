// Package noteservice coordinates the notebook store, its file and editor sessions.
package noteservice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/checksum"
	"github.com/starford/quill/internal/editor"
	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/notebook"
	"github.com/starford/quill/internal/render"
	"github.com/starford/quill/internal/storage"
)

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Title    string `json:"title"`
	Meta     string `json:"meta"`
	Label    string `json:"label"`
}

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	ID          string `json:"id"`
	Position    int    `json:"position"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	CodeSnippet string `json:"code_snippet"`
	Link        string `json:"link"`
	Tags        string `json:"tags"`
	Meta        string `json:"meta"`
}

// NotebookInfo describes the notebook currently held in memory.
type NotebookInfo struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
	Dirty    bool   `json:"dirty"`
	Total    int    `json:"total"`
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for editor sessions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithStore uses an existing store instead of a fresh one.
func WithStore(store *notebook.Store) Option {
	return func(s *Service) {
		s.notes = store
	}
}

// Service owns the in-memory notebook and the file it is bound to.
type Service struct {
	provider storage.Provider
	notes    *notebook.Store
	now      func() time.Time

	mu       sync.Mutex // guards path and checksum; serialises open/save
	path     string
	checksum string
}

// NewService creates a service with an empty notebook.
func NewService(provider storage.Provider, opts ...Option) *Service {
	s := &Service{provider: provider, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.notes == nil {
		s.notes = notebook.NewStore()
	}
	return s
}

// Store returns the underlying notebook store.
func (s *Service) Store() *notebook.Store {
	return s.notes
}

// Open loads the document at path and replaces the in-memory notebook with
// it. On failure the current notebook is left untouched.
func (s *Service) Open(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked(path)
}

func (s *Service) openLocked(path string) error {
	doc, err := notebook.Load(s.provider, path)
	if err != nil {
		return err
	}
	s.notes.Replace(doc.Notes)
	s.path = path
	s.checksum = doc.Checksum
	return nil
}

// OpenOrInit opens path, or binds an empty notebook to it when the file
// does not exist yet. It reports whether the file was found.
func (s *Service) OpenOrInit(_ context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.openLocked(path)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	s.notes.Replace(nil)
	s.path = path
	s.checksum = ""
	return false, nil
}

// Reload re-opens the current notebook file.
func (s *Service) Reload(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return apperr.ErrNoPath
	}
	return s.openLocked(s.path)
}

// Save writes the whole notebook to path, or to the current path when path
// is empty, and makes path current. A path without an extension gets
// ".json". A non-empty ifMatch must equal the checksum of the file currently
// on disk, otherwise apperr.ErrConflict is returned and nothing is written.
func (s *Service) Save(_ context.Context, path, ifMatch string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path == "" {
		path = s.path
	}
	if path == "" {
		return apperr.ErrNoPath
	}
	if filepath.Ext(path) == "" {
		path += storage.NotebookExt
	}
	if ifMatch != "" {
		existing, err := s.provider.Read(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return apperr.IO(path, err)
		}
		if err == nil && checksum.Sum(existing) != ifMatch {
			return apperr.ErrConflict
		}
	}

	notes, rev := s.notes.Snapshot()
	sum, err := notebook.Save(s.provider, path, notes)
	if err != nil {
		return err
	}
	s.notes.MarkClean(rev)
	s.path = path
	s.checksum = sum
	return nil
}

// CurrentPath returns the path of the bound notebook file, if any.
func (s *Service) CurrentPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Checksum returns the digest of the file as last loaded or saved.
func (s *Service) Checksum() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checksum
}

// Dirty reports whether there are unsaved changes.
func (s *Service) Dirty() bool {
	return s.notes.Dirty()
}

// Info summarises the current notebook.
func (s *Service) Info(_ context.Context) NotebookInfo {
	s.mu.Lock()
	path, sum := s.path, s.checksum
	s.mu.Unlock()
	return NotebookInfo{
		Path:     path,
		Checksum: sum,
		Dirty:    s.notes.Dirty(),
		Total:    s.notes.Len(),
	}
}

// Notebooks lists the notebook documents available to Open.
func (s *Service) Notebooks(_ context.Context) ([]models.NotebookFile, error) {
	files, err := s.provider.List("")
	if err != nil {
		return nil, err
	}
	return nonNilSlice(files), nil
}

// ListNotes returns every note summary in notebook order.
func (s *Service) ListNotes(_ context.Context) []NoteListItem {
	notes := s.notes.Notes()
	items := make([]NoteListItem, len(notes))
	for i, n := range notes {
		items[i] = NoteListItem{
			ID:       n.ID,
			Position: i,
			Title:    n.Title,
			Meta:     n.Meta,
			Label:    render.Summary(n),
		}
	}
	return items
}

// GetNote returns a note by ID.
func (s *Service) GetNote(_ context.Context, id string) (*NoteDetail, error) {
	n, pos, err := s.notes.Get(id)
	if err != nil {
		return nil, err
	}
	return detail(n, pos), nil
}

// NoteAt returns the note at the zero-based position.
func (s *Service) NoteAt(_ context.Context, pos int) (*NoteDetail, error) {
	n, err := s.notes.At(pos)
	if err != nil {
		return nil, err
	}
	return detail(n, pos), nil
}

// NewNote opens a create session.
func (s *Service) NewNote(_ context.Context) *editor.Session {
	return editor.NewCreate(s.notes, editor.WithClock(s.now))
}

// EditNote opens an edit session on the note with the given ID.
func (s *Service) EditNote(_ context.Context, id string) (*editor.Session, error) {
	n, _, err := s.notes.Get(id)
	if err != nil {
		return nil, err
	}
	return editor.NewEdit(s.notes, n, editor.WithClock(s.now)), nil
}

// SubmitNote runs a whole session: an edit of id when id is non-empty,
// otherwise a create. It returns the stored note.
func (s *Service) SubmitNote(ctx context.Context, id string, f models.Fields) (*NoteDetail, error) {
	sess := s.NewNote(ctx)
	if id != "" {
		var err error
		if sess, err = s.EditNote(ctx, id); err != nil {
			return nil, err
		}
	}
	n, err := sess.Submit(f)
	if err != nil {
		return nil, err
	}
	return s.stored(n), nil
}

// stored describes a just-submitted note; Position is -1 if it was removed
// again before the lookup.
func (s *Service) stored(n models.Note) *NoteDetail {
	_, pos, err := s.notes.Get(n.ID)
	if err != nil {
		pos = -1
	}
	return detail(n, pos)
}

// UpdateNote runs an edit session on id whose fields are the current ones
// passed through edit. It returns the stored note.
func (s *Service) UpdateNote(ctx context.Context, id string, edit func(models.Fields) models.Fields) (*NoteDetail, error) {
	sess, err := s.EditNote(ctx, id)
	if err != nil {
		return nil, err
	}
	n, err := sess.Submit(edit(sess.Fields()))
	if err != nil {
		return nil, err
	}
	return s.stored(n), nil
}

// RenderNote returns the Markdown rendering of a note.
func (s *Service) RenderNote(_ context.Context, id string) (string, error) {
	n, _, err := s.notes.Get(id)
	if err != nil {
		return "", err
	}
	return render.Markdown(n)
}

// DeleteNote removes a note by ID.
func (s *Service) DeleteNote(_ context.Context, id string) error {
	return s.notes.Delete(id)
}

// Subscribe forwards store changes to fn.
func (s *Service) Subscribe(fn notebook.Listener) func() {
	return s.notes.Subscribe(fn)
}

func detail(n models.Note, pos int) *NoteDetail {
	return &NoteDetail{
		ID:          n.ID,
		Position:    pos,
		Title:       n.Title,
		Text:        n.Text,
		CodeSnippet: n.CodeSnippet,
		Link:        n.Link,
		Tags:        n.Tags,
		Meta:        n.Meta,
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
