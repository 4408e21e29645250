// Package notebook owns the in-memory note collection and its persistence.
//
// A single Store holds the ordered sequence of notes. Editors never touch
// the sequence directly: they hand a note and a target ID to Submit and
// the store decides whether that is an update in place or an append.
package notebook

import (
	"sync"

	"github.com/google/uuid"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
)

// ChangeKind names a store mutation.
type ChangeKind string

// Change kinds.
const (
	Created  ChangeKind = "created"
	Updated  ChangeKind = "updated"
	Deleted  ChangeKind = "deleted"
	Replaced ChangeKind = "replaced"
)

// Change describes one mutation. Note and Position are zero for Replaced.
type Change struct {
	Kind     ChangeKind
	Note     models.Note
	Position int
}

// Listener is called after every mutation, outside the store lock.
type Listener func(Change)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIDGenerator overrides how note IDs are minted.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		s.newID = fn
	}
}

// Store is the ordered, in-memory notebook. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	notes []models.Note
	index map[string]int // note ID -> position
	dirty bool
	rev   uint64 // bumped on every mutation

	lmu       sync.Mutex
	listeners map[int]Listener
	nextL     int

	newID func() string
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		index:     make(map[string]int),
		listeners: make(map[int]Listener),
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.lmu.Lock()
	id := s.nextL
	s.nextL++
	s.listeners[id] = fn
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *Store) notify(c Change) {
	s.lmu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.lmu.Unlock()

	for _, l := range ls {
		l(c)
	}
}

// Replace swaps the whole sequence, assigning fresh IDs, and clears the
// dirty flag. IDs carried by the input are ignored.
func (s *Store) Replace(notes []models.Note) {
	s.mu.Lock()
	s.notes = make([]models.Note, len(notes))
	s.index = make(map[string]int, len(notes))
	for i, n := range notes {
		n.ID = s.newID()
		s.notes[i] = n
		s.index[n.ID] = i
	}
	s.dirty = false
	s.rev++
	s.mu.Unlock()

	s.notify(Change{Kind: Replaced})
}

// Submit stores n. When targetID names a note that is still present, that
// note is replaced in place and keeps its ID and position. Otherwise n is
// appended under a new ID.
func (s *Store) Submit(targetID string, n models.Note) (models.Note, Change) {
	s.mu.Lock()
	var c Change
	if pos, ok := s.index[targetID]; ok && targetID != "" {
		n.ID = targetID
		s.notes[pos] = n
		c = Change{Kind: Updated, Note: n, Position: pos}
	} else {
		n.ID = s.newID()
		s.notes = append(s.notes, n)
		s.index[n.ID] = len(s.notes) - 1
		c = Change{Kind: Created, Note: n, Position: len(s.notes) - 1}
	}
	s.dirty = true
	s.rev++
	s.mu.Unlock()

	s.notify(c)
	return n, c
}

// Delete removes the note with the given ID.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	pos, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	n := s.notes[pos]
	s.notes = append(s.notes[:pos], s.notes[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.notes); i++ {
		s.index[s.notes[i].ID] = i
	}
	s.dirty = true
	s.rev++
	s.mu.Unlock()

	s.notify(Change{Kind: Deleted, Note: n, Position: pos})
	return nil
}

// Snapshot returns a copy of the sequence together with its revision, for
// use with MarkClean.
func (s *Store) Snapshot() ([]models.Note, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Note, len(s.notes))
	copy(out, s.notes)
	return out, s.rev
}

// Notes returns a copy of the sequence in order.
func (s *Store) Notes() []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Note, len(s.notes))
	copy(out, s.notes)
	return out
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// Get returns the note with the given ID and its current position.
func (s *Store) Get(id string) (models.Note, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.index[id]
	if !ok {
		return models.Note{}, -1, apperr.ErrNotFound
	}
	return s.notes[pos], pos, nil
}

// At returns the note at the zero-based position.
func (s *Store) At(pos int) (models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pos < 0 || pos >= len(s.notes) {
		return models.Note{}, apperr.ErrNotFound
	}
	return s.notes[pos], nil
}

// Dirty reports whether the store changed since the last Replace or MarkClean.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// MarkClean clears the dirty flag if nothing changed since the snapshot at
// revision rev was taken.
func (s *Store) MarkClean(rev uint64) {
	s.mu.Lock()
	if s.rev == rev {
		s.dirty = false
	}
	s.mu.Unlock()
}
