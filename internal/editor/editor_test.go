package editor

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/notebook"
)

var metaRe = regexp.MustCompile(`^Edited on \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

func fixedClock(ts string) Option {
	t, err := time.ParseInLocation(TimestampLayout, ts, time.Local)
	if err != nil {
		panic(err)
	}
	return WithClock(func() time.Time { return t })
}

func TestCreate_AppendsOneNote(t *testing.T) {
	store := notebook.NewStore()
	store.Replace([]models.Note{{Title: "existing"}})

	s := NewCreate(store)
	if s.Mode() != ModeCreate || s.Target() != "" {
		t.Errorf("mode = %s target = %q", s.Mode(), s.Target())
	}
	if s.Fields() != (models.Fields{}) {
		t.Errorf("create session should start empty, got %+v", s.Fields())
	}

	n, err := s.Submit(models.Fields{Title: "A", Text: "B", CodeSnippet: "C", Link: "D", Tags: "E"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("len = %d, want 2", store.Len())
	}
	last, _ := store.At(1)
	if last != n {
		t.Errorf("stored %+v, returned %+v", last, n)
	}
	if n.Title != "A" || n.Text != "B" || n.CodeSnippet != "C" || n.Link != "D" || n.Tags != "E" {
		t.Errorf("fields = %+v", n)
	}
	if !metaRe.MatchString(n.Meta) {
		t.Errorf("meta = %q", n.Meta)
	}
}

func TestSubmit_MetaUsesClock(t *testing.T) {
	store := notebook.NewStore()
	n, err := NewCreate(store, fixedClock("2024-01-01 12:00:00")).Submit(models.Fields{})
	if err != nil {
		t.Fatal(err)
	}
	if n.Meta != "Edited on 2024-01-01 12:00:00" {
		t.Errorf("meta = %q", n.Meta)
	}
}

func TestSubmit_TrimsOnlyMultiLineFields(t *testing.T) {
	store := notebook.NewStore()
	n, _ := NewCreate(store).Submit(models.Fields{
		Title:       "  spaced title ",
		Text:        "\n  body line\n\n",
		CodeSnippet: "\tfunc main() {}\n",
		Link:        " http://x ",
		Tags:        " a b ",
	})
	if n.Title != "  spaced title " || n.Link != " http://x " || n.Tags != " a b " {
		t.Errorf("single-line fields changed: %+v", n)
	}
	if n.Text != "body line" || n.CodeSnippet != "func main() {}" {
		t.Errorf("multi-line fields not trimmed: %q %q", n.Text, n.CodeSnippet)
	}
}

func TestSubmit_AcceptsEmptyEverything(t *testing.T) {
	store := notebook.NewStore()
	if _, err := NewCreate(store).Submit(models.Fields{}); err != nil {
		t.Fatalf("empty note rejected: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("len = %d", store.Len())
	}
}

func TestEdit_UpdatesInPlace(t *testing.T) {
	store := notebook.NewStore()
	store.Replace([]models.Note{
		{Title: "one", Meta: "Edited on 2024-01-01 00:00:00"},
		{Title: "two", Text: "keep", Meta: "Edited on 2024-01-01 00:00:00"},
		{Title: "three"},
	})
	target, _ := store.At(1)

	s := NewEdit(store, target, fixedClock("2024-02-02 10:00:00"))
	if s.Mode() != ModeEdit || s.Target() != target.ID {
		t.Errorf("mode = %s target = %q", s.Mode(), s.Target())
	}
	f := s.Fields()
	if f.Title != "two" || f.Text != "keep" {
		t.Errorf("pre-populated fields = %+v", f)
	}

	f.Title = "two (renamed)"
	n, err := s.Submit(f)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if store.Len() != 3 {
		t.Fatalf("len = %d, want 3", store.Len())
	}
	got, _ := store.At(1)
	if got.Title != "two (renamed)" || got.Text != "keep" || got.ID != target.ID {
		t.Errorf("note at position 1 = %+v", got)
	}
	if n.Meta != "Edited on 2024-02-02 10:00:00" {
		t.Errorf("meta = %q", n.Meta)
	}
}

// Submitting the same session twice is rejected instead of appending a
// near-duplicate, and each later session on the note still updates it in place.
func TestEdit_RepeatedSubmitDoesNotDuplicate(t *testing.T) {
	store := notebook.NewStore()
	store.Replace([]models.Note{{Title: "n"}})
	orig, _ := store.At(0)

	s := NewEdit(store, orig)
	if _, err := s.Submit(models.Fields{Title: "v1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Submit(models.Fields{Title: "v2"}); !errors.Is(err, apperr.ErrSessionClosed) {
		t.Errorf("second submit err = %v, want ErrSessionClosed", err)
	}
	if store.Len() != 1 {
		t.Fatalf("len = %d after double submit, want 1", store.Len())
	}

	for _, title := range []string{"v2", "v3"} {
		current, _ := store.At(0)
		if _, err := NewEdit(store, current).Submit(models.Fields{Title: title}); err != nil {
			t.Fatal(err)
		}
	}
	if store.Len() != 1 {
		t.Fatalf("len = %d after reopen, want 1", store.Len())
	}
	if n, _ := store.At(0); n.Title != "v3" || n.ID != orig.ID {
		t.Errorf("note = %+v", n)
	}
}

func TestEdit_TargetGoneAppends(t *testing.T) {
	store := notebook.NewStore()
	store.Replace([]models.Note{{Title: "a"}})
	a, _ := store.At(0)

	s := NewEdit(store, a)
	store.Replace([]models.Note{{Title: "other"}})

	if _, err := s.Submit(models.Fields{Title: "a edited"}); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 2 {
		t.Fatalf("len = %d, want 2", store.Len())
	}
	if n, _ := store.At(1); n.Title != "a edited" {
		t.Errorf("appended note = %+v", n)
	}
}

func TestClose_DiscardsSession(t *testing.T) {
	store := notebook.NewStore()
	s := NewCreate(store)
	s.Close()
	if !s.Closed() {
		t.Error("session should report closed")
	}
	if _, err := s.Submit(models.Fields{Title: "x"}); !errors.Is(err, apperr.ErrSessionClosed) {
		t.Errorf("err = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("len = %d", store.Len())
	}
}
