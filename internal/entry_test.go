package internal

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestOpenService_FirstRunCreatesDir(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Notebook.Dir = filepath.Join(t.TempDir(), "books")

	svc, err := OpenService(context.Background(), WithConfig(cfg), WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("OpenService: %v", err)
	}
	if svc.CurrentPath() != "notebook.json" || svc.Store().Len() != 0 {
		t.Errorf("path = %q, notes = %d", svc.CurrentPath(), svc.Store().Len())
	}
	if info, err := os.Stat(cfg.Notebook.Dir); err != nil || !info.IsDir() {
		t.Errorf("notebook dir not created: %v", err)
	}
}

func TestOpenService_NotebookOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "work.json")
	doc := `[{"title": "from override"}]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	svc, err := OpenService(context.Background(),
		WithConfig(NewDefaultConfig()), WithNotebook(path), WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("OpenService: %v", err)
	}
	items := svc.ListNotes(context.Background())
	if svc.CurrentPath() != "work.json" || len(items) != 1 || items[0].Title != "from override" {
		t.Errorf("path = %q, items = %+v", svc.CurrentPath(), items)
	}
}

func TestOpenService_InvalidNotebook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := OpenService(context.Background(),
		WithConfig(NewDefaultConfig()), WithNotebook(path), WithLogger(discardLogger()))
	if err == nil {
		t.Fatal("expected error for invalid notebook")
	}
}

func TestOpenService_RequiresConfig(t *testing.T) {
	if _, err := OpenService(context.Background()); err == nil {
		t.Fatal("expected error without config")
	}
}
