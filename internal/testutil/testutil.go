// Package testutil provides shared test helpers for setting up notebook
// directories and services.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/notebook"
	"github.com/starford/quill/internal/noteservice"
	"github.com/starford/quill/internal/storage"
)

// FixedTime is the clock used by TestService.
var FixedTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)

// FixedMeta is the meta stamp produced at FixedTime.
const FixedMeta = "Edited on 2024-01-01 12:00:00"

// TestDir creates a temporary notebook directory with a storage.Provider.
func TestDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteNotebook saves notes to name inside the provider root.
func WriteNotebook(t *testing.T, p storage.Provider, name string, notes ...models.Note) {
	t.Helper()
	if _, err := notebook.Save(p, name, notes); err != nil {
		t.Fatal(err)
	}
}

// TestService creates a service bound to "notebook.json" in a fresh
// directory, pre-populated with notes, using FixedTime as its clock.
func TestService(t *testing.T, notes ...models.Note) (*noteservice.Service, string) {
	t.Helper()
	dir, store := TestDir(t)
	WriteNotebook(t, store, "notebook.json", notes...)
	svc := noteservice.NewService(store, noteservice.WithClock(func() time.Time { return FixedTime }))
	if err := svc.Open(context.Background(), "notebook.json"); err != nil {
		t.Fatal(err)
	}
	return svc, dir
}
