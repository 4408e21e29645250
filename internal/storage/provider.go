// Package storage defines the notebook directory abstraction.
package storage

import "github.com/starford/quill/internal/models"

// Provider is the interface for notebook file operations.
type Provider interface {
	// List returns metadata for every .json file under dir (relative to the root).
	List(dir string) ([]models.NotebookFile, error)
	// Read returns the raw bytes of the file at path (relative to the root).
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path (relative to the root).
	Write(path string, content []byte) error
}
