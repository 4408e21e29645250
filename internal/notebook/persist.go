package notebook

import (
	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/checksum"
	"github.com/starford/quill/internal/codec"
	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/storage"
)

// Document is a decoded notebook file together with the digest of its bytes.
type Document struct {
	Notes    []models.Note
	Checksum string
}

// Load reads and decodes the whole notebook document at path.
// Failures are *apperr.NotebookError values of kind ErrIO, ErrFormat or ErrSchema.
func Load(p storage.Provider, path string) (*Document, error) {
	data, err := p.Read(path)
	if err != nil {
		return nil, apperr.IO(path, err)
	}
	notes, err := codec.Decode(data)
	if err != nil {
		return nil, apperr.WithPath(err, path)
	}
	return &Document{Notes: notes, Checksum: checksum.Sum(data)}, nil
}

// Save encodes every note and overwrites the document at path. It returns
// the digest of the bytes written.
func Save(p storage.Provider, path string, notes []models.Note) (string, error) {
	data, err := codec.Encode(notes)
	if err != nil {
		return "", err
	}
	if err := p.Write(path, data); err != nil {
		return "", apperr.IO(path, err)
	}
	return checksum.Sum(data), nil
}
