// Package apperr holds the error values shared across Quill packages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrSessionClosed = errors.New("editor session closed")
	ErrNoPath        = errors.New("no notebook path")
)

// Failure kinds for loading and saving a notebook document.
var (
	ErrIO     = errors.New("io failure")
	ErrFormat = errors.New("format failure")
	ErrSchema = errors.New("schema failure")
)

// NotebookError describes a failed notebook load or save.
// Kind is one of ErrIO, ErrFormat or ErrSchema.
type NotebookError struct {
	Kind error
	Path string
	Err  error
}

func (e *NotebookError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *NotebookError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// IO wraps err as an I/O failure for path.
func IO(path string, err error) error {
	return &NotebookError{Kind: ErrIO, Path: path, Err: err}
}

// Format wraps err as a syntax failure.
func Format(err error) error {
	return &NotebookError{Kind: ErrFormat, Err: err}
}

// Schema reports a structurally invalid document.
func Schema(format string, args ...any) error {
	return &NotebookError{Kind: ErrSchema, Err: fmt.Errorf(format, args...)}
}

// WithPath returns err with Path set when err is a *NotebookError without one.
func WithPath(err error, path string) error {
	var nbErr *NotebookError
	if errors.As(err, &nbErr) && nbErr.Path == "" {
		return &NotebookError{Kind: nbErr.Kind, Path: path, Err: nbErr.Err}
	}
	return err
}
