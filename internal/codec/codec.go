// Package codec reads and writes the notebook JSON document.
//
// The document is a JSON array of objects with the string keys "title",
// "text", "code snippet", "link", "tags" and "meta", written in that order
// with two-space indentation.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
)

var fields = []struct {
	key string
	set func(n *models.Note, v string)
}{
	{"title", func(n *models.Note, v string) { n.Title = v }},
	{"text", func(n *models.Note, v string) { n.Text = v }},
	{"code snippet", func(n *models.Note, v string) { n.CodeSnippet = v }},
	{"link", func(n *models.Note, v string) { n.Link = v }},
	{"tags", func(n *models.Note, v string) { n.Tags = v }},
	{"meta", func(n *models.Note, v string) { n.Meta = v }},
}

// Encode serializes notes as the notebook document. An empty or nil slice
// encodes as "[]".
func Encode(notes []models.Note) ([]byte, error) {
	if notes == nil {
		notes = []models.Note{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(notes); err != nil {
		return nil, fmt.Errorf("codec: encode: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode parses a notebook document.
//
// Invalid JSON or invalid UTF-8 yields an apperr.ErrFormat failure. Valid
// JSON of the wrong shape (not an array of objects, or a known key holding
// a non-string) yields apperr.ErrSchema. Missing keys default to the empty string and
// unknown keys are ignored.
func Decode(data []byte) ([]models.Note, error) {
	if !utf8.Valid(data) {
		return nil, apperr.Format(errors.New("invalid UTF-8"))
	}
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, apperr.Format(err)
	}

	if firstByte(data) != '[' {
		return nil, apperr.Schema("document is %s, want array", kindOf(probe))
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, apperr.Schema("document: %v", err)
	}

	notes := make([]models.Note, 0, len(elems))
	for i, raw := range elems {
		if firstByte(raw) != '{' {
			var v any
			_ = json.Unmarshal(raw, &v)
			return nil, apperr.Schema("element %d is %s, want object", i, kindOf(v))
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, apperr.Schema("element %d: %v", i, err)
		}

		var n models.Note
		for _, f := range fields {
			val, ok := obj[f.key]
			if !ok {
				continue
			}
			if firstByte(val) != '"' {
				var v any
				_ = json.Unmarshal(val, &v)
				return nil, apperr.Schema("element %d: field %q is %s, want string", i, f.key, kindOf(v))
			}
			var s string
			if err := json.Unmarshal(val, &s); err != nil {
				return nil, apperr.Schema("element %d: field %q: %v", i, f.key, err)
			}
			f.set(&n, s)
		}
		notes = append(notes, n)
	}
	return notes, nil
}

func firstByte(data []byte) byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case float64:
		return "a number"
	case string:
		return "a string"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
