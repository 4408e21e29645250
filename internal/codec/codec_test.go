package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
)

func TestEncode_Empty(t *testing.T) {
	for _, in := range [][]models.Note{nil, {}} {
		out, err := Encode(in)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if string(out) != "[]" {
			t.Errorf("empty notebook = %q, want %q", out, "[]")
		}
	}
}

func TestEncode_FieldOrderAndIndent(t *testing.T) {
	notes := []models.Note{{
		ID:    "not-persisted",
		Title: "Example",
		Text:  "Body text",
		Tags:  "demo",
		Meta:  "Edited on 2024-01-01 12:00:00",
	}}
	out, err := Encode(notes)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `[
  {
    "title": "Example",
    "text": "Body text",
    "code snippet": "",
    "link": "",
    "tags": "demo",
    "meta": "Edited on 2024-01-01 12:00:00"
  }
]`
	if string(out) != want {
		t.Errorf("encoded document:\n%s\nwant:\n%s", out, want)
	}
}

func TestEncode_NoHTMLEscaping(t *testing.T) {
	out, err := Encode([]models.Note{{CodeSnippet: "if a < b && c > d {}"}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(out), `"if a < b && c > d {}"`) {
		t.Errorf("snippet was escaped: %s", out)
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	in := []models.Note{
		{Title: "A", Text: "one\ntwo", CodeSnippet: "fmt.Println()", Link: "x", Tags: "t1 t2", Meta: "Edited on 2024-01-01 12:00:00"},
		{Title: "A", Meta: "Edited on 2024-01-02 08:00:00"},
	}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != len(in) {
		t.Fatalf("len = %d, want %d", len(got), len(in))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("note %d = %+v, want %+v", i, got[i], in[i])
		}
	}
}

func TestDecode_EmptyArray(t *testing.T) {
	got, err := Decode([]byte("  [ ]\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestDecode_MissingAndUnknownKeys(t *testing.T) {
	got, err := Decode([]byte(`[{"title": "only title", "color": "red"}]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := models.Note{Title: "only title"}
	if len(got) != 1 || got[0] != want {
		t.Errorf("got %+v, want [%+v]", got, want)
	}
}

func TestDecode_FormatFailure(t *testing.T) {
	for _, in := range []string{"", "[", "{title: x}", "[1,]", "[{\"title\": \"a\xffb\"}]"} {
		_, err := Decode([]byte(in))
		if !errors.Is(err, apperr.ErrFormat) {
			t.Errorf("Decode(%q) err = %v, want format failure", in, err)
		}
	}
}

func TestDecode_SchemaFailure(t *testing.T) {
	cases := map[string]string{
		`{"title": "x"}`:        "want array",
		`null`:                  "want array",
		`"notes"`:               "want array",
		`[1]`:                   "element 0",
		`[{}, ["a"]]`:           "element 1",
		`[{"title": 3}]`:        `field "title"`,
		`[{"meta": null}]`:      `field "meta"`,
		`[{"tags": ["a", "b"]}]`: `field "tags"`,
	}
	for in, fragment := range cases {
		_, err := Decode([]byte(in))
		if !errors.Is(err, apperr.ErrSchema) {
			t.Errorf("Decode(%s) err = %v, want schema failure", in, err)
			continue
		}
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("Decode(%s) err = %q, want it to mention %q", in, err, fragment)
		}
	}
}
