package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/noteservice"
	"github.com/starford/quill/internal/testutil"
)

func testServer(t *testing.T, notes ...models.Note) (*Server, *noteservice.Service, string) {
	t.Helper()
	svc, dir := testutil.TestService(t, notes...)
	return New(svc), svc, dir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are called directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "edit_note":
		result, err = srv.editNote(ctx, req)
	case "delete_note":
		result, err = srv.deleteNote(ctx, req)
	case "list_notebooks":
		result, err = srv.listNotebooks(ctx, req)
	case "open_notebook":
		result, err = srv.openNotebook(ctx, req)
	case "save_notebook":
		result, err = srv.saveNotebook(ctx, req)
	case "get_notebook_format":
		result, err = srv.getNotebookFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadNote(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{
		"title":        "Test",
		"text":         "Hello",
		"code_snippet": "x := 1",
	})
	if r.IsError {
		t.Fatalf("create failed: %s", resultText(r))
	}
	var created noteservice.NoteDetail
	if err := json.Unmarshal([]byte(resultText(r)), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Meta != testutil.FixedMeta {
		t.Errorf("meta = %q", created.Meta)
	}

	r = callTool(t, srv, "read_note", map[string]interface{}{"id": created.ID})
	text := resultText(r)
	for _, want := range []string{"title: Test", "Hello", "x := 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("read result missing %q: %q", want, text)
		}
	}
}

func TestEditNoteKeepsOtherFields(t *testing.T) {
	srv, svc, _ := testServer(t, models.Note{Title: "old", Tags: "keep"})
	id := svc.ListNotes(context.Background())[0].ID

	r := callTool(t, srv, "edit_note", map[string]interface{}{"id": id, "title": "new"})
	if r.IsError {
		t.Fatalf("edit failed: %s", resultText(r))
	}
	got, err := svc.GetNote(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "new" || got.Tags != "keep" || got.Position != 0 {
		t.Errorf("note = %+v", got)
	}
}

func TestListNotes(t *testing.T) {
	srv, _, _ := testServer(t, models.Note{Title: "a"}, models.Note{Title: "b"})

	r := callTool(t, srv, "list_notes", map[string]interface{}{})
	var items []noteservice.NoteListItem
	if err := json.Unmarshal([]byte(resultText(r)), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 || items[0].Title != "a" || items[1].Title != "b" {
		t.Errorf("items = %+v", items)
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestDeleteNote(t *testing.T) {
	srv, svc, _ := testServer(t, models.Note{Title: "a"})
	id := svc.ListNotes(context.Background())[0].ID

	if r := callTool(t, srv, "delete_note", map[string]interface{}{"id": id}); r.IsError {
		t.Fatalf("delete failed: %s", resultText(r))
	}
	if r := callTool(t, srv, "delete_note", map[string]interface{}{"id": id}); !r.IsError {
		t.Error("expected error deleting twice")
	}
}

func TestSaveAndOpenNotebook(t *testing.T) {
	srv, svc, dir := testServer(t)

	callTool(t, srv, "create_note", map[string]interface{}{"title": "persisted"})
	r := callTool(t, srv, "save_notebook", map[string]interface{}{"path": "copy.json"})
	if r.IsError {
		t.Fatalf("save failed: %s", resultText(r))
	}
	if _, err := os.Stat(filepath.Join(dir, "copy.json")); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}

	r = callTool(t, srv, "open_notebook", map[string]interface{}{"path": "notebook.json"})
	if r.IsError {
		t.Fatalf("open failed: %s", resultText(r))
	}
	if svc.Store().Len() != 0 {
		t.Errorf("notebook.json should be empty, got %d notes", svc.Store().Len())
	}

	r = callTool(t, srv, "list_notebooks", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "copy.json") || !strings.Contains(text, "notebook.json") {
		t.Errorf("notebooks = %s", text)
	}
}

func TestOpenNotebookInvalid(t *testing.T) {
	srv, svc, dir := testServer(t, models.Note{Title: "kept"})
	_ = os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`[{"title": null}]`), 0o644)

	r := callTool(t, srv, "open_notebook", map[string]interface{}{"path": "bad.json"})
	if !r.IsError {
		t.Fatal("expected schema error")
	}
	if !strings.Contains(resultText(r), "schema") {
		t.Errorf("error text = %q", resultText(r))
	}
	if svc.Store().Len() != 1 {
		t.Error("failed open replaced the notebook")
	}
}

func TestGetNotebookFormat(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "get_notebook_format", map[string]interface{}{})
	if !strings.Contains(resultText(r), "code snippet") {
		t.Error("format contract missing field names")
	}
}
