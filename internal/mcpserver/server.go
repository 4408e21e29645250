// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Quill tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/noteservice"
)

const formatURI = "quill://notebook-format"

// Server wraps the MCP server with Quill tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all Quill tools registered.
func New(svc *noteservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Quill",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List the notes of the open notebook in order, with their IDs, titles and meta stamps."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note rendered as Markdown with a YAML frontmatter."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note ID from list_notes")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Append a new note to the open notebook. "+
			"Read the format first via get_notebook_format or the "+formatURI+" resource."),
		mcp.WithString("title", mcp.Description("Note title")),
		mcp.WithString("text", mcp.Description("Free text")),
		mcp.WithString("code_snippet", mcp.Description("Source code")),
		mcp.WithString("link", mcp.Description("Related link")),
		mcp.WithString("tags", mcp.Description("Free-form tags string")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("edit_note",
		mcp.WithDescription("Edit a note in place. Only the fields passed are changed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note ID from list_notes")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("text", mcp.Description("New text")),
		mcp.WithString("code_snippet", mcp.Description("New code snippet")),
		mcp.WithString("link", mcp.Description("New link")),
		mcp.WithString("tags", mcp.Description("New tags string")),
	), s.editNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Remove a note from the open notebook."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note ID from list_notes")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("list_notebooks",
		mcp.WithDescription("List the notebook documents in the notebook directory."),
	), s.listNotebooks)

	s.mcp.AddTool(mcp.NewTool("open_notebook",
		mcp.WithDescription("Replace the in-memory notebook with a document from the notebook directory. "+
			"Unsaved changes are discarded."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the document (must end with .json)")),
	), s.openNotebook)

	s.mcp.AddTool(mcp.NewTool("save_notebook",
		mcp.WithDescription("Write the whole notebook to disk."),
		mcp.WithString("path", mcp.Description("Target path; defaults to the open document")),
	), s.saveNotebook)

	s.mcp.AddTool(mcp.NewTool("get_notebook_format",
		mcp.WithDescription("Returns the Quill notebook format. "+
			"Call this before creating or editing notes."),
	), s.getNotebookFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Notebook Format",
			mcp.WithResourceDescription("JSON notebook document and note fields."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("note not found")
	}
	return mcp.NewToolResultError(err.Error())
}

// fieldArgs overlays the note field arguments present in req onto f.
func fieldArgs(req mcp.CallToolRequest, f models.Fields) models.Fields {
	args := req.GetArguments()
	set := func(dst *string, key string) {
		if v, ok := args[key].(string); ok {
			*dst = v
		}
	}
	set(&f.Title, "title")
	set(&f.Text, "text")
	set(&f.CodeSnippet, "code_snippet")
	set(&f.Link, "link")
	set(&f.Tags, "tags")
	return f
}

func (s *Server) listNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.ListNotes(ctx))
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	md, err := s.svc.RenderNote(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(md), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := s.svc.SubmitNote(ctx, "", fieldArgs(req, models.Fields{}))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(note)
}

func (s *Server) editNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.UpdateNote(ctx, id, func(f models.Fields) models.Fields {
		return fieldArgs(req, f)
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(note)
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteNote(ctx, id); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) listNotebooks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, err := s.svc.Notebooks(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(files)
}

func (s *Server) openNotebook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Open(ctx, path); err != nil {
		return errorResult(err), nil
	}
	return jsonResult(s.svc.Info(ctx))
}

func (s *Server) saveNotebook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if err := s.svc.Save(ctx, path, ""); err != nil {
		return errorResult(err), nil
	}
	return jsonResult(s.svc.Info(ctx))
}

func (s *Server) getNotebookFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NotebookFormatContract), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     NotebookFormatContract,
		},
	}, nil
}
