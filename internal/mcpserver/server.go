// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes lectio tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lectio/internal/tracker"
	"github.com/starford/lectio/internal/view"
)

const formatURI = "lectio://chapter-format"

// Server wraps the MCP server with lectio tools.
type Server struct {
	mcp *server.MCPServer
	svc *tracker.Service
}

// New creates a new MCP server with all lectio tools registered.
func New(svc *tracker.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"lectio",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_chapters",
		mcp.WithDescription("List chapters with attendance counters and absence rate. "+
			"Mode 'modules' groups them under module headers."),
		mcp.WithString("mode", mcp.Description("chapters or modules (default modules)")),
	), s.listChapters)

	s.mcp.AddTool(mcp.NewTool("select_chapter",
		mcp.WithDescription("Select the chapter that attend_lecture, miss_lecture and add_note act on."),
		mcp.WithNumber("number", mcp.Required(), mcp.Description("Chapter number")),
	), s.selectChapter)

	s.mcp.AddTool(mcp.NewTool("attend_lecture",
		mcp.WithDescription("Count an attended lecture for the selected chapter. Call save_chapters to persist."),
	), s.attendLecture)

	s.mcp.AddTool(mcp.NewTool("miss_lecture",
		mcp.WithDescription("Count a missed lecture for the selected chapter. Call save_chapters to persist."),
	), s.missLecture)

	s.mcp.AddTool(mcp.NewTool("save_chapters",
		mcp.WithDescription("Write the chapter file."),
	), s.saveChapters)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List the notes of a chapter, optionally filtered and sorted."),
		mcp.WithString("chapter", mcp.Required(), mcp.Description("Chapter id (its number)")),
		mcp.WithString("query", mcp.Description("Case-insensitive match on content or tags")),
		mcp.WithString("sort", mcp.Description("newest, oldest or edited")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Add an HTML note to a chapter. The note is saved immediately."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note body as an HTML fragment, e.g. <p>text</p>")),
		mcp.WithString("chapter", mcp.Description("Chapter id; defaults to the selected chapter")),
		mcp.WithArray("tags", mcp.Description("Tags for the note"), mcp.Items(map[string]any{"type": "string"})),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note by id."),
		mcp.WithString("chapter", mcp.Required(), mcp.Description("Chapter id")),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through all notes."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 20)")),
	), s.searchNotes)

	// Resource: chapter file format.
	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Chapter File Format",
			mcp.WithResourceDescription("Line format of the chapter attendance file and the notes JSON."),
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

func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listChapters(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode := req.GetString("mode", view.ModeModules)
	return jsonResult(s.svc.ChapterRows(mode)), nil
}

type selectInput struct {
	Number int `json:"number"`
}

func (s *Server) selectChapter(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in selectInput
	if err := req.BindArguments(&in); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	ch, err := s.svc.SelectChapter(in.Number)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no chapter %d", in.Number)), nil
	}
	return jsonResult(ch), nil
}

func (s *Server) attendLecture(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ch, err := s.svc.Attend()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ch), nil
}

func (s *Server) missLecture(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ch, err := s.svc.Miss()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ch), nil
}

func (s *Server) saveChapters(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.svc.SaveChapters(); err != nil {
		return mcp.NewToolResultErrorFromErr("save failed", err), nil
	}
	return mcp.NewToolResultText("saved"), nil
}

func (s *Server) listNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chapter, err := req.RequireString("chapter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cards := s.svc.NoteCards(chapter, req.GetString("query", ""), req.GetString("sort", ""))
	return jsonResult(cards), nil
}

type addNoteInput struct {
	Chapter string   `json:"chapter"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func (s *Server) addNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in addNoteInput
	if err := req.BindArguments(&in); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
	card, err := s.svc.AddNote(in.Chapter, in.Content, in.Tags)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(card), nil
}

type deleteNoteInput struct {
	Chapter string `json:"chapter"`
	ID      int64  `json:"id"`
}

func (s *Server) deleteNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in deleteNoteInput
	if err := req.BindArguments(&in); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if err := s.svc.DeleteNote(in.Chapter, in.ID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("note %d in chapter %s: %v", in.ID, in.Chapter, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %d", in.ID)), nil
}

type searchInput struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (s *Server) searchNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in searchInput
	if err := req.BindArguments(&in); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if in.Query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	results, err := s.svc.Search(in.Query, in.Limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     ChapterFormatContract,
		},
	}, nil
}
