// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes WebCraft projects, pages and templates to LLM clients via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/webcraft/internal/apperr"
	"github.com/starford/webcraft/internal/identity"
	"github.com/starford/webcraft/internal/storage"
	"github.com/starford/webcraft/internal/studio"
)

const blockFormatURI = "webcraft://block-format"

// Server wraps the MCP server with WebCraft tools. Every tool call runs as
// a single configured principal.
type Server struct {
	mcp       *server.MCPServer
	svc       *studio.Service
	assets    storage.Provider
	principal string
}

// New creates a new MCP server with all WebCraft tools registered.
func New(svc *studio.Service, assets storage.Provider, principal string) *Server {
	s := &Server{svc: svc, assets: assets, principal: principal}

	s.mcp = server.NewMCPServer(
		"WebCraft",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List the caller's projects, most recently updated first."),
		mcp.WithString("filter", mcp.Description("all, live or draft (default all)")),
		mcp.WithString("query", mcp.Description("Optional case-insensitive name search")),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Start building a new website from a natural-language prompt."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("What the site should be")),
		mcp.WithString("name", mcp.Description("Optional project name; derived from the prompt when empty")),
	), s.createProject)

	s.mcp.AddTool(mcp.NewTool("get_project",
		mcp.WithDescription("Read a project's metadata."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Project id")),
	), s.getProject)

	s.mcp.AddTool(mcp.NewTool("get_page",
		mcp.WithDescription("Read the ordered block list of a project's page."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
	), s.getPage)

	s.mcp.AddTool(mcp.NewTool("add_block",
		mcp.WithDescription("Append a block with default content. "+
			"Read the block contract first via get_block_contract or the "+blockFormatURI+" resource."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
		mcp.WithString("type", mcp.Required(), mcp.Description("hero, text, image, button, columns or footer")),
	), s.addBlock)

	s.mcp.AddTool(mcp.NewTool("update_block",
		mcp.WithDescription("Replace a block's content with a JSON object of its fields."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
		mcp.WithString("block_id", mcp.Required(), mcp.Description("Block id")),
		mcp.WithString("content", mcp.Required(), mcp.Description("JSON object following the block contract")),
	), s.updateBlock)

	s.mcp.AddTool(mcp.NewTool("send_chat_message",
		mcp.WithDescription("Send a message to the project's AI assistant. The reply arrives asynchronously; "+
			"read it later with get_chat_history."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Message text")),
		mcp.WithString("surface", mcp.Description("chat or editor (default chat)")),
	), s.sendChatMessage)

	s.mcp.AddTool(mcp.NewTool("get_chat_history",
		mcp.WithDescription("Read the persisted chat log of a project, oldest first."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
	), s.getChatHistory)

	s.mcp.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the template catalogue."),
		mcp.WithString("category", mcp.Description("Category name, All for any")),
		mcp.WithString("query", mcp.Description("Optional search over name and category")),
	), s.listTemplates)

	s.mcp.AddTool(mcp.NewTool("get_block_contract",
		mcp.WithDescription("Returns the WebCraft block format contract. "+
			"Call this before adding or updating blocks."),
	), s.getBlockContract)

	s.mcp.AddTool(mcp.NewTool("upload_asset",
		mcp.WithDescription("Upload an image from an http(s) URL or a base64 data URI. "+
			"Returns the /assets URL to use in image and hero blocks."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:image/...;base64,... URI")),
		mcp.WithString("filename", mcp.Description("Optional file name; derived from the URL when empty")),
	), s.uploadAsset)

	s.mcp.AddResource(
		mcp.NewResource(blockFormatURI, "Block Format Contract",
			mcp.WithResourceDescription("Page block format that all blocks must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readBlockFormatResource,
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

func (s *Server) as(ctx context.Context) context.Context {
	return identity.WithPrincipal(ctx, s.principal)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// errorResult turns a service error into a tool error the model can act on.
func errorResult(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found")
	case errors.Is(err, apperr.ErrConflict):
		return mcp.NewToolResultError("conflict: the assistant is still replying, try again shortly")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func (s *Server) listProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter, err := studio.ParseProjectFilter(req.GetString("filter", ""))
	if err != nil {
		return errorResult(err), nil
	}
	projects, err := s.svc.ListProjects(s.as(ctx), filter, req.GetString("query", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(projects)
}

func (s *Server) createProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.CreateFromPrompt(s.as(ctx), req.GetString("name", ""), prompt)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(p)
}

func (s *Server) getProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.GetProject(s.as(ctx), id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(p)
}

func (s *Server) getPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.LoadPage(s.as(ctx), id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(p)
}

func (s *Server) addBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, b, err := s.svc.AddBlock(s.as(ctx), id, typ, "")
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(b)
}

func (s *Server) updateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	blockID, err := req.RequireString("block_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.UpdateBlock(s.as(ctx), id, blockID, content, "")
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(p)
}

func (s *Server) sendChatMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	surface, err := studio.ParseSurface(req.GetString("surface", ""))
	if err != nil {
		return errorResult(err), nil
	}
	t, err := s.svc.SendChat(s.as(ctx), id, surface, content)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("sent; %d messages in transcript, assistant typing: %t", len(t.Messages), t.Typing)), nil
}

func (s *Server) getChatHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	msgs, err := s.svc.ChatLog(s.as(ctx), id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(msgs)
}

func (s *Server) listTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.svc.ListTemplates(s.as(ctx), req.GetString("category", ""), req.GetString("query", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(list)
}

func (s *Server) getBlockContract(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(BlockFormatContract), nil
}

func (s *Server) readBlockFormatResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      blockFormatURI,
			MIMEType: "text/markdown",
			Text:     BlockFormatContract,
		},
	}, nil
}
