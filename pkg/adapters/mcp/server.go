// Package mcp exposes an arbor application to AI agents over the Model
// Context Protocol. Each tool call is one request cycle: redirects are
// followed, so every tool answers with a rendered page.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// maxRedirects bounds how many redirects one tool call follows.
const maxRedirects = 4

// SessionsURI is the resource listing live sessions.
const SessionsURI = "arbor://sessions"

// PageResponse is the structured result of every page tool.
type PageResponse struct {
	SessionID   string `json:"session_id" jsonschema_description:"Session to pass to later calls"`
	PageID      string `json:"page_id" jsonschema_description:"Page the tokens in body belong to"`
	ContentType string `json:"content_type"`
	Body        string `json:"body" jsonschema_description:"Rendered page, including callback tokens"`
}

// Handler is the application side of the adapter.
type Handler interface {
	Handle(ctx context.Context, req domain.Request) domain.Response
}

// Server wraps an application and exposes it as an MCP server.
type Server struct {
	app       Handler
	sessions  func() []session.Info
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithSessions publishes the session list as the arbor://sessions resource.
func WithSessions(list func() []session.Info) Option {
	return func(s *Server) {
		s.sessions = list
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(app Handler, opts ...Option) *Server {
	s := &Server{
		app:       app,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("arbor-mcp", strings.TrimSpace(arbor.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	if s.sessions != nil {
		s.registerResources()
	}
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx ends.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "addr", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a new session and render its first page."),
		mcp.WithOutputSchema[PageResponse](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, _ map[string]interface{}) (PageResponse, error) {
		return s.Start(ctx)
	}))

	s.mcpServer.AddTool(mcp.NewTool("render_page",
		mcp.WithDescription("Render a page of a session. Older pages show the state they were rendered with."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("Page ID")),
		mcp.WithOutputSchema[PageResponse](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (PageResponse, error) {
		sid, _ := args["session_id"].(string)
		pid, _ := args["page_id"].(string)
		return s.Render(ctx, sid, pid)
	}))

	s.mcpServer.AddTool(mcp.NewTool("submit",
		mcp.WithDescription("Submit callback tokens of a page: any number of input tokens with values and at most one action token."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("Page the tokens were rendered on")),
		mcp.WithString("fields", mcp.Required(), mcp.Description(`JSON object mapping tokens to values, e.g. {"v1":"Ada","a2":""}`)),
		mcp.WithOutputSchema[PageResponse](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (PageResponse, error) {
		sid, _ := args["session_id"].(string)
		pid, _ := args["page_id"].(string)
		raw, _ := args["fields"].(string)
		var fields map[string]string
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return PageResponse{}, fmt.Errorf("fields must be a JSON object of strings: %w", err)
		}
		return s.Submit(ctx, sid, pid, fields)
	}))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SessionsURI, "Live sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.sessions())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SessionsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

// Start starts a session and renders its first page.
func (s *Server) Start(ctx context.Context) (PageResponse, error) {
	return s.follow(ctx, domain.Request{})
}

// Render renders a page.
func (s *Server) Render(ctx context.Context, sessionID, pageID string) (PageResponse, error) {
	return s.follow(ctx, domain.Request{SessionID: sessionID, PageID: pageID})
}

// Submit runs the callbacks behind fields and renders the resulting page.
func (s *Server) Submit(ctx context.Context, sessionID, pageID string, fields map[string]string) (PageResponse, error) {
	if len(fields) == 0 {
		return PageResponse{}, errors.New("no tokens submitted")
	}
	return s.follow(ctx, domain.Request{SessionID: sessionID, PageID: pageID, Fields: fields})
}

func (s *Server) follow(ctx context.Context, req domain.Request) (PageResponse, error) {
	for range maxRedirects {
		resp := s.app.Handle(ctx, req)
		switch resp.Kind {
		case domain.ResponseRender:
			return PageResponse{
				SessionID:   resp.SessionID,
				PageID:      resp.PageID,
				ContentType: resp.ContentType,
				Body:        string(resp.Body),
			}, nil
		case domain.ResponseRedirect:
			req = domain.Request{SessionID: resp.SessionID, PageID: resp.PageID}
		default:
			s.logger.Debug("MCP request rejected", "session_id", req.SessionID, "code", resp.Error.Code)
			return PageResponse{}, fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message)
		}
	}
	return PageResponse{}, errors.New("too many redirects")
}
