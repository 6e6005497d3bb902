package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Reserved request parameters. Every other parameter is a callback token.
const (
	ParamSession  = "_s"
	ParamPage     = "_k"
	ParamResource = "_r"
)

// Handler is the transport-neutral application core.
type Handler interface {
	Handle(ctx context.Context, req domain.Request) domain.Response
}

// Server adapts a Handler to net/http.
type Server struct {
	App     Handler
	Version string
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewHandler creates a new HTTP handler for the application.
// The application is mounted at the root: GET renders, POST submits callbacks.
func NewHandler(app Handler, opts ...Option) http.Handler {
	server := &Server{
		App:     app,
		Version: "dev",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/", server.Serve)
	r.Post("/", server.Serve)
	return r
}

// Serve handles application requests.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, domain.ErrorResponse(domain.NewProtocolError("unreadable form: %v", err)))
		return
	}

	resp := s.App.Handle(r.Context(), parseRequest(r.Form))
	switch resp.Kind {
	case domain.ResponseRedirect:
		http.Redirect(w, r, pageURL(r.URL.Path, resp.SessionID, resp.PageID), http.StatusSeeOther)
	case domain.ResponseRender:
		w.Header().Set("Content-Type", resp.ContentType)
		w.Header().Set("Cache-Control", "no-store")
		if _, err := w.Write(resp.Body); err != nil {
			s.logger.Debug("Render response write failed", "err", err)
		}
	default:
		s.writeError(w, r, resp)
	}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "arbor-http",
		"version": strings.TrimSpace(s.Version),
	})
}

type errorBody struct {
	Code    domain.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Restart string           `json:"restart,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, resp domain.Response) {
	detail := resp.Error
	if detail == nil {
		detail = &domain.ErrorDetail{Code: domain.CodeInternal, Message: "empty response"}
	}
	body := errorBody{Code: detail.Code, Message: detail.Message}
	if detail.Restart {
		body.Restart = r.URL.Path
	}
	status := StatusCode(detail.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("Request failed", "path", r.URL.Path, "code", detail.Code, "request_id", middleware.GetReqID(r.Context()))
	}
	writeJSON(w, status, body)
}

// StatusCode maps error codes to HTTP statuses.
func StatusCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeProtocol, domain.CodeInvalidAction:
		return http.StatusBadRequest
	case domain.CodeExpired:
		return http.StatusGone
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func parseRequest(form url.Values) domain.Request {
	req := domain.Request{
		SessionID: form.Get(ParamSession),
		PageID:    form.Get(ParamPage),
		Resource:  form.Get(ParamResource),
	}
	for key, values := range form {
		switch key {
		case ParamSession, ParamPage, ParamResource:
			continue
		}
		if req.Fields == nil {
			req.Fields = make(map[string]string)
		}
		if len(values) > 0 {
			req.Fields[key] = values[0]
		} else {
			req.Fields[key] = ""
		}
	}
	return req
}

func pageURL(path, sessionID, pageID string) string {
	q := url.Values{}
	q.Set(ParamSession, sessionID)
	q.Set(ParamPage, pageID)
	return path + "?" + q.Encode()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
