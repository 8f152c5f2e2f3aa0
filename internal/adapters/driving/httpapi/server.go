// Package httpapi serves the docchat JSON API.
//
// Every /api route except the identity webhook requires the user id in a
// trusted header set by the upstream auth proxy.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// ErrMissingService is returned when a required service is not provided.
var ErrMissingService = errors.New("httpapi: documents, retrieval and chats services are required")

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	Documents driving.DocumentService
	Retrieval driving.RetrievalService
	Chats     driving.ChatService

	// Identity receives webhook events. Optional: without it the webhook route is not mounted.
	Identity driving.IdentityService
}

// Server is the HTTP API server.
type Server struct {
	ports    Ports
	settings domain.ServerSettings
	handler  http.Handler
	now      func() time.Time
}

// NewServer builds the API handler. Zero settings fall back to the defaults.
func NewServer(ports Ports, settings domain.ServerSettings) (*Server, error) {
	if ports.Documents == nil || ports.Retrieval == nil || ports.Chats == nil {
		return nil, ErrMissingService
	}

	defaults := domain.DefaultAppSettings().Server
	if settings.Addr == "" {
		settings.Addr = defaults.Addr
	}
	if settings.UserHeader == "" {
		settings.UserHeader = defaults.UserHeader
	}
	if settings.MaxUploadBytes <= 0 {
		settings.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if settings.RequestTimeout <= 0 {
		settings.RequestTimeout = defaults.RequestTimeout
	}

	s := &Server{ports: ports, settings: settings, now: time.Now}
	s.handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.Handle("POST /api/documents", s.authed(s.handleUpload))
	mux.Handle("GET /api/documents", s.authed(s.handleListDocuments))
	mux.Handle("GET /api/documents/{id}", s.authed(s.handleGetDocument))
	mux.Handle("DELETE /api/documents/{id}", s.authed(s.handleDeleteDocument))
	mux.Handle("POST /api/documents/{id}/context", s.authed(s.handleDocumentContext))

	mux.Handle("POST /api/chats", s.authed(s.handleCreateChat))
	mux.Handle("GET /api/chats", s.authed(s.handleListChats))
	mux.Handle("GET /api/chats/{id}", s.authed(s.handleGetChat))
	mux.Handle("PATCH /api/chats/{id}", s.authed(s.handleRenameChat))
	mux.Handle("DELETE /api/chats/{id}", s.authed(s.handleDeleteChat))
	mux.Handle("POST /api/chats/{id}/messages", s.authed(s.handleSendMessage))

	if s.ports.Identity != nil {
		mux.HandleFunc("POST /api/webhooks/identity", s.handleIdentityWebhook)
	}

	return withRecovery(withLogging(withTimeout(mux, s.settings.RequestTimeout)))
}

// Handler returns the API handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.settings.Addr
}

// Run serves the API until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.settings.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("http: listening on %s", s.settings.Addr)

	select {
	case <-ctx.Done():
		logger.Info("http: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	stats := s.ports.Retrieval.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"retrieval": map[string]any{
			"served":    stats.Served,
			"fallbacks": stats.Fallbacks,
			"degraded":  stats.Degraded,
		},
	})
}
