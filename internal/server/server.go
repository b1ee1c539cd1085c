// Package server provides the HTTP API for KissanVaani.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kissanvaani/kissanvaani/internal/config"
	"github.com/kissanvaani/kissanvaani/internal/ingest"
	"github.com/kissanvaani/kissanvaani/internal/models"
	"github.com/kissanvaani/kissanvaani/internal/storage"
	"github.com/kissanvaani/kissanvaani/internal/vector"
	"go.uber.org/zap"
)

// Asker answers one spoken question; implemented by pipeline.Pipeline.
type Asker interface {
	Ask(ctx context.Context, blob []byte, formatHint string) (*models.AskResponse, error)
}

// Server is the HTTP server for the KissanVaani API.
type Server struct {
	asker        Asker
	ingester     *ingest.Ingester
	store        storage.Store
	index        vector.Index
	config       *config.ServerConfig
	artifactsDir string
	logger       *zap.Logger
	server       *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	asker Asker,
	ingester *ingest.Ingester,
	store storage.Store,
	index vector.Index,
	cfg *config.ServerConfig,
	artifactsDir string,
	logger *zap.Logger,
) *Server {
	return &Server{
		asker:        asker,
		ingester:     ingester,
		store:        store,
		index:        index,
		config:       cfg,
		artifactsDir: artifactsDir,
		logger:       logger,
	}
}

// router builds the chi router with all routes and middleware.
func (s *Server) router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleLiveness)
	r.Post("/ask", s.handleAsk)
	r.Get("/audio/{name}", s.handleAudio)
	r.Get("/api/v1/status", s.handleStatus)
	r.Post("/api/v1/entries", s.handleCreateEntry)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
