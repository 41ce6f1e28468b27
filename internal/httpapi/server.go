// Package httpapi implements the read-only introspection HTTP API:
// GET /sources, GET /sources/:id, and GET /requests, plus the liveness and
// readiness probes every gateway instance carries regardless of transport.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dbgateway/gateway/internal/server/middleware"
	"github.com/dbgateway/gateway/internal/source"
	"github.com/dbgateway/gateway/internal/store"
	"github.com/dbgateway/gateway/internal/tool"
)

// Config holds the HTTP server's listen address and CORS policy.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
	}
}

// Server is the introspection HTTP server. It owns no database connections
// of its own — every route reads through to the Source Manager, the Tool
// Registry, or the Request Store, all built once at startup.
type Server struct {
	cfg      Config
	router   chi.Router
	manager  *source.Manager
	registry *tool.Registry
	store    *store.Store
	logger   *slog.Logger
	http     *http.Server
}

// New wires up every route and returns a Server ready to serve.
func New(cfg Config, manager *source.Manager, registry *tool.Registry, st *store.Store, logger *slog.Logger) *Server {
	s := &Server{cfg: cfg, manager: manager, registry: registry, store: st, logger: logger}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/sources", s.handleListSources)
	r.Get("/sources/{id}", s.handleGetSource)
	r.Get("/requests", s.handleListRequests)

	s.router = r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	for _, id := range s.manager.SourceIDs() {
		conn, err := s.manager.GetCurrentConnector(id)
		if err != nil {
			checks[id] = "error: " + err.Error()
			status = "degraded"
			continue
		}
		if err := conn.Ping(r.Context()); err != nil {
			checks[id] = "error: " + err.Error()
			status = "degraded"
		} else {
			checks[id] = "ok"
		}
	}

	if status != "ok" {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, map[string]any{"status": status, "checks": checks})
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	defaultID := s.manager.DefaultSourceID()
	ids := s.manager.SourceIDs()
	out := make([]dataSource, 0, len(ids))
	for _, id := range ids {
		cfg, ok := s.manager.Config(id)
		if !ok {
			continue
		}
		out = append(out, toDataSource(cfg, id == defaultID, s.registry.ToolNames(id)))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := url.PathUnescape(raw)
	if err != nil || strings.Contains(id, "..") || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid source id", "source_id": raw})
		return
	}

	cfg, ok := s.manager.Config(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "source not found", "source_id": id})
		return
	}
	writeJSON(w, http.StatusOK, toDataSource(cfg, id == s.manager.DefaultSourceID(), s.registry.ToolNames(id)))
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	records := s.store.List()
	writeJSON(w, http.StatusOK, map[string]any{"requests": records})
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or
// SIGTERM is received. It then performs a graceful shutdown, draining
// in-flight requests before closing every source connection.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("introspection api listening", "addr", addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("introspection api listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("introspection api shutdown: %w", err)
	}

	s.manager.Shutdown()
	s.logger.Info("introspection api stopped")
	return nil
}

// Handler returns the router for mounting into another server (e.g. the
// MCP HTTP transport) or for use in tests.
func (s *Server) Handler() http.Handler { return s.router }

// ServeHTTP implements http.Handler, delegating to the router. Lets tests
// drive the server directly with httptest without starting a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
