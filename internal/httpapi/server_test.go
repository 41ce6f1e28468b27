package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dbgateway/gateway/internal/connector"
	"github.com/dbgateway/gateway/internal/connector/sqlite"
	"github.com/dbgateway/gateway/internal/source"
	"github.com/dbgateway/gateway/internal/store"
	"github.com/dbgateway/gateway/internal/tool"
)

// newTestServer wires a Server against a single in-memory SQLite source —
// no network, no fixtures beyond what sqlite's ":memory:" DSN provides.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	registry := connector.NewRegistry()
	registry.RegisterDriver("sqlite", sqlite.New())

	sources := []source.Config{{
		ID:       "demo",
		Type:     "sqlite",
		DSN:      ":memory:",
		ReadOnly: true,
		MaxRows:  100,
	}}

	manager, err := source.New(context.Background(), sources, registry, logger)
	if err != nil {
		t.Fatalf("source.New: %v", err)
	}
	t.Cleanup(manager.Shutdown)

	st := store.New(store.DefaultCapacity)
	toolRegistry := tool.NewRegistry(manager, st, logger)

	cfg := DefaultConfig()
	return New(cfg, manager, toolRegistry, st, logger)
}

func doRequest(t *testing.T, srv *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rr := doRequest(t, srv, "GET", "/healthz")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
}

func TestReadyzPingsEverySource(t *testing.T) {
	srv := newTestServer(t)
	rr := doRequest(t, srv, "GET", "/readyz")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Checks["demo"] != "ok" {
		t.Errorf("unexpected readyz body: %+v", body)
	}
}

func TestListSourcesRedactsSecrets(t *testing.T) {
	srv := newTestServer(t)
	rr := doRequest(t, srv, "GET", "/sources")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	if got := rr.Body.String(); strings.Contains(got, "password") || strings.Contains(got, "\"dsn\"") {
		t.Errorf("response leaked a secret-shaped field: %s", got)
	}

	var sources []dataSource
	if err := json.Unmarshal(rr.Body.Bytes(), &sources); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sources) != 1 || sources[0].ID != "demo" || !sources[0].IsDefault {
		t.Fatalf("unexpected sources list: %+v", sources)
	}
}

func TestGetSourceRejectsPathTraversal(t *testing.T) {
	srv := newTestServer(t)
	rr := doRequest(t, srv, "GET", "/sources/..")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body = %s", rr.Code, rr.Body.String())
	}
}

func TestGetSourceNotFound(t *testing.T) {
	srv := newTestServer(t)
	rr := doRequest(t, srv, "GET", "/sources/unknown")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body = %s", rr.Code, rr.Body.String())
	}
}

func TestListRequestsEmptyByDefault(t *testing.T) {
	srv := newTestServer(t)
	rr := doRequest(t, srv, "GET", "/requests")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Requests []store.Record `json:"requests"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Requests) != 0 {
		t.Errorf("expected no requests yet, got %d", len(body.Requests))
	}
}
