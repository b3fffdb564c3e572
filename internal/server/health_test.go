package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reftools/zotero-mcp/internal/config"
)

func newHealthTestContext(t *testing.T) *ServerContext {
	t.Helper()
	sc, err := NewServerContext(context.Background(), config.Credentials{})
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	t.Cleanup(func() { sc.Shutdown() })
	return sc
}

func TestLivenessHandler(t *testing.T) {
	h := NewHealthChecker(newHealthTestContext(t))

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != healthStatusOK {
		t.Errorf("Status = %q, want %q", resp.Status, healthStatusOK)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		shutdown   bool
		wantStatus int
	}{
		{name: "ready", ready: true, wantStatus: http.StatusOK},
		{name: "not ready", ready: false, wantStatus: http.StatusServiceUnavailable},
		{name: "shutting down", ready: true, shutdown: true, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newHealthTestContext(t)
			h := NewHealthChecker(sc)
			h.SetReady(tt.ready)
			if tt.shutdown {
				if err := sc.Shutdown(); err != nil {
					t.Fatalf("Shutdown() error = %v", err)
				}
			}

			rec := httptest.NewRecorder()
			h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestDetailedHealthHandler_reportsConfiguration(t *testing.T) {
	sc := newHealthTestContext(t)
	h := NewHealthChecker(sc)

	read := func() DetailedHealthResponse {
		rec := httptest.NewRecorder()
		h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))
		var resp DetailedHealthResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return resp
	}

	if resp := read(); resp.Configured {
		t.Error("Configured = true before credentials were set")
	}

	err := sc.SetCredentials(config.Credentials{
		LibraryID:   "12345",
		APIKey:      "abcdefghijklmnop",
		LibraryType: config.LibraryTypeUser,
	})
	if err != nil {
		t.Fatalf("SetCredentials() error = %v", err)
	}

	if resp := read(); !resp.Configured {
		t.Error("Configured = false after credentials were set")
	}
}
