package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/reftools/zotero-mcp/internal/instrumentation"
)

const (
	// DefaultHTTPAddr is the default address for the MCP HTTP transport.
	DefaultHTTPAddr = ":8080"

	// DefaultHTTPReadHeaderTimeout bounds how long reading request headers may take.
	DefaultHTTPReadHeaderTimeout = 10 * time.Second

	// DefaultHTTPWriteTimeout bounds how long writing a response may take.
	DefaultHTTPWriteTimeout = 10 * time.Second

	// DefaultHTTPIdleTimeout bounds how long idle keep-alive connections are held.
	DefaultHTTPIdleTimeout = 120 * time.Second
)

// HTTPServer exposes the MCP server over the streamable HTTP transport.
// The /mcp endpoint carries the protocol; health endpoints ride alongside
// for Kubernetes probes.
type HTTPServer struct {
	mcpServer  *mcpserver.MCPServer
	httpServer *http.Server
	health     *HealthChecker
	metrics    *instrumentation.Metrics
	addr       string
}

// HTTPServerConfig holds configuration for the MCP HTTP transport.
type HTTPServerConfig struct {
	// Addr is the address to bind to (e.g., ":8080").
	Addr string

	// Health provides liveness/readiness endpoints. Optional.
	Health *HealthChecker

	// Metrics records per-request metrics. Optional.
	Metrics *instrumentation.Metrics
}

// NewHTTPServer creates a new HTTP transport for the given MCP server.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, config HTTPServerConfig) *HTTPServer {
	if config.Addr == "" {
		config.Addr = DefaultHTTPAddr
	}

	return &HTTPServer{
		mcpServer: mcpServer,
		health:    config.Health,
		metrics:   config.Metrics,
		addr:      config.Addr,
	}
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrumented wraps a handler with request metrics when a recorder is set.
func (s *HTTPServer) instrumented(path string, next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, path, recorder.status, time.Since(start))
	})
}

// Start starts the HTTP server in a blocking manner.
func (s *HTTPServer) Start() error {
	mux := http.NewServeMux()

	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath("/mcp"),
	)
	mux.Handle("/mcp", s.instrumented("/mcp", streamable))

	if s.health != nil {
		s.health.RegisterHealthEndpoints(mux)
	}

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: DefaultHTTPReadHeaderTimeout,
		WriteTimeout:      DefaultHTTPWriteTimeout,
		IdleTimeout:       DefaultHTTPIdleTimeout,
	}

	slog.Info("starting MCP HTTP server", "addr", s.addr, "endpoint", "/mcp")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		slog.Info("shutting down MCP HTTP server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Addr returns the configured address.
func (s *HTTPServer) Addr() string {
	return s.addr
}
