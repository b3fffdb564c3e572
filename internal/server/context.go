package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/reftools/zotero-mcp/internal/config"
	"github.com/reftools/zotero-mcp/internal/instrumentation"
	"github.com/reftools/zotero-mcp/internal/zotero"
)

// ErrNotConfigured is returned by Client when no Zotero credentials have
// been provided yet, either at startup or via configure_zotero.
var ErrNotConfigured = errors.New("zotero library not configured: call configure_zotero first")

// ServerContext holds the shared state for the MCP server: the active
// Zotero credentials, the lazily built API client, and the observability
// hooks used by the tool handlers.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	creds      config.Credentials
	client     *zotero.Client
	clientOpts []zotero.Option

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context. The initial credentials
// may be empty; tools then return ErrNotConfigured until configure_zotero
// supplies a library.
func NewServerContext(ctx context.Context, creds config.Credentials) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		creds:    creds.Normalized(),
		shutdown: false,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Credentials returns a copy of the active credentials.
func (sc *ServerContext) Credentials() config.Credentials {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.creds
}

// Configured reports whether a library ID and API key are present.
func (sc *ServerContext) Configured() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.creds.Configured()
}

// SetCredentials replaces the active credentials wholesale and drops the
// cached client so the next call builds against the new library. Invalid
// credentials are rejected and the previous ones stay in effect.
func (sc *ServerContext) SetCredentials(creds config.Credentials) error {
	creds = creds.Normalized()
	if err := creds.Validate(); err != nil {
		return err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.creds = creds
	sc.client = nil
	return nil
}

// SetClientOptions sets additional options applied to every client built
// by this context. Used by tests to point at a local HTTP server.
func (sc *ServerContext) SetClientOptions(opts ...zotero.Option) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.clientOpts = opts
	sc.client = nil
}

// Client returns the Zotero API client for the active credentials,
// building and caching it on first use. Returns ErrNotConfigured when no
// credentials are present.
func (sc *ServerContext) Client() (*zotero.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.client != nil {
		return sc.client, nil
	}

	if !sc.creds.Configured() {
		return nil, ErrNotConfigured
	}

	opts := make([]zotero.Option, 0, len(sc.clientOpts)+1)
	opts = append(opts, zotero.WithAPIKey(sc.creds.APIKey))
	opts = append(opts, sc.clientOpts...)

	client, err := zotero.NewClient(sc.creds.LibraryID, zotero.LibraryType(sc.creds.LibraryType), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Zotero client: %w", err)
	}

	sc.client = client
	return client, nil
}

// SetMetrics sets the metrics recorder for tool instrumentation.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// Metrics returns the metrics recorder, or nil if none was set.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger for destructive operations.
func (sc *ServerContext) SetAuditLogger(logger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = logger
}

// AuditLogger returns the audit logger, or nil if none was set.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
