package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/reftools/zotero-mcp/internal/config"
	"github.com/reftools/zotero-mcp/internal/instrumentation"
	"github.com/reftools/zotero-mcp/internal/logging"
	"github.com/reftools/zotero-mcp/internal/resources"
	"github.com/reftools/zotero-mcp/internal/server"
	"github.com/reftools/zotero-mcp/internal/tools/zotero_tools"
)

// Environment fallbacks for serve flags. A flag set explicitly on the
// command line always wins.
const (
	EnvTransport      = "ZOTERO_MCP_TRANSPORT"
	EnvHTTPAddr       = "ZOTERO_MCP_HTTP_ADDR"
	EnvMetricsAddr    = "ZOTERO_MCP_METRICS_ADDR"
	EnvMetricsEnabled = "ZOTERO_MCP_METRICS_ENABLED"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		transport      string
		httpAddr       string
		readOnly       bool
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing Zotero library
tools and resources to AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Safety Mode:
  Use --read-only to register only non-mutating tools. Item deletion and
  the retention filter are then unavailable.

Credentials:
  Initial credentials come from ZOTERO_LIBRARY_ID, ZOTERO_API_KEY, and
  ZOTERO_LIBRARY_TYPE environment variables, or a config.yaml under
  ~/.config/zotero-mcp/. The server also starts unconfigured; clients can
  supply credentials at runtime via the configure_zotero tool.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyServeEnvFallbacks(cmd, &transport, &httpAddr, &metricsEnabled, &metricsAddr)

			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}

			return runServe(transport, debugMode, readOnly, httpAddr, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http. Can also use ZOTERO_MCP_TRANSPORT env var.")
	cmd.Flags().StringVar(&httpAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for streamable-http transport). Can also use ZOTERO_MCP_HTTP_ADDR env var.")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Register only non-mutating tools (no deletion, no retention filter)")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use ZOTERO_MCP_METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use ZOTERO_MCP_METRICS_ADDR env var.")

	return cmd
}

// applyServeEnvFallbacks fills serve flags from the environment when the
// corresponding flag was not set explicitly.
func applyServeEnvFallbacks(cmd *cobra.Command, transport, httpAddr *string, metricsEnabled *bool, metricsAddr *string) {
	if !cmd.Flags().Changed("transport") {
		if v := os.Getenv(EnvTransport); v != "" {
			*transport = v
		}
	}
	if !cmd.Flags().Changed("http-addr") {
		if v := os.Getenv(EnvHTTPAddr); v != "" {
			*httpAddr = v
		}
	}
	if !cmd.Flags().Changed("metrics-enabled") {
		if v := os.Getenv(EnvMetricsEnabled); v == "false" {
			*metricsEnabled = false
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if v := os.Getenv(EnvMetricsAddr); v != "" {
			*metricsAddr = v
		}
	}
}

// setupLogging configures the default slog logger. Logs go to stderr;
// stdout carries the stdio transport.
func setupLogging(debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func runServe(transport string, debugMode, readOnly bool, httpAddr string, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	setupLogging(debugMode)
	logger := slog.Default().With(logging.KeyTransport, transport)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			logger.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	// Load startup credentials. An unconfigured server is fine: clients can
	// call configure_zotero at runtime.
	creds, err := config.Load()
	if err != nil {
		logger.Warn("failed to load credentials, starting unconfigured", logging.Err(err))
		creds = config.Credentials{}
	}

	serverContext, err := server.NewServerContext(shutdownCtx, creds)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}
	defer func() {
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", logging.Err(err))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("server context shutdown failed", logging.Err(err))
		}
	}()

	if serverContext.Configured() {
		libCreds := serverContext.Credentials()
		logging.WithLibrary(logger, libCreds.LibraryID, libCreds.LibraryType).
			Info("starting with configured library")
	} else {
		logger.Info("starting unconfigured; use the configure_zotero tool to set credentials")
	}

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("zotero-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	if readOnly {
		logger.Info("read-only mode: destructive tools are not registered")
	}

	// Register all tools and resources
	if err := registerAll(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, httpAddr, provider, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAll registers all MCP tools and resources.
func registerAll(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	type registration struct {
		name     string
		register func() error
	}

	registrations := []registration{
		{
			name: "Zotero tools",
			register: func() error {
				return zotero_tools.RegisterZoteroTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Library resources",
			register: func() error {
				return resources.RegisterLibraryResources(mcpSrv, ctx)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, addr string, provider *instrumentation.Provider, logger *slog.Logger) error {
	healthChecker := server.NewHealthChecker(serverContext)

	httpConfig := server.HTTPServerConfig{
		Addr:   addr,
		Health: healthChecker,
	}
	if provider != nil && provider.Enabled() {
		httpConfig.Metrics = provider.Metrics()
	}
	httpServer := server.NewHTTPServer(mcpSrv, httpConfig)

	logger.Info("starting streamable HTTP server",
		"addr", addr,
		"mcp_endpoint", "/mcp",
		"health_endpoints", "/healthz /readyz")

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()
	healthChecker.SetReady(true)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server stopped")
	return nil
}
