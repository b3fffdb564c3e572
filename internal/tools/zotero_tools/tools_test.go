package zotero_tools

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/reftools/zotero-mcp/internal/config"
	"github.com/reftools/zotero-mcp/internal/server"
	"github.com/reftools/zotero-mcp/internal/zotero"
)

// newTestContext creates an unconfigured server context.
func newTestContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), config.Credentials{})
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	t.Cleanup(func() { sc.Shutdown() })
	return sc
}

// newConfiguredContext creates a server context with test credentials whose
// client talks to a local test server. Register handlers on the returned mux.
func newConfiguredContext(t *testing.T) (*server.ServerContext, *http.ServeMux) {
	t.Helper()

	mux := http.NewServeMux()
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	sc := newTestContext(t)
	sc.SetClientOptions(zotero.WithBaseURL(ts.URL + "/"))
	err := sc.SetCredentials(config.Credentials{
		LibraryID:   "12345",
		APIKey:      "abcdefghijklmnop",
		LibraryType: config.LibraryTypeUser,
	})
	if err != nil {
		t.Fatalf("SetCredentials() error = %v", err)
	}
	return sc, mux
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want mcp.TextContent", result.Content[0])
	}
	return tc.Text
}

func TestRegisterZoteroTools(t *testing.T) {
	tests := []struct {
		name     string
		readOnly bool
	}{
		{name: "read-write mode", readOnly: false},
		{name: "read-only mode", readOnly: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newTestContext(t)
			mcpSrv := mcpserver.NewMCPServer("test-server", "1.0.0",
				mcpserver.WithToolCapabilities(true),
			)

			if err := RegisterZoteroTools(mcpSrv, sc, tt.readOnly); err != nil {
				t.Errorf("RegisterZoteroTools() error = %v", err)
			}
		})
	}
}

func TestHandleCheckZoteroConfig_notConfigured(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleCheckZoteroConfig(context.Background(), callRequest("check_zotero_config", nil), sc)
	if err != nil {
		t.Fatalf("handleCheckZoteroConfig() error = %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "not configured") {
		t.Errorf("result = %q, want mention of not configured", text)
	}
}

func TestHandleCheckZoteroConfig_masksKey(t *testing.T) {
	sc := newTestContext(t)
	err := sc.SetCredentials(config.Credentials{
		LibraryID:   "12345",
		APIKey:      "abcdefghijklmnop",
		LibraryType: config.LibraryTypeUser,
	})
	if err != nil {
		t.Fatalf("SetCredentials() error = %v", err)
	}

	result, err := handleCheckZoteroConfig(context.Background(), callRequest("check_zotero_config", nil), sc)
	if err != nil {
		t.Fatalf("handleCheckZoteroConfig() error = %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "abcdefgh********") {
		t.Errorf("result = %q, want masked key %q", text, "abcdefgh********")
	}
	if strings.Contains(text, "abcdefghijklmnop") {
		t.Errorf("result = %q, must not contain the full API key", text)
	}
}

func TestHandleConfigureZotero(t *testing.T) {
	sc, mux := newConfiguredContext(t)
	mux.HandleFunc("/users/67890/items/top", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	result, err := handleConfigureZotero(context.Background(), callRequest("configure_zotero", map[string]interface{}{
		"library_id": "67890",
		"api_key":    "qrstuvwxyz123456",
	}), sc)
	if err != nil {
		t.Fatalf("handleConfigureZotero() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("handleConfigureZotero() returned error result: %v", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "configured successfully") {
		t.Errorf("result = %q, want success message", text)
	}
	if !strings.Contains(text, "67890") {
		t.Errorf("result = %q, want new library ID", text)
	}

	creds := sc.Credentials()
	if creds.LibraryID != "67890" || creds.APIKey != "qrstuvwxyz123456" {
		t.Errorf("stored credentials = %+v, want new library", creds)
	}
	if creds.LibraryType != config.LibraryTypeUser {
		t.Errorf("library type = %q, want default %q", creds.LibraryType, config.LibraryTypeUser)
	}
}

func TestHandleConfigureZotero_probeFailureKeepsCredentials(t *testing.T) {
	sc, mux := newConfiguredContext(t)
	mux.HandleFunc("/users/67890/items/top", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	result, err := handleConfigureZotero(context.Background(), callRequest("configure_zotero", map[string]interface{}{
		"library_id": "67890",
		"api_key":    "qrstuvwxyz123456",
	}), sc)
	if err != nil {
		t.Fatalf("handleConfigureZotero() error = %v", err)
	}

	// The probe is advisory: the result is not an error and the new
	// credentials stay in effect.
	if result.IsError {
		t.Errorf("probe failure produced an error result: %v", resultText(t, result))
	}
	text := resultText(t, result)
	if !strings.Contains(text, "verification failed") {
		t.Errorf("result = %q, want verification warning", text)
	}
	if got := sc.Credentials().LibraryID; got != "67890" {
		t.Errorf("stored library ID = %q, want %q", got, "67890")
	}
}

func TestHandleConfigureZotero_rejectedPreservesPrevious(t *testing.T) {
	sc, _ := newConfiguredContext(t)
	before := sc.Credentials()

	result, err := handleConfigureZotero(context.Background(), callRequest("configure_zotero", map[string]interface{}{
		"library_id":   "67890",
		"api_key":      "qrstuvwxyz123456",
		"library_type": "shared",
	}), sc)
	if err != nil {
		t.Fatalf("handleConfigureZotero() error = %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for invalid library type")
	}

	if got := sc.Credentials(); got != before {
		t.Errorf("credentials changed to %+v after rejected configure, want %+v", got, before)
	}
}

func TestHandleConfigureZotero_missingArgs(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleConfigureZotero(context.Background(), callRequest("configure_zotero", map[string]interface{}{
		"library_id": "67890",
	}), sc)
	if err != nil {
		t.Fatalf("handleConfigureZotero() error = %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for missing api_key")
	}
	if sc.Configured() {
		t.Error("context became configured from an invalid request")
	}
}
