package zotero_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/reftools/zotero-mcp/internal/config"
	"github.com/reftools/zotero-mcp/internal/instrumentation"
	"github.com/reftools/zotero-mcp/internal/server"
	"github.com/reftools/zotero-mcp/internal/tools/common"
	"github.com/reftools/zotero-mcp/internal/zotero"
)

// notConfiguredMessage is the tool-facing text when no credentials are set.
const notConfiguredMessage = "Zotero is not configured. Use the configure_zotero tool to set your library ID and API key first."

// getClient returns the Zotero client or a tool-friendly error message.
func getClient(sc *server.ServerContext) (*zotero.Client, error) {
	client, err := sc.Client()
	if err != nil {
		return nil, fmt.Errorf("%s", notConfiguredMessage)
	}
	return client, nil
}

// RegisterZoteroTools registers all Zotero tools with the MCP server.
// In read-only mode the destructive tools (delete_item, delete_items_batch,
// retain_items_by_criteria) are not registered.
func RegisterZoteroTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerConfigTools(s, sc); err != nil {
		return fmt.Errorf("failed to register configuration tools: %w", err)
	}

	if err := registerItemTools(s, sc); err != nil {
		return fmt.Errorf("failed to register item tools: %w", err)
	}

	if !readOnly {
		if err := registerDeleteTools(s, sc); err != nil {
			return fmt.Errorf("failed to register delete tools: %w", err)
		}
		if err := registerRetentionTools(s, sc); err != nil {
			return fmt.Errorf("failed to register retention tools: %w", err)
		}
	}

	return nil
}

// registerConfigTools registers configure_zotero and check_zotero_config.
func registerConfigTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	configureTool := mcp.NewTool("configure_zotero",
		mcp.WithDescription("Configure Zotero API credentials at runtime. Replaces any previously configured library."),
		mcp.WithString("library_id",
			mcp.Required(),
			mcp.Description("Numeric Zotero library ID (your userID for user libraries, the groupID for group libraries)"),
		),
		mcp.WithString("api_key",
			mcp.Required(),
			mcp.Description("Zotero Web API key with access to the library"),
		),
		mcp.WithString("library_type",
			mcp.Description("Library type: 'user' or 'group' (default: 'user')"),
		),
	)

	s.AddTool(configureTool, common.InstrumentedToolHandlerWithOperation(
		"configure_zotero", instrumentation.OperationConfigure, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleConfigureZotero(ctx, request, sc)
		}))

	checkTool := mcp.NewTool("check_zotero_config",
		mcp.WithDescription("Show the current Zotero configuration status with a masked API key"),
	)

	s.AddTool(checkTool, common.InstrumentedToolHandler(
		"check_zotero_config", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCheckZoteroConfig(ctx, request, sc)
		}))

	return nil
}

func handleConfigureZotero(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	libraryID, err := common.StringArg(args, "library_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	apiKey, err := common.StringArg(args, "api_key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	libraryType := common.OptionalStringArg(args, "library_type", config.LibraryTypeUser)

	creds := config.Credentials{
		LibraryID:   libraryID,
		APIKey:      apiKey,
		LibraryType: libraryType,
	}

	// Rejected credentials leave the previous configuration intact.
	if err := sc.SetCredentials(creds); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid Zotero configuration: %v", err)), nil
	}

	// Live probe: fetch one top-level item. The probe is advisory; the new
	// credentials stay in effect even when it fails.
	client, err := sc.Client()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build Zotero client: %v", err)), nil
	}

	stored := sc.Credentials()
	if _, _, err := client.Items.Top(ctx, &zotero.ItemListOptions{Limit: 1}); err != nil {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Zotero configuration saved, but verification failed: %v\nCheck that your library ID and API key are correct.\nLibrary ID: %s\nLibrary type: %s",
			err, stored.LibraryID, stored.LibraryType)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Zotero configured successfully.\nLibrary ID: %s\nLibrary type: %s",
		stored.LibraryID, stored.LibraryType)), nil
}

func handleCheckZoteroConfig(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	creds := sc.Credentials()
	if !creds.Configured() {
		return mcp.NewToolResultText(notConfiguredMessage), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Zotero is configured.\nLibrary ID: %s\nLibrary type: %s\nAPI key: %s",
		creds.LibraryID, creds.LibraryType, creds.MaskedKey())), nil
}
