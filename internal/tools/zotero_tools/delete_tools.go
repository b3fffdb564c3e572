package zotero_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/reftools/zotero-mcp/internal/instrumentation"
	"github.com/reftools/zotero-mcp/internal/server"
	"github.com/reftools/zotero-mcp/internal/tools/batch"
	"github.com/reftools/zotero-mcp/internal/tools/common"
)

// parseItemKeys accepts the item_keys argument as an array, a JSON array
// string, or a comma-separated string.
func parseItemKeys(param interface{}) ([]string, error) {
	if s, ok := param.(string); ok && strings.Contains(s, ",") && !strings.HasPrefix(strings.TrimSpace(s), "[") {
		parts := strings.Split(s, ",")
		keys := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				keys = append(keys, trimmed)
			}
		}
		if len(keys) == 0 {
			return nil, fmt.Errorf("item_keys cannot be empty")
		}
		return keys, nil
	}
	return batch.ParseStringOrArray(param, "item_keys")
}

// registerDeleteTools registers delete_item and delete_items_batch.
// Only called in read-write mode.
func registerDeleteTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	deleteTool := mcp.NewTool("delete_item",
		mcp.WithDescription("Delete a single item from the Zotero library by key. This cannot be undone."),
		mcp.WithString("item_key",
			mcp.Required(),
			mcp.Description("Key of the item to delete"),
		),
	)

	s.AddTool(deleteTool, common.InstrumentedToolHandlerWithOperation(
		"delete_item", instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteItem(ctx, request, sc)
		}))

	batchTool := mcp.NewTool("delete_items_batch",
		mcp.WithDescription("Delete multiple items by key. Each item is attempted independently; failures do not abort the batch. This cannot be undone."),
		mcp.WithArray("item_keys",
			mcp.Required(),
			mcp.Description("Item keys to delete, e.g. [\"KEY1\",\"KEY2\"]. A comma-separated string is also accepted."),
		),
	)

	s.AddTool(batchTool, common.InstrumentedToolHandlerWithOperation(
		"delete_items_batch", instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteItemsBatch(ctx, request, sc)
		}))

	return nil
}

func handleDeleteItem(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	itemKey, err := common.StringArg(args, "item_key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := client.Items.Delete(ctx, itemKey, 0); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete item %s: %v", itemKey, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Successfully deleted item: %s", itemKey)), nil
}

func handleDeleteItemsBatch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	keys, err := parseItemKeys(args["item_keys"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := batch.ProcessBatch(keys, func(key string) (string, error) {
		if _, err := client.Items.Delete(ctx, key, 0); err != nil {
			return "", err
		}
		return "deleted", nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}
