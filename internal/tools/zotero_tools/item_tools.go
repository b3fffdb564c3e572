package zotero_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/reftools/zotero-mcp/internal/instrumentation"
	"github.com/reftools/zotero-mcp/internal/library"
	"github.com/reftools/zotero-mcp/internal/server"
	"github.com/reftools/zotero-mcp/internal/tools/common"
	"github.com/reftools/zotero-mcp/internal/zotero"
)

// defaultListLimit caps list_items output when no limit is given.
const defaultListLimit = 50

// registerItemTools registers the read-only item tools: list_items,
// search_items, and get_item_details.
func registerItemTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("list_items",
		mcp.WithDescription("List top-level items in the Zotero library as compact summaries"),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of items to return (default: %d)", defaultListLimit)),
		),
	)

	s.AddTool(listTool, common.InstrumentedToolHandlerWithOperation(
		"list_items", instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListItems(ctx, request, sc)
		}))

	searchTool := mcp.NewTool("search_items",
		mcp.WithDescription("Search items by title (case-insensitive substring), optionally filtered by item type"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to match against item titles, case-insensitively"),
		),
		mcp.WithString("item_type",
			mcp.Description("Exact item type to filter matches by (e.g. 'journalArticle', 'book')"),
		),
	)

	s.AddTool(searchTool, common.InstrumentedToolHandlerWithOperation(
		"search_items", instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchItems(ctx, request, sc)
		}))

	detailsTool := mcp.NewTool("get_item_details",
		mcp.WithDescription("Get the full raw JSON of a single item by key"),
		mcp.WithString("item_key",
			mcp.Required(),
			mcp.Description("Zotero item key (e.g. 'ABCD1234')"),
		),
	)

	s.AddTool(detailsTool, common.InstrumentedToolHandlerWithOperation(
		"get_item_details", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetItemDetails(ctx, request, sc)
		}))

	return nil
}

func handleListItems(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	limit := common.OptionalIntArg(args, "limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}

	client, err := getClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	items, _, err := client.Items.Top(ctx, &zotero.ItemListOptions{Limit: limit})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list items: %v", err)), nil
	}

	summaries := library.SummarizeAll(items)
	result, _ := json.MarshalIndent(summaries, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("Found %d items:\n%s", len(summaries), result)), nil
}

func handleSearchItems(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	query, err := common.StringArg(args, "query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	itemType := common.OptionalStringArg(args, "item_type", "")

	client, err := getClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	items, err := client.Items.AllTop(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %v", err)), nil
	}

	needle := strings.ToLower(query)
	matches := make([]library.Summary, 0)
	for _, item := range items {
		if !strings.Contains(strings.ToLower(item.Data.Title), needle) {
			continue
		}
		// Item type is an exact post-filter on title matches.
		if itemType != "" && item.Data.ItemType != itemType {
			continue
		}
		matches = append(matches, library.Summarize(item))
	}

	result, _ := json.MarshalIndent(matches, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("Search results (%d items):\n%s", len(matches), result)), nil
}

func handleGetItemDetails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	itemKey, err := common.StringArg(args, "item_key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	item, _, err := client.Items.Get(ctx, itemKey)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get item details: %v", err)), nil
	}

	var pretty strings.Builder
	pretty.WriteString("Item details:\n")
	var buf strings.Builder
	if err := indentJSON(&buf, item.Raw()); err != nil {
		// Fall back to the unformatted payload.
		buf.Reset()
		buf.Write(item.Raw())
	}
	pretty.WriteString(buf.String())
	return mcp.NewToolResultText(pretty.String()), nil
}

// indentJSON pretty-prints raw JSON into the builder.
func indentJSON(dst *strings.Builder, raw json.RawMessage) error {
	var out json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	pretty, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	dst.Write(pretty)
	return nil
}
