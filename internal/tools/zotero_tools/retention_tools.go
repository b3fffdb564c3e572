package zotero_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/reftools/zotero-mcp/internal/instrumentation"
	"github.com/reftools/zotero-mcp/internal/library"
	"github.com/reftools/zotero-mcp/internal/server"
	"github.com/reftools/zotero-mcp/internal/tools/batch"
	"github.com/reftools/zotero-mcp/internal/tools/common"
	"github.com/reftools/zotero-mcp/internal/zotero"
)

// deletePreviewLimit caps how many slated items a dry run lists by title.
const deletePreviewLimit = 10

// registerRetentionTools registers retain_items_by_criteria. Only called
// in read-write mode.
func registerRetentionTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	tool := mcp.NewTool("retain_items_by_criteria",
		mcp.WithDescription("Keep only the items matching the given criteria and delete everything else in the library. "+
			"Runs as a dry run by default; pass dry_run=false to actually delete. "+
			"Criteria are combined with AND: an item must satisfy all of them to be retained."),
		mcp.WithObject("criteria",
			mcp.Required(),
			mcp.Description("Retention criteria. Supported keys: item_type (exact match, e.g. journalArticle), title_contains (case-insensitive substring)"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("When true (the default), report what would be deleted without deleting anything"),
		),
	)

	s.AddTool(tool, common.InstrumentedToolHandlerWithOperation(
		"retain_items_by_criteria", instrumentation.OperationRetain, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRetainItems(ctx, request, sc)
		}))

	return nil
}

func handleRetainItems(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	criteriaArg, err := common.ObjectArg(args, "criteria")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if criteriaArg == nil {
		return mcp.NewToolResultError("criteria is required"), nil
	}

	// Empty criteria match every item, so the delete set comes out empty
	// and the call degrades to a report of the library size.
	criteria := library.ParseCriteria(criteriaArg)

	dryRun := common.OptionalBoolArg(args, "dry_run", true)

	client, err := getClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	items, err := client.Items.AllTop(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch library items: %v", err)), nil
	}

	partition := library.Partition(items, criteria)

	var out strings.Builder
	fmt.Fprintf(&out, "Retention filter results:\n")
	fmt.Fprintf(&out, "Retained: %d items\n", len(partition.Retain))
	fmt.Fprintf(&out, "To delete: %d items\n", len(partition.Delete))

	if dryRun {
		writeDeletePreview(&out, partition.Delete)
		out.WriteString("\nDry run: no items were deleted. Pass dry_run=false to delete them.")
		return mcp.NewToolResultText(out.String()), nil
	}

	keys := make([]string, 0, len(partition.Delete))
	byKey := make(map[string]*zotero.Item, len(partition.Delete))
	for _, item := range partition.Delete {
		keys = append(keys, item.Key)
		byKey[item.Key] = item
	}

	results := batch.ProcessBatch(keys, func(key string) (string, error) {
		if _, err := client.Items.Delete(ctx, key, byKey[key].Version); err != nil {
			return "", err
		}
		return "deleted", nil
	})

	deleted := 0
	for _, r := range results {
		if r.Status == "success" {
			deleted++
		}
	}
	fmt.Fprintf(&out, "\nDeleted %d of %d items.\n", deleted, len(keys))
	if deleted < len(keys) {
		out.WriteString("Failures:\n")
		for _, r := range results {
			if r.Status != "success" {
				fmt.Fprintf(&out, "- %s: %s\n", r.ID, r.Error)
			}
		}
	}
	return mcp.NewToolResultText(out.String()), nil
}

// writeDeletePreview lists up to deletePreviewLimit slated items by title
// and key, then the remainder count.
func writeDeletePreview(out *strings.Builder, slated []*zotero.Item) {
	if len(slated) == 0 {
		return
	}
	out.WriteString("\nItems that would be deleted:\n")
	shown := slated
	if len(shown) > deletePreviewLimit {
		shown = shown[:deletePreviewLimit]
	}
	for _, item := range shown {
		title := item.Data.Title
		if title == "" {
			title = library.UntitledPlaceholder
		}
		fmt.Fprintf(out, "- %s (%s)\n", title, item.Key)
	}
	if rest := len(slated) - len(shown); rest > 0 {
		fmt.Fprintf(out, "... and %d more items\n", rest)
	}
}
