package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/reftools/zotero-mcp/internal/library"
	"github.com/reftools/zotero-mcp/internal/server"
	"github.com/reftools/zotero-mcp/internal/zotero"
)

// statsSampleSize is how many top-level items the stats resource inspects.
// The type breakdown is computed over this sample, not the whole library.
const statsSampleSize = 100

// recentItemCount is how many items the recent resource returns.
const recentItemCount = 10

// RegisterLibraryResources registers the read-only library resources:
// zotero://library/stats and zotero://library/recent.
func RegisterLibraryResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	statsResource := mcp.NewResource(
		"zotero://library/stats",
		"Library Statistics",
		mcp.WithResourceDescription("Total item count and a breakdown of item types in the configured Zotero library"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(statsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleLibraryStats(ctx, request, sc)
	})

	recentResource := mcp.NewResource(
		"zotero://library/recent",
		"Recently Added Items",
		mcp.WithResourceDescription(fmt.Sprintf("The %d most recently added top-level items", recentItemCount)),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(recentResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleRecentItems(ctx, request, sc)
	})

	return nil
}

// jsonContents wraps a JSON-serializable value as resource contents.
func jsonContents(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource contents: %w", err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorContents reports a resource-level failure as a JSON body instead of
// a protocol error, so clients render something useful.
func errorContents(uri string, err error) ([]mcp.ResourceContents, error) {
	return jsonContents(uri, map[string]string{"error": err.Error()})
}

// handleLibraryStats returns the library's total top-level item count and
// an item type breakdown over a bounded sample.
func handleLibraryStats(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client, err := sc.Client()
	if err != nil {
		return errorContents(request.Params.URI, err)
	}

	items, resp, err := client.Items.Top(ctx, &zotero.ItemListOptions{Limit: statsSampleSize})
	if err != nil {
		return errorContents(request.Params.URI, fmt.Errorf("failed to fetch library items: %w", err))
	}

	total := resp.TotalResults
	if total < 0 {
		total = len(items)
	}

	byType := make(map[string]int)
	for _, item := range items {
		byType[item.Data.ItemType]++
	}

	stats := map[string]interface{}{
		"total_items":   total,
		"items_by_type": byType,
		"sampled_items": len(items),
	}
	return jsonContents(request.Params.URI, stats)
}

// handleRecentItems returns the most recently added top-level items as
// compact summaries, newest first.
func handleRecentItems(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client, err := sc.Client()
	if err != nil {
		return errorContents(request.Params.URI, err)
	}

	items, _, err := client.Items.Top(ctx, &zotero.ItemListOptions{
		Limit:     recentItemCount,
		Sort:      "dateAdded",
		Direction: "desc",
	})
	if err != nil {
		return errorContents(request.Params.URI, fmt.Errorf("failed to fetch recent items: %w", err))
	}

	summaries := library.SummarizeAll(items)
	// dateAdded is ISO 8601, so lexicographic order is chronological.
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].DateAdded > summaries[j].DateAdded
	})

	return jsonContents(request.Params.URI, summaries)
}
