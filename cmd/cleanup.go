package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reftools/zotero-mcp/internal/config"
	"github.com/reftools/zotero-mcp/internal/library"
	"github.com/reftools/zotero-mcp/internal/zotero"
)

// defaultCleanupPreview caps how many slated items the dry run prints.
const defaultCleanupPreview = 10

func newCleanupCmd() *cobra.Command {
	var (
		itemType      string
		titleContains string
		execute       bool
		limit         int
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete library items that do not match the retention criteria",
		Long: `Fetch all top-level items from the configured Zotero library, keep the
ones matching the given criteria, and delete the rest.

Runs as a dry run unless --execute is given. Criteria are combined with
AND: an item must satisfy all of them to be retained.

Credentials come from ZOTERO_LIBRARY_ID, ZOTERO_API_KEY, and
ZOTERO_LIBRARY_TYPE environment variables, or a config.yaml under
~/.config/zotero-mcp/.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanup(cmd.Context(), itemType, titleContains, execute, limit)
		},
	}

	cmd.Flags().StringVar(&itemType, "item-type", "", "Retain items of this exact type (e.g. journalArticle)")
	cmd.Flags().StringVar(&titleContains, "title-contains", "", "Retain items whose title contains this text (case-insensitive)")
	cmd.Flags().BoolVar(&execute, "execute", false, "Actually delete items. Without this flag, only report what would be deleted.")
	cmd.Flags().IntVar(&limit, "limit", defaultCleanupPreview, "Maximum number of slated items to list in a dry run")

	return cmd
}

func runCleanup(ctx context.Context, itemType, titleContains string, execute bool, limit int) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var criteria library.Criteria
	if itemType != "" {
		criteria.ItemType = &itemType
	}
	if titleContains != "" {
		criteria.TitleContains = &titleContains
	}
	if criteria.Empty() {
		return fmt.Errorf("at least one of --item-type or --title-contains is required")
	}

	creds, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if err := creds.Validate(); err != nil {
		return fmt.Errorf("zotero library not configured (set ZOTERO_LIBRARY_ID and ZOTERO_API_KEY): %w", err)
	}

	client, err := zotero.NewClient(creds.LibraryID, zotero.LibraryType(creds.LibraryType),
		zotero.WithAPIKey(creds.APIKey))
	if err != nil {
		return fmt.Errorf("failed to create Zotero client: %w", err)
	}

	items, err := client.Items.AllTop(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch library items: %w", err)
	}

	partition := library.Partition(items, criteria)
	fmt.Printf("Retained: %d items\n", len(partition.Retain))
	fmt.Printf("To delete: %d items\n", len(partition.Delete))

	if !execute {
		if limit <= 0 {
			limit = defaultCleanupPreview
		}
		shown := partition.Delete
		if len(shown) > limit {
			shown = shown[:limit]
		}
		for _, item := range shown {
			title := item.Data.Title
			if title == "" {
				title = library.UntitledPlaceholder
			}
			fmt.Printf("- %s (%s)\n", title, item.Key)
		}
		if rest := len(partition.Delete) - len(shown); rest > 0 {
			fmt.Printf("... and %d more items\n", rest)
		}
		fmt.Println("Dry run: no items were deleted. Pass --execute to delete them.")
		return nil
	}

	deleted := 0
	for _, item := range partition.Delete {
		if _, err := client.Items.Delete(ctx, item.Key, item.Version); err != nil {
			fmt.Printf("failed to delete %s: %v\n", item.Key, err)
			continue
		}
		deleted++
	}
	fmt.Printf("Deleted %d of %d items\n", deleted, len(partition.Delete))
	if deleted < len(partition.Delete) {
		return fmt.Errorf("%d deletions failed", len(partition.Delete)-deleted)
	}
	return nil
}
