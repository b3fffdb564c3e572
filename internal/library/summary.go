package library

import "github.com/reftools/zotero-mcp/internal/zotero"

// UntitledPlaceholder is the title shown for items without one.
const UntitledPlaceholder = "Untitled"

// Summary is the compact projection of an item used by list, search, and
// the recent-items resource.
type Summary struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	ItemType  string `json:"itemType"`
	DateAdded string `json:"dateAdded"`
}

// Summarize projects a raw item into a Summary. A missing title becomes
// the "Untitled" placeholder.
func Summarize(item *zotero.Item) Summary {
	title := item.Data.Title
	if title == "" {
		title = UntitledPlaceholder
	}
	return Summary{
		Key:       item.Key,
		Title:     title,
		ItemType:  item.Data.ItemType,
		DateAdded: item.Data.DateAdded,
	}
}

// SummarizeAll projects every item, preserving order.
func SummarizeAll(items []*zotero.Item) []Summary {
	summaries := make([]Summary, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, Summarize(item))
	}
	return summaries
}
