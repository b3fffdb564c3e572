package library

import (
	"strings"

	"github.com/reftools/zotero-mcp/internal/zotero"
)

// Criteria keys recognized by ParseCriteria. Unrecognized keys are
// ignored silently.
const (
	CriterionItemType      = "item_type"
	CriterionTitleContains = "title_contains"
)

// Criteria describes which items to retain. A nil field places no
// constraint; present fields are combined with AND.
type Criteria struct {
	// ItemType requires exact, case-sensitive equality with the item's type.
	ItemType *string

	// TitleContains requires the title to contain the value,
	// case-insensitively. Items without a title never match a non-empty
	// value.
	TitleContains *string
}

// ParseCriteria builds Criteria from a string-keyed map, as received from
// a tool call. Only recognized keys with string values are honored;
// everything else is ignored.
func ParseCriteria(m map[string]any) Criteria {
	var c Criteria
	if v, ok := m[CriterionItemType].(string); ok {
		c.ItemType = &v
	}
	if v, ok := m[CriterionTitleContains].(string); ok {
		c.TitleContains = &v
	}
	return c
}

// Empty reports whether no constraint is present.
func (c Criteria) Empty() bool {
	return c.ItemType == nil && c.TitleContains == nil
}

// Matches reports whether the item satisfies every present constraint.
// Empty criteria match everything.
func (c Criteria) Matches(item *zotero.Item) bool {
	if c.ItemType != nil && item.Data.ItemType != *c.ItemType {
		return false
	}
	if c.TitleContains != nil {
		title := strings.ToLower(item.Data.Title)
		if !strings.Contains(title, strings.ToLower(*c.TitleContains)) {
			return false
		}
	}
	return true
}

// PartitionResult holds the outcome of a retention partition. Both slices
// preserve the relative order of the input collection.
type PartitionResult struct {
	Retain []*zotero.Item
	Delete []*zotero.Item
}

// Partition splits items into those retained by the criteria and those
// slated for deletion. The partition is total and exclusive: every input
// item lands in exactly one of the two slices.
func Partition(items []*zotero.Item, criteria Criteria) PartitionResult {
	result := PartitionResult{
		Retain: make([]*zotero.Item, 0, len(items)),
		Delete: make([]*zotero.Item, 0),
	}
	for _, item := range items {
		if criteria.Matches(item) {
			result.Retain = append(result.Retain, item)
		} else {
			result.Delete = append(result.Delete, item)
		}
	}
	return result
}
