// Package resources provides MCP resources exposing read-only views of the
// configured Zotero library.
//
// Two resources are registered:
//
//   - zotero://library/stats: total top-level item count and an item type
//     breakdown over a bounded sample
//   - zotero://library/recent: the most recently added top-level items as
//     compact summaries
//
// When no library is configured, resources return a JSON error body rather
// than failing the read, so clients can render the condition.
package resources
