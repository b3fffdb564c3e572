// Package zotero_tools provides MCP tools for managing a Zotero reference
// library: runtime credential configuration, item listing and search,
// single and batch deletion, and the criteria-based retention workflow.
//
// Destructive tools (delete_item, delete_items_batch,
// retain_items_by_criteria) are only registered when the server runs in
// read-write mode. retain_items_by_criteria defaults to a dry run and
// only mutates the library when dry_run is explicitly false.
package zotero_tools
