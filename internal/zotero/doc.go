// Package zotero provides a typed client for the Zotero Web API v3.
//
// The client follows the service-oriented style of go-github: a Client
// holds the HTTP transport and base URL, and per-concern services (Items)
// expose the API operations. All methods take a context.Context and return
// typed errors that can be inspected with errors.As.
//
// Usage:
//
//	client, err := zotero.NewClient("12345", zotero.LibraryTypeUser,
//	    zotero.WithAPIKey("secret"))
//	if err != nil {
//	    return err
//	}
//	items, _, err := client.Items.Top(ctx, &zotero.ItemListOptions{Limit: 50})
//
// The package implements only the surface this server consumes: top-level
// item listing (paged and exhaustive), single-item retrieval, and item
// deletion with the If-Unmodified-Since-Version precondition.
package zotero
