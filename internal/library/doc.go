// Package library contains the pure, in-memory item logic: projecting raw
// Zotero items into compact summaries and partitioning collections by
// retention criteria. Nothing here performs I/O.
package library
