package instrumentation

import "strings"

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// High cardinality in metrics can cause:
// - Increased memory usage in Prometheus/metrics backends
// - Slower query performance
// - Higher storage costs
//
// Always use these helpers when recording metrics with library identifiers.

// NormalizeLibraryType reduces a library type label to one of the bounded
// values "user", "group", or "unknown". Library IDs are per-user values and
// must never be used as a metric label unless detailed labels are enabled;
// the library type is the low-cardinality alternative.
//
// Example:
//
//	NormalizeLibraryType("user")   // "user"
//	NormalizeLibraryType("GROUP")  // "group"
//	NormalizeLibraryType("shelf")  // "unknown"
//	NormalizeLibraryType("")       // "unknown"
func NormalizeLibraryType(libraryType string) string {
	switch strings.ToLower(strings.TrimSpace(libraryType)) {
	case LibraryTypeUser:
		return LibraryTypeUser
	case LibraryTypeGroup:
		return LibraryTypeGroup
	}
	return StatusUnknown
}

// Common operation types for Zotero API metrics.
// Status and library type constants are defined in config.go.
const (
	OperationList      = "list"
	OperationGet       = "get"
	OperationSearch    = "search"
	OperationDelete    = "delete"
	OperationConfigure = "configure"
	OperationRetain    = "retain"
)
