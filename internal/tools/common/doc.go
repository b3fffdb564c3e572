// Package common provides shared helpers for MCP tool handlers: typed
// argument extraction and instrumentation wrappers that record metrics
// and audit logs around every tool invocation.
package common
