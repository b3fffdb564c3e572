// Package config holds the Zotero credential configuration: validation,
// masked display, and loading from environment variables and an optional
// YAML config file.
//
// Precedence is environment over file; runtime reconfiguration through the
// configure_zotero tool replaces credentials in memory only and never
// writes back to the environment or disk.
package config
