package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Environment variables that supply initial credentials at process start.
const (
	EnvLibraryID   = "ZOTERO_LIBRARY_ID"
	EnvAPIKey      = "ZOTERO_API_KEY"
	EnvLibraryType = "ZOTERO_LIBRARY_TYPE"
)

// Library types accepted by the Zotero API.
const (
	LibraryTypeUser  = "user"
	LibraryTypeGroup = "group"
)

// maskVisiblePrefix is how many leading API key characters check_zotero_config
// shows; keys no longer than this are masked entirely.
const maskVisiblePrefix = 8

// Credentials identifies a Zotero library and the key used to access it.
// Credentials are replaced wholesale, never partially updated.
type Credentials struct {
	LibraryID   string `mapstructure:"library_id"`
	APIKey      string `mapstructure:"api_key"`
	LibraryType string `mapstructure:"library_type"`
}

// Validate checks that the credentials are complete enough to build a
// client: non-empty library ID and API key, and a recognized library type.
func (c Credentials) Validate() error {
	if c.LibraryID == "" {
		return fmt.Errorf("library_id cannot be empty")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key cannot be empty")
	}
	if c.LibraryType != LibraryTypeUser && c.LibraryType != LibraryTypeGroup {
		return fmt.Errorf("library_type must be %q or %q, got %q",
			LibraryTypeUser, LibraryTypeGroup, c.LibraryType)
	}
	return nil
}

// Configured reports whether both the library ID and the API key are set.
// It does not imply the credentials are valid against the API.
func (c Credentials) Configured() bool {
	return c.LibraryID != "" && c.APIKey != ""
}

// MaskedKey returns the API key for display: the first 8 characters
// verbatim followed by one '*' per remaining character. Keys of 8
// characters or fewer are masked entirely.
func (c Credentials) MaskedKey() string {
	if len(c.APIKey) <= maskVisiblePrefix {
		return strings.Repeat("*", len(c.APIKey))
	}
	return c.APIKey[:maskVisiblePrefix] + strings.Repeat("*", len(c.APIKey)-maskVisiblePrefix)
}

// Normalized returns a copy with surrounding whitespace stripped and the
// library type defaulted to "user" when empty.
func (c Credentials) Normalized() Credentials {
	c.LibraryID = strings.TrimSpace(c.LibraryID)
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.LibraryType = strings.TrimSpace(c.LibraryType)
	if c.LibraryType == "" {
		c.LibraryType = LibraryTypeUser
	}
	return c
}

// FromEnv reads credentials from the process environment. Absent values
// stay empty; the library type defaults to "user".
func FromEnv() Credentials {
	return Credentials{
		LibraryID:   os.Getenv(EnvLibraryID),
		APIKey:      os.Getenv(EnvAPIKey),
		LibraryType: os.Getenv(EnvLibraryType),
	}.Normalized()
}

// defaultConfigPath returns the directory searched for a config file.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "zotero-mcp")
}

// Load reads credentials from the optional YAML config file and the
// environment, with environment values taking precedence. A missing
// config file is not an error.
func Load() (Credentials, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(defaultConfigPath())
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Credentials{}, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, fall through to the environment.
	}

	var creds Credentials
	if err := v.Unmarshal(&creds); err != nil {
		return Credentials{}, fmt.Errorf("error parsing config: %w", err)
	}

	// Environment overrides file values.
	if id := os.Getenv(EnvLibraryID); id != "" {
		creds.LibraryID = id
	}
	if key := os.Getenv(EnvAPIKey); key != "" {
		creds.APIKey = key
	}
	if typ := os.Getenv(EnvLibraryType); typ != "" {
		creds.LibraryType = typ
	}

	return creds.Normalized(), nil
}
