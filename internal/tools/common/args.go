package common

import (
	"fmt"
	"strings"
)

// StringArg extracts a required string argument from the raw arguments map.
func StringArg(args map[string]interface{}, name string) (string, error) {
	val, ok := args[name]
	if !ok || val == nil {
		return "", fmt.Errorf("%s is required", name)
	}
	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", name)
	}
	if strings.TrimSpace(str) == "" {
		return "", fmt.Errorf("%s cannot be empty", name)
	}
	return str, nil
}

// OptionalStringArg extracts an optional string argument, returning the
// fallback when the argument is absent or not a string.
func OptionalStringArg(args map[string]interface{}, name, fallback string) string {
	if val, ok := args[name].(string); ok && val != "" {
		return val
	}
	return fallback
}

// OptionalBoolArg extracts an optional boolean argument, returning the
// fallback when the argument is absent or not a boolean.
func OptionalBoolArg(args map[string]interface{}, name string, fallback bool) bool {
	if val, ok := args[name].(bool); ok {
		return val
	}
	return fallback
}

// OptionalIntArg extracts an optional integer argument. JSON numbers
// arrive as float64, so both forms are accepted.
func OptionalIntArg(args map[string]interface{}, name string, fallback int) int {
	switch val := args[name].(type) {
	case float64:
		return int(val)
	case int:
		return val
	}
	return fallback
}

// ObjectArg extracts an optional object argument as a map. Returns nil
// when the argument is absent; an error when present but not an object.
func ObjectArg(args map[string]interface{}, name string) (map[string]interface{}, error) {
	val, ok := args[name]
	if !ok || val == nil {
		return nil, nil
	}
	obj, ok := val.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an object", name)
	}
	return obj, nil
}
