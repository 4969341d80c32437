// Package normalization reads loosely typed JSON values decoded into any.
package normalization

import (
	"strings"
	"time"
)

// AsString trims and returns value when it is a string.
func AsString(value any) string {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// AsMap returns value when it is a JSON object.
func AsMap(value any) map[string]any {
	if typed, ok := value.(map[string]any); ok {
		return typed
	}
	return nil
}

// AsTime parses RFC 3339 strings (with or without fractional seconds) into UTC.
// Anything else yields the zero time.
func AsTime(value any) time.Time {
	s := AsString(value)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// MapFromPayload unwraps common envelope structures (e.g. {"data": {...}})
// into a plain map.
func MapFromPayload(value any) map[string]any {
	typed := AsMap(value)
	if typed == nil {
		return nil
	}
	if data := AsMap(typed["data"]); data != nil {
		return data
	}
	return typed
}
