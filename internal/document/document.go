package document

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// SiteRef is a resolved site reference stored inside a JSON document.
type SiteRef struct {
	ID   snowflake.ID `json:"id"`
	Name string       `json:"name"`
}

// SiteResolver resolves a site primary key to a {id, name} pair. A lookup
// miss returns (nil, nil); the caller drops the reference silently.
type SiteResolver interface {
	ResolveSite(ctx context.Context, id snowflake.ID) (*SiteRef, error)
}

// ResolveSiteInput parses a raw site id input and resolves it. Empty or
// unparseable input and lookup misses all yield nil.
func ResolveSiteInput(ctx context.Context, resolver SiteResolver, raw string) *SiteRef {
	raw = strings.TrimSpace(raw)
	if raw == "" || resolver == nil {
		return nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return nil
	}
	ref, err := resolver.ResolveSite(ctx, id)
	if err != nil {
		return nil
	}
	return ref
}

// ParseInt coerces a raw input to an optional integer. Empty or invalid
// input yields nil, never an error.
func ParseInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &value
}

// FormatInt renders an optional integer back to its input representation.
func FormatInt(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}

// ParseBool coerces a raw input with a truthy-token check.
func ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// FormatBool renders a boolean back to its input representation.
func FormatBool(value bool) string {
	if value {
		return "true"
	}
	return ""
}

// DecodeList parses a client-side JSON-encoded list input. Malformed JSON
// degrades to an empty list.
func DecodeList(raw string) []map[string]any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []map[string]any{}
	}
	var items []map[string]any
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []map[string]any{}
	}
	return items
}

// EncodeList re-encodes a stored list back to its JSON-string input form.
func EncodeList(items []map[string]any) string {
	if len(items) == 0 {
		return ""
	}
	b, err := json.Marshal(items)
	if err != nil {
		return ""
	}
	return string(b)
}
