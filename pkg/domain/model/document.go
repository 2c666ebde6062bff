package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// NotAvailable is rendered for optional fields missing from a downstream record
const NotAvailable = "N/A"

// Document is a downstream JSON record kept as-is. Only the fields the presentation reads are
// projected into typed structs.
type Document map[string]any

// String follows path through nested objects and returns the value as text, or "" when absent.
func (d Document) String(path ...string) string {
	var cur any = map[string]any(d)
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur, ok = m[key]
		if !ok {
			return ""
		}
	}

	switch v := cur.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// StringOr returns the value at path, or fallback when it is empty
func (d Document) StringOr(fallback string, path ...string) string {
	if v := d.String(path...); v != "" {
		return v
	}
	return fallback
}
