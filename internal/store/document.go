package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"plenio/internal/core"
)

// The helpers below operate on JSON-encoded documents and are shared by
// backends that persist documents as JSON (memory, sqlite).

// Matches reports whether the encoded document satisfies every filter.
func Matches(doc []byte, filters []Filter) (bool, error) {
	if len(filters) == 0 {
		return true, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return false, fmt.Errorf("decode document: %w", err)
	}
	for _, f := range filters {
		want, err := json.Marshal(f.Value)
		if err != nil {
			return false, fmt.Errorf("encode filter %s: %w", f.Field, err)
		}
		got, ok := fields[f.Field]
		if !ok || !bytes.Equal(bytes.TrimSpace(got), want) {
			return false, nil
		}
	}
	return true, nil
}

// MergeFields overwrites the given top-level fields of the encoded document.
func MergeFields(doc []byte, updates map[string]any) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	for name, v := range updates {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", name, err)
		}
		fields[name] = raw
	}
	return json.Marshal(fields)
}

// AddToField adds delta to a numeric field, treating a missing field as 0.
func AddToField(doc []byte, field string, delta float64) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	var current float64
	if raw, ok := fields[field]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &current); err != nil {
			return nil, fmt.Errorf("field %s is not numeric: %w", field, err)
		}
	}
	return MergeFields(doc, map[string]any{field: core.AddAmounts(current, delta)})
}
