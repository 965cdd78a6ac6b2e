package action

import (
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ArgumentSet holds resolved argument values. A key is either present with a
// usable value or absent entirely; empty and null-like values are never stored.
type ArgumentSet map[string]string

// NormalizeValue converts a raw extracted value to its canonical string form.
// Returns ok=false for values that mean "not provided": nil, "", and the
// literal string "null" in any casing.
func NormalizeValue(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" || strings.EqualFold(trimmed, "null") {
			return "", false
		}
		return trimmed, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return fmt.Sprint(v), true
	}
}

// NewArgumentSet normalizes a raw key/value map, dropping null-like entries.
func NewArgumentSet(raw map[string]any) ArgumentSet {
	args := make(ArgumentSet, len(raw))
	for key, value := range raw {
		if normalized, ok := NormalizeValue(value); ok {
			args[key] = normalized
		}
	}
	return args
}

// DecodeArguments parses a JSON object and normalizes it into an ArgumentSet.
func DecodeArguments(data []byte) (ArgumentSet, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode arguments: %w", err)
	}
	return NewArgumentSet(raw), nil
}

// Merge copies entries from other into the set. Existing keys are only
// overwritten when the set does not already hold a value for them.
func (a ArgumentSet) Merge(other ArgumentSet) {
	for key, value := range other {
		if _, exists := a[key]; !exists {
			a[key] = value
		}
	}
}

// Missing returns the subset of keys that the set has no value for,
// preserving the order of keys.
func (a ArgumentSet) Missing(keys []string) []string {
	var missing []string
	for _, key := range keys {
		if _, ok := a[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// Clone returns an independent copy of the set.
func (a ArgumentSet) Clone() ArgumentSet {
	clone := make(ArgumentSet, len(a))
	for key, value := range a {
		clone[key] = value
	}
	return clone
}
