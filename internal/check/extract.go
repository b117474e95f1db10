// Package check runs assertions against a response body: JSONPath style
// extraction and JSON Schema validation.
package check

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Extraction is the outcome of one path lookup.
type Extraction struct {
	Path  string `json:"path" yaml:"path"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	Found bool   `json:"found" yaml:"found"`
}

// Extract extracts a value from a JSON string using a JSONPath expression
func Extract(json string, path string) (string, error) {
	if json == "" {
		return "", fmt.Errorf("empty JSON string")
	}
	if path == "" {
		return "", fmt.Errorf("empty JSONPath expression")
	}
	if !gjson.Valid(json) {
		return "", fmt.Errorf("body is not valid JSON")
	}

	result := gjson.Get(json, toGjsonPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// ExtractAll looks up every path and keeps the input order.
func ExtractAll(json string, paths []string) []Extraction {
	out := make([]Extraction, 0, len(paths))
	for _, p := range paths {
		value, err := Extract(json, p)
		out = append(out, Extraction{Path: p, Value: value, Found: err == nil})
	}
	return out
}

// toGjsonPath converts $.users[0].name into users.0.name.
func toGjsonPath(path string) string {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	path = strings.NewReplacer(`['`, ".", `']`, "", `["`, ".", `"]`, "").Replace(path)
	path = strings.NewReplacer("[", ".", "]", "").Replace(path)
	return strings.TrimPrefix(path, ".")
}
