package output

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/tracehttp/internal/check"
	http "github.com/wesleyorama2/tracehttp/internal/http"
)

func TestGetFormatter(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		expected string
	}{
		{"Text format", FormatText, "*output.Formatter"},
		{"JSON format", FormatJSON, "*output.JSONFormatter"},
		{"YAML format", FormatYAML, "*output.YAMLFormatter"},
		{"Unknown format", Format(99), "*output.Formatter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := GetFormatter(tt.format, false, true)
			if got := reflect.TypeOf(formatter).String(); got != tt.expected {
				t.Errorf("Expected formatter type %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "text": FormatText, "JSON": FormatJSON, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseFormat("junit"); err == nil {
		t.Error("Expected an error for an unknown format")
	}
	if FormatYAML.String() != "yaml" {
		t.Errorf("Expected yaml, got %s", FormatYAML)
	}
}

func TestJSONFormatter_FormatResponse(t *testing.T) {
	f := &JSONFormatter{}
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(f.FormatResponse(testResponse())), &data); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if data["status"] != float64(200) {
		t.Errorf("Expected status 200, got %v", data["status"])
	}
	stats, ok := data["stats"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected stats object, got %v", data["stats"])
	}
	for key, want := range map[string]interface{}{
		"remoteAddr":       "93.184.216.34:443",
		"isHttps":          true,
		"cipher":           "TLS_AES_128_GCM_SHA256",
		"dnsLookup":        float64(10),
		"serverProcessing": float64(25),
		"total":            float64(100),
	} {
		if stats[key] != want {
			t.Errorf("stats.%s = %v, want %v", key, stats[key], want)
		}
	}
}

func TestJSONFormatter_FormatError(t *testing.T) {
	f := &JSONFormatter{}

	var got ErrorData
	if err := json.Unmarshal([]byte(f.FormatError(errors.New("plain"))), &got); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if got != (ErrorData{Message: "plain", Category: "unknown"}) {
		t.Errorf("Unexpected error payload %+v", got)
	}

	_, normErr := http.NewRequest("GET", "ftp://example.com").Normalize()
	if err := json.Unmarshal([]byte(f.FormatError(normErr)), &got); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if got.Category != "url" {
		t.Errorf("Expected url category, got %q", got.Category)
	}
}

func TestYAMLFormatter(t *testing.T) {
	f := &YAMLFormatter{}

	var resp map[string]interface{}
	if err := yaml.Unmarshal([]byte(f.FormatResponse(testResponse())), &resp); err != nil {
		t.Fatalf("Output is not valid YAML: %v", err)
	}
	if resp["url"] != "https://api.example.com/users?page=1" {
		t.Errorf("Unexpected url %v", resp["url"])
	}

	var req map[string]interface{}
	if err := yaml.Unmarshal([]byte(f.FormatRequest(testRequest())), &req); err != nil {
		t.Fatalf("Output is not valid YAML: %v", err)
	}
	if req["contentType"] != "" {
		t.Errorf("Expected empty contentType, got %v", req["contentType"])
	}

	var report map[string]interface{}
	out := f.FormatReport(&check.Report{SchemaChecked: true})
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Output is not valid YAML: %v", err)
	}
	if report["schemaChecked"] != true {
		t.Errorf("Expected schemaChecked true, got %v", report["schemaChecked"])
	}
}
