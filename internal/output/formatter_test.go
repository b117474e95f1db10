package output

import (
	"errors"
	"strings"
	"testing"

	"github.com/wesleyorama2/tracehttp/internal/bench"
	"github.com/wesleyorama2/tracehttp/internal/check"
	http "github.com/wesleyorama2/tracehttp/internal/http"
	"github.com/wesleyorama2/tracehttp/internal/timing"
)

func testRequest() *http.RequestSpec {
	return &http.RequestSpec{
		Method: "post",
		URL:    "https://api.example.com/users",
		Body:   `{"name":"John Doe"}`,
		Headers: []http.KeyValue{
			{Key: "Authorization", Value: "Bearer token123", Enabled: true},
			{Key: "X-Debug", Value: "1", Enabled: false},
		},
		Query: []http.KeyValue{
			{Key: "page", Value: "1", Enabled: true},
			{Key: "limit", Value: "10", Enabled: false},
		},
	}
}

func testResponse() *http.Response {
	return &http.Response{
		URL:     "https://api.example.com/users?page=1",
		Latency: 100,
		Status:  200,
		Headers: map[string][]string{
			"content-type": {"application/json"},
			"x-rate-limit": {"100"},
		},
		Body:   `{"id":1,"name":"John Doe"}`,
		Length: 26,
		Stats: timing.Stats{
			RemoteAddr:       "93.184.216.34:443",
			IsHTTPS:          true,
			Cipher:           "TLS_AES_128_GCM_SHA256",
			DNSLookup:        10,
			TCP:              20,
			TLS:              30,
			Send:             5,
			ServerProcessing: 25,
			ContentTransfer:  10,
			Total:            100,
		},
	}
}

func TestFormatter_FormatRequest(t *testing.T) {
	formatter := NewFormatter(false, true)
	output := formatter.FormatRequest(testRequest())

	expectedParts := []string{
		"REQUEST: POST https://api.example.com/users?page=1",
		"Headers:",
		"Authorization: Bearer token123",
		"Body: {",
		`"name": "John Doe"`,
	}
	for _, part := range expectedParts {
		if !strings.Contains(output, part) {
			t.Errorf("Expected output to contain '%s', got:\n%s", part, output)
		}
	}

	if strings.Contains(output, "X-Debug") {
		t.Errorf("Expected disabled header to be hidden, got:\n%s", output)
	}
}

func TestFormatter_FormatRequestVerbose(t *testing.T) {
	formatter := NewFormatter(true, true)
	output := formatter.FormatRequest(testRequest())

	for _, part := range []string{"X-Debug: 1 (disabled)", "Query:", "page=1", "limit=10 (disabled)"} {
		if !strings.Contains(output, part) {
			t.Errorf("Expected output to contain '%s', got:\n%s", part, output)
		}
	}
}

func TestFormatter_FormatResponse(t *testing.T) {
	formatter := NewFormatter(false, true)
	output := formatter.FormatResponse(testResponse())

	expectedParts := []string{
		"RESPONSE: 200 OK (100ms)",
		"Connected to 93.184.216.34:443 over TLS (TLS_AES_128_GCM_SHA256)",
		"Timing:",
		"DNS Lookup",
		"Server Processing",
		"Total",
		`"name": "John Doe"`,
	}
	for _, part := range expectedParts {
		if !strings.Contains(output, part) {
			t.Errorf("Expected output to contain '%s', got:\n%s", part, output)
		}
	}

	if strings.Contains(output, "x-rate-limit") {
		t.Errorf("Expected headers to be hidden outside verbose mode")
	}
}

func TestFormatter_FormatResponseVerbose(t *testing.T) {
	formatter := NewFormatter(true, true)
	output := formatter.FormatResponse(testResponse())

	headers := strings.Index(output, "content-type: application/json")
	rateLimit := strings.Index(output, "x-rate-limit: 100")
	if headers < 0 || rateLimit < 0 {
		t.Fatalf("Expected headers in verbose output, got:\n%s", output)
	}
	if headers > rateLimit {
		t.Errorf("Expected headers sorted by name")
	}
}

func TestFormatter_FormatResponsePlainHTTP(t *testing.T) {
	resp := testResponse()
	resp.Stats.IsHTTPS = false
	resp.Stats.Cipher = ""
	resp.Status = 404

	output := NewFormatter(false, true).FormatResponse(resp)
	if strings.Contains(output, "TLS (") {
		t.Errorf("Expected no TLS details, got:\n%s", output)
	}
	if !strings.Contains(output, "404 Not Found") {
		t.Errorf("Expected status text, got:\n%s", output)
	}
}

func TestFormatter_FormatError(t *testing.T) {
	output := NewFormatter(false, true).FormatError(errors.New("dial tcp: connection refused"))
	if output != "✗ dial tcp: connection refused\n" {
		t.Errorf("Unexpected error output %q", output)
	}
}

func TestFormatter_FormatReport(t *testing.T) {
	f := NewFormatter(false, true)

	if out := f.FormatReport(&check.Report{}); out != "" {
		t.Errorf("Expected no output for an empty report, got %q", out)
	}

	out := f.FormatReport(&check.Report{
		Extractions:   []check.Extraction{{Path: "$.id", Value: "1", Found: true}, {Path: "$.nope"}},
		SchemaChecked: true,
		Violations:    []check.Violation{{Location: "/id", Message: "expected string"}},
	})
	for _, part := range []string{"✓ $.id = 1", "✗ $.nope not found", "✗ schema: /id: expected string"} {
		if !strings.Contains(out, part) {
			t.Errorf("Expected report to contain '%s', got:\n%s", part, out)
		}
	}
}

func TestFormatter_FormatSummary(t *testing.T) {
	out := NewFormatter(false, true).FormatSummary(&bench.Summary{
		Runs:   3,
		Errors: 1,
		Phases: []bench.PhaseSummary{{Name: timing.PhaseTotal, Min: 10, Mean: 15, P50: 15, P90: 20, P99: 20, Max: 20}},
	})

	for _, part := range []string{"SUMMARY: 3 runs, 1 errors", "Phase", "p99", "Total"} {
		if !strings.Contains(out, part) {
			t.Errorf("Expected summary to contain '%s', got:\n%s", part, out)
		}
	}
}

func TestFormatJSONString(t *testing.T) {
	if got := formatJSONString("plain text"); got != "plain text" {
		t.Errorf("Expected non JSON to pass through, got %q", got)
	}
	if got := formatJSONString(`{"a":1}`); !strings.Contains(got, `"a": 1`) {
		t.Errorf("Expected JSON to be indented, got %q", got)
	}
}
