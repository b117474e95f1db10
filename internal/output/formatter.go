package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"sort"
	"strings"

	"github.com/wesleyorama2/tracehttp/internal/bench"
	"github.com/wesleyorama2/tracehttp/internal/check"
	http "github.com/wesleyorama2/tracehttp/internal/http"
)

// Formatter is responsible for formatting HTTP requests and responses in text format
type Formatter struct {
	Verbose bool
	NoColor bool
	Width   int
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		Width:   waterfallWidth,
	}
}

func (f *Formatter) scheme() *ColorScheme {
	if f.NoColor {
		return NoColorScheme()
	}
	return DefaultColorScheme()
}

// FormatRequest formats a request description for display. Disabled entries
// are only shown in verbose mode.
func (f *Formatter) FormatRequest(req *http.RequestSpec) string {
	var buf strings.Builder
	scheme := f.scheme()

	target := req.URL
	if out, err := req.Normalize(); err == nil {
		target = out.URL.String()
	}
	buf.WriteString(fmt.Sprintf("▶ REQUEST: %s %s\n",
		scheme.Method.Sprint(http.ResolveMethod(req.Method)),
		scheme.URL.Sprint(target)))

	if headers := f.visible(req.Headers); len(headers) > 0 {
		buf.WriteString("  Headers:\n")
		for _, h := range headers {
			buf.WriteString(fmt.Sprintf("    %s: %s%s\n",
				scheme.HeaderKey.Sprint(h.Key), scheme.HeaderValue.Sprint(h.Value), disabledSuffix(h)))
		}
	}
	if f.Verbose {
		if query := f.visible(req.Query); len(query) > 0 {
			buf.WriteString("  Query:\n")
			for _, q := range query {
				buf.WriteString(fmt.Sprintf("    %s=%s%s\n", q.Key, q.Value, disabledSuffix(q)))
			}
		}
	}

	if req.Body != "" {
		buf.WriteString("  Body: ")
		buf.WriteString(formatJSONString(req.Body))
		buf.WriteString("\n")
	}

	return buf.String()
}

func (f *Formatter) visible(entries []http.KeyValue) []http.KeyValue {
	out := make([]http.KeyValue, 0, len(entries))
	for _, e := range entries {
		if e.Enabled || f.Verbose {
			out = append(out, e)
		}
	}
	return out
}

func disabledSuffix(e http.KeyValue) string {
	if e.Enabled {
		return ""
	}
	return " (disabled)"
}

// FormatResponse formats a response and its phase waterfall.
func (f *Formatter) FormatResponse(resp *http.Response) string {
	var buf strings.Builder
	scheme := f.scheme()

	statusColor := scheme.StatusError
	if resp.IsSuccess() {
		statusColor = scheme.StatusOK
	} else if resp.IsRedirect() {
		statusColor = scheme.StatusWarn
	}

	status := fmt.Sprintf("%d %s", resp.Status, nethttp.StatusText(int(resp.Status)))
	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s (%dms)\n", statusColor.Sprint(strings.TrimSpace(status)), resp.Latency))

	if resp.Stats.RemoteAddr != "" {
		conn := fmt.Sprintf("  Connected to %s", scheme.Highlight.Sprint(resp.Stats.RemoteAddr))
		if resp.Stats.IsHTTPS {
			conn += " over TLS"
			if resp.Stats.Cipher != "" {
				conn += " (" + resp.Stats.Cipher + ")"
			}
		}
		buf.WriteString(conn + "\n")
	}

	buf.WriteString("  Timing:\n")
	buf.WriteString(Waterfall(resp.Stats, f.Width, scheme))

	if f.Verbose {
		buf.WriteString("  Headers:\n")
		names := make([]string, 0, len(resp.Headers))
		for name := range resp.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			for _, value := range resp.Headers[name] {
				buf.WriteString(fmt.Sprintf("    %s: %s\n", scheme.HeaderKey.Sprint(name), scheme.HeaderValue.Sprint(value)))
			}
		}
	}

	if resp.Body != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(resp.Body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatError formats a failed exchange.
func (f *Formatter) FormatError(err error) string {
	return fmt.Sprintf("%s %v\n", ErrorIcon(f.NoColor), err)
}

// FormatReport formats extraction and schema results.
func (f *Formatter) FormatReport(report *check.Report) string {
	if report == nil || report.Empty() {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("  Checks:\n")
	for _, e := range report.Extractions {
		if e.Found {
			buf.WriteString(fmt.Sprintf("    %s %s = %s\n", SuccessIcon(f.NoColor), e.Path, e.Value))
		} else {
			buf.WriteString(fmt.Sprintf("    %s %s not found\n", ErrorIcon(f.NoColor), e.Path))
		}
	}
	if report.SchemaChecked {
		if len(report.Violations) == 0 {
			buf.WriteString(fmt.Sprintf("    %s body matches schema\n", SuccessIcon(f.NoColor)))
		}
		for _, v := range report.Violations {
			buf.WriteString(fmt.Sprintf("    %s schema: %s\n", ErrorIcon(f.NoColor), v))
		}
	}
	return buf.String()
}

// FormatSummary formats the phase distribution of a repeat run.
func (f *Formatter) FormatSummary(summary *bench.Summary) string {
	var buf strings.Builder
	scheme := f.scheme()

	buf.WriteString(fmt.Sprintf("◆ SUMMARY: %d runs, %d errors\n", summary.Runs, summary.Errors))
	if len(summary.Phases) == 0 {
		return buf.String()
	}
	buf.WriteString(scheme.Label.Sprintf("  %-*s %8s %8s %8s %8s %8s %8s\n",
		labelWidth, "Phase", "min", "mean", "p50", "p90", "p99", "max"))
	for _, p := range summary.Phases {
		buf.WriteString(fmt.Sprintf("  %-*s %6dms %6.1fms %6dms %6dms %6dms %6dms\n",
			labelWidth, PhaseLabel(p.Name), p.Min, p.Mean, p.P50, p.P90, p.P99, p.Max))
	}
	return buf.String()
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}
