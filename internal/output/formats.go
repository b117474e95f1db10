package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/thediveo/enumflag/v2"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/tracehttp/internal/bench"
	"github.com/wesleyorama2/tracehttp/internal/check"
	http "github.com/wesleyorama2/tracehttp/internal/http"
)

// Format represents the available output formats
type Format enumflag.Flag

const (
	// FormatText is the default human-readable text format
	FormatText Format = iota
	// FormatJSON outputs the wire payloads as JSON
	FormatJSON
	// FormatYAML outputs the wire payloads as YAML
	FormatYAML
)

// FormatIds maps formats to their command line names.
var FormatIds = map[Format][]string{
	FormatText: {"text"},
	FormatJSON: {"json"},
	FormatYAML: {"yaml", "yml"},
}

func (f Format) String() string {
	if names, ok := FormatIds[f]; ok {
		return names[0]
	}
	return "unknown"
}

// ParseFormat resolves a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatText, nil
	}
	for f, names := range FormatIds {
		for _, n := range names {
			if n == s {
				return f, nil
			}
		}
	}
	return FormatText, fmt.Errorf("unknown output format %q", s)
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(req *http.RequestSpec) string
	FormatResponse(resp *http.Response) string
	FormatError(err error) string
	FormatReport(report *check.Report) string
	FormatSummary(summary *bench.Summary) string
}

// ErrorData is the serialized form of a failed exchange.
type ErrorData struct {
	Message  string `json:"message" yaml:"message"`
	Category string `json:"category" yaml:"category"`
}

// NewErrorData categorizes err. Errors that did not come from an exchange
// get the category "unknown".
func NewErrorData(err error) ErrorData {
	var herr *http.Error
	if errors.As(err, &herr) {
		return ErrorData{Message: herr.Error(), Category: herr.Category()}
	}
	return ErrorData{Message: err.Error(), Category: http.ErrorKind(0).String()}
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

func (f *JSONFormatter) marshal(v interface{}) string {
	var output []byte
	var err error
	if f.Pretty {
		output, err = json.MarshalIndent(v, "", "  ")
	} else {
		output, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf(`{"message":"failed to marshal output: %s","category":"unknown"}`, err)
	}
	return string(output)
}

// FormatRequest formats a request as JSON
func (f *JSONFormatter) FormatRequest(req *http.RequestSpec) string {
	return f.marshal(req)
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *http.Response) string {
	return f.marshal(resp)
}

// FormatError formats an error as {"message", "category"}.
func (f *JSONFormatter) FormatError(err error) string {
	return f.marshal(NewErrorData(err))
}

// FormatReport formats check results as JSON
func (f *JSONFormatter) FormatReport(report *check.Report) string {
	return f.marshal(report)
}

// FormatSummary formats a repeat summary as JSON
func (f *JSONFormatter) FormatSummary(summary *bench.Summary) string {
	return f.marshal(summary)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	Verbose bool
}

func (f *YAMLFormatter) marshal(v interface{}) string {
	output, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("message: failed to marshal output: %s\ncategory: unknown\n", err)
	}
	return string(output)
}

// FormatRequest formats a request as YAML
func (f *YAMLFormatter) FormatRequest(req *http.RequestSpec) string {
	return f.marshal(req)
}

// FormatResponse formats a response as YAML
func (f *YAMLFormatter) FormatResponse(resp *http.Response) string {
	return f.marshal(resp)
}

// FormatError formats an error as YAML
func (f *YAMLFormatter) FormatError(err error) string {
	return f.marshal(NewErrorData(err))
}

// FormatReport formats check results as YAML
func (f *YAMLFormatter) FormatReport(report *check.Report) string {
	return f.marshal(report)
}

// FormatSummary formats a repeat summary as YAML
func (f *YAMLFormatter) FormatSummary(summary *bench.Summary) string {
	return f.marshal(summary)
}

// GetFormatter returns the appropriate formatter for the given format
func GetFormatter(format Format, verbose bool, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		return NewFormatter(verbose, noColor)
	}
}
