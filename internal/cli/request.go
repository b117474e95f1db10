package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wesleyorama2/tracehttp/internal/config"
	tracehttp "github.com/wesleyorama2/tracehttp/internal/http"
)

// disabledPrefix marks a header or query entry that is kept in the request
// description but not sent.
const disabledPrefix = "!"

// requestFlags are the flags shared by do and the verb commands.
type requestFlags struct {
	method       string
	headers      []string
	query        []string
	data         string
	contentType  string
	file         string
	env          []string
	writeTimeout uint64
	readTimeout  uint64
	extract      []string
	schema       string
	repeat       int
	interval     time.Duration
	sharedClock  bool
	maxRedirects int
	verbose      bool
}

func (f *requestFlags) register(fs *pflag.FlagSet, withMethod bool) {
	if withMethod {
		fs.StringVarP(&f.method, "request", "X", "", "request method (default GET)")
	}
	fs.StringArrayVarP(&f.headers, "header", "H", nil, "header 'Name: value', prefix with ! to keep it disabled")
	fs.StringArrayVarP(&f.query, "query", "q", nil, "query parameter 'key=value', prefix with ! to keep it disabled")
	fs.StringVarP(&f.data, "data", "d", "", "request body")
	fs.StringVar(&f.contentType, "content-type", "", "declared content type of the body (display only, set a header to send one)")
	fs.StringVarP(&f.file, "file", "f", "", "request file (json, yaml or toml)")
	fs.StringArrayVarP(&f.env, "env", "e", nil, "value for a {{name}} placeholder in the request file, as name=value")
	fs.Uint64Var(&f.writeTimeout, "write-timeout", 0, "write budget in seconds (carried, not enforced)")
	fs.Uint64Var(&f.readTimeout, "read-timeout", 0, "read budget in seconds (carried, not enforced)")
	fs.StringArrayVar(&f.extract, "extract", nil, "JSON path to extract from the response body, e.g. $.data.id")
	fs.StringVar(&f.schema, "schema", "", "JSON schema file the response body must match")
	fs.IntVar(&f.repeat, "repeat", 1, "run the exchange N times and summarize the phases")
	fs.DurationVar(&f.interval, "interval", 0, "pause between repeated runs")
	fs.BoolVar(&f.sharedClock, "shared-clock", false, "record every exchange into one process-wide clock")
	fs.IntVar(&f.maxRedirects, "max-redirects", tracehttp.DefaultMaxRedirects, "redirects to follow, 0 returns the redirect itself")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show headers, bodies and disabled entries")
}

// exchangePlan is everything needed to run and check one request.
type exchangePlan struct {
	spec    *tracehttp.RequestSpec
	timeout *tracehttp.Timeout
	extract []string
	schema  string
}

// plan merges the request file, the positional URL and the flags. Flags win
// over the file; headers and query entries are appended to the file's.
func (f *requestFlags) plan(cmd *cobra.Command, args []string, connect uint64) (*exchangePlan, error) {
	p := &exchangePlan{spec: &tracehttp.RequestSpec{}}

	if f.file != "" {
		file, err := config.LoadRequestFile(f.file)
		if err != nil {
			return nil, err
		}
		env, err := parseAssignments(f.env)
		if err != nil {
			return nil, err
		}
		p.spec = file.Resolve(env)
		p.timeout = file.Timeout
		p.extract = append(p.extract, file.Extract...)
		p.schema = file.Schema
	}

	if len(args) > 0 {
		p.spec.URL = completeURL(args[0])
	}
	if p.spec.URL == "" {
		return nil, fmt.Errorf("a URL argument or a request file with a url is required")
	}
	if f.method != "" {
		p.spec.Method = f.method
	}
	if cmd.Flags().Changed("data") {
		p.spec.Body = f.data
	}
	if f.contentType != "" {
		p.spec.ContentType = f.contentType
	}

	for _, raw := range f.headers {
		kv, err := parseHeader(raw)
		if err != nil {
			return nil, err
		}
		p.spec.Headers = append(p.spec.Headers, kv)
	}
	for _, raw := range f.query {
		kv, err := parseQuery(raw)
		if err != nil {
			return nil, err
		}
		p.spec.Query = append(p.spec.Query, kv)
	}

	if p.timeout == nil {
		p.timeout = &tracehttp.Timeout{}
	}
	if connect > 0 {
		p.timeout.Connect = connect
	}
	if f.writeTimeout > 0 {
		p.timeout.Write = f.writeTimeout
	}
	if f.readTimeout > 0 {
		p.timeout.Read = f.readTimeout
	}

	p.extract = append(p.extract, f.extract...)
	if f.schema != "" {
		p.schema = f.schema
	}
	return p, nil
}

// parseHeader reads 'Name: value' or '!Name: value'.
func parseHeader(raw string) (tracehttp.KeyValue, error) {
	enabled, raw := splitDisabled(raw)
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return tracehttp.KeyValue{}, fmt.Errorf("invalid header %q, expected 'Name: value'", raw)
	}
	return tracehttp.KeyValue{
		Key:     strings.TrimSpace(parts[0]),
		Value:   strings.TrimSpace(parts[1]),
		Enabled: enabled,
	}, nil
}

// parseQuery reads 'key=value', 'key' or their disabled forms.
func parseQuery(raw string) (tracehttp.KeyValue, error) {
	enabled, raw := splitDisabled(raw)
	key, value, _ := strings.Cut(raw, "=")
	if key == "" {
		return tracehttp.KeyValue{}, fmt.Errorf("invalid query parameter %q, expected 'key=value'", raw)
	}
	return tracehttp.KeyValue{Key: key, Value: value, Enabled: enabled}, nil
}

func splitDisabled(raw string) (bool, string) {
	if strings.HasPrefix(raw, disabledPrefix) {
		return false, strings.TrimPrefix(raw, disabledPrefix)
	}
	return true, raw
}

// parseAssignments reads name=value pairs.
func parseAssignments(raw []string) (map[string]string, error) {
	env := make(map[string]string, len(raw))
	for _, r := range raw {
		name, value, ok := strings.Cut(r, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected name=value", r)
		}
		env[name] = value
	}
	return env, nil
}

// completeURL defaults a bare host or path to http.
func completeURL(raw string) string {
	if strings.Contains(raw, "://") {
		return raw
	}
	return "http://" + raw
}
