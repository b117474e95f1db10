package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

// AcceptEncoding is sent on every request whatever the caller asked for.
const AcceptEncoding = "gzip, br"

// DefaultConnectTimeout bounds an exchange when no connect budget is given.
const DefaultConnectTimeout = 10 * time.Second

// KeyValue is one header or query entry. Disabled entries stay in the
// request description but never reach the wire.
type KeyValue struct {
	Key     string `json:"key" yaml:"key" toml:"key"`
	Value   string `json:"value" yaml:"value" toml:"value"`
	Enabled bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
}

// RequestSpec is the raw description of one request.
type RequestSpec struct {
	Method      string     `json:"method" yaml:"method" toml:"method"`
	URL         string     `json:"url" yaml:"url" toml:"url"`
	Body        string     `json:"body" yaml:"body" toml:"body"`
	ContentType string     `json:"contentType" yaml:"contentType" toml:"contentType"`
	Headers     []KeyValue `json:"headers" yaml:"headers" toml:"headers"`
	Query       []KeyValue `json:"query" yaml:"query" toml:"query"`
}

// Timeout carries per-phase budgets in seconds.
//
// Only Connect is enforced, and it bounds the whole exchange rather than the
// connect phase alone. Write and Read are accepted so request payloads round
// trip, but nothing enforces them.
type Timeout struct {
	Connect uint64 `json:"connect" yaml:"connect" toml:"connect"`
	Write   uint64 `json:"write" yaml:"write" toml:"write"`
	Read    uint64 `json:"read" yaml:"read" toml:"read"`
}

// maxBudgetSeconds is the largest connect budget a time.Duration can hold.
const maxBudgetSeconds = uint64(math.MaxInt64 / int64(time.Second))

// ConnectBudget returns the deadline for the exchange. A nil timeout or a
// zero connect budget means DefaultConnectTimeout. Budgets too large for a
// time.Duration are clamped to the largest one it can hold.
func (t *Timeout) ConnectBudget() time.Duration {
	if t == nil || t.Connect == 0 {
		return DefaultConnectTimeout
	}
	if t.Connect > maxBudgetSeconds {
		return time.Duration(maxBudgetSeconds) * time.Second
	}
	return time.Duration(t.Connect) * time.Second
}

// NewRequest creates a request description with no headers or query.
func NewRequest(method, rawURL string) *RequestSpec {
	return &RequestSpec{
		Method: method,
		URL:    rawURL,
	}
}

// WithHeader adds an enabled header entry.
func (r *RequestSpec) WithHeader(key, value string) *RequestSpec {
	r.Headers = append(r.Headers, KeyValue{Key: key, Value: value, Enabled: true})
	return r
}

// WithQueryParam adds an enabled query entry.
func (r *RequestSpec) WithQueryParam(key, value string) *RequestSpec {
	r.Query = append(r.Query, KeyValue{Key: key, Value: value, Enabled: true})
	return r
}

// WithBody sets the raw body and its declared content type.
func (r *RequestSpec) WithBody(body, contentType string) *RequestSpec {
	r.Body = body
	r.ContentType = contentType
	return r
}

var standardMethods = map[string]string{
	"GET":     http.MethodGet,
	"POST":    http.MethodPost,
	"PUT":     http.MethodPut,
	"DELETE":  http.MethodDelete,
	"HEAD":    http.MethodHead,
	"OPTIONS": http.MethodOptions,
	"CONNECT": http.MethodConnect,
	"PATCH":   http.MethodPatch,
	"TRACE":   http.MethodTrace,
}

// ResolveMethod matches m case-insensitively against the standard verbs.
// Anything else is GET.
func ResolveMethod(m string) string {
	if method, ok := standardMethods[strings.ToUpper(strings.TrimSpace(m))]; ok {
		return method
	}
	return http.MethodGet
}

// Outbound is the canonical request that goes on the wire.
type Outbound struct {
	Method string
	URL    *url.URL
	Header http.Header
	Body   []byte
}

// Normalize applies the enabled entries of r and validates them.
func (r *RequestSpec) Normalize() (*Outbound, error) {
	u, err := url.Parse(strings.TrimSpace(r.URL))
	if err != nil {
		return nil, newError(KindURL, "parse url", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, newError(KindURL, "parse url", fmt.Errorf("%q is not an absolute URL", r.URL))
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return nil, newError(KindURL, "parse url", fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	appendQuery(u, r.Query)

	header := make(http.Header)
	for _, h := range r.Headers {
		if !h.Enabled {
			continue
		}
		if !httpguts.ValidHeaderFieldName(h.Key) {
			return nil, newError(KindHeader, "header name", fmt.Errorf("invalid header name %q", h.Key))
		}
		if !httpguts.ValidHeaderFieldValue(h.Value) {
			return nil, newError(KindHeader, "header value", fmt.Errorf("invalid value for header %q", h.Key))
		}
		header.Set(h.Key, h.Value)
	}
	header.Set("Accept-Encoding", AcceptEncoding)

	out := &Outbound{
		Method: ResolveMethod(r.Method),
		URL:    u,
		Header: header,
	}
	if r.Body != "" {
		out.Body = []byte(r.Body)
	}
	return out, nil
}

// appendQuery adds the enabled params after any query already in u, in the
// order given. url.Values would sort them.
func appendQuery(u *url.URL, params []KeyValue) {
	var b strings.Builder
	b.WriteString(u.RawQuery)
	for _, p := range params {
		if !p.Enabled {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	u.RawQuery = b.String()
}

// Build creates the net/http request bound to ctx.
func (o *Outbound) Build(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if len(o.Body) > 0 {
		body = bytes.NewReader(o.Body)
	}
	req, err := http.NewRequestWithContext(ctx, o.Method, o.URL.String(), body)
	if err != nil {
		return nil, newError(KindURL, "build request", err)
	}
	req.Header = o.Header.Clone()
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
		req.Header.Del("Host")
	}
	// An empty value keeps net/http from adding its own User-Agent.
	if _, ok := req.Header["User-Agent"]; !ok {
		req.Header["User-Agent"] = []string{""}
	}
	return req, nil
}
