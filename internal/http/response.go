package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"

	"github.com/wesleyorama2/tracehttp/internal/timing"
)

// Response is the result of one traced exchange.
type Response struct {
	URL     string              `json:"url" yaml:"url"`
	Latency uint32              `json:"latency" yaml:"latency"`
	Status  uint16              `json:"status" yaml:"status"`
	Headers map[string][]string `json:"headers" yaml:"headers"`
	Body    string              `json:"body" yaml:"body"`
	Length  uint64              `json:"length" yaml:"length"`
	Stats   timing.Stats        `json:"stats" yaml:"stats"`

	// Cookies holds the raw Set-Cookie values. It is not serialized.
	Cookies []string `json:"-" yaml:"-"`
}

// Header returns the first value of the named header, or "".
func (r *Response) Header(key string) string {
	values := r.Headers[strings.ToLower(key)]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// BodyJSON unmarshals the body into v.
func (r *Response) BodyJSON(v interface{}) error {
	return json.Unmarshal([]byte(r.Body), v)
}

// IsSuccess returns true if the response status code is in the 2xx range
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// IsRedirect returns true if the response status code is in the 3xx range
func (r *Response) IsRedirect() bool {
	return r.Status >= 300 && r.Status < 400
}

// IsClientError returns true if the response status code is in the 4xx range
func (r *Response) IsClientError() bool {
	return r.Status >= 400 && r.Status < 500
}

// IsServerError returns true if the response status code is in the 5xx range
func (r *Response) IsServerError() bool {
	return r.Status >= 500 && r.Status < 600
}

// readResponse drains httpResp, marks the end of the exchange on clock and
// snapshots the timings.
func readResponse(httpResp *http.Response, clock *timing.Clock) (*Response, error) {
	defer httpResp.Body.Close()

	headers := make(map[string][]string, len(httpResp.Header))
	for name, values := range httpResp.Header {
		for _, v := range values {
			if !utf8.ValidString(v) {
				return nil, newError(KindEncoding, "header value", fmt.Errorf("header %q is not valid UTF-8", name))
			}
		}
		key := strings.ToLower(name)
		headers[key] = append(headers[key], values...)
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, newError(KindIO, "read body", err)
	}
	decoded, err := decodeBody(raw, headers["content-encoding"])
	if err != nil {
		return nil, newError(KindEncoding, "decode body", err)
	}
	clock.Mark(timing.Done)

	var length uint64
	if httpResp.ContentLength > 0 {
		length = uint64(httpResp.ContentLength)
	}

	stats := clock.Stats()
	return &Response{
		URL:     httpResp.Request.URL.String(),
		Latency: stats.Total,
		Status:  uint16(httpResp.StatusCode),
		Headers: headers,
		Body:    strings.ToValidUTF8(string(decoded), "\uFFFD"),
		Length:  length,
		Stats:   stats,
		Cookies: append([]string(nil), headers["set-cookie"]...),
	}, nil
}

// decodeBody undoes the listed content codings, last applied first.
// Unknown codings leave the body as received.
func decodeBody(body []byte, encodings []string) ([]byte, error) {
	var codings []string
	for _, v := range encodings {
		for _, c := range strings.Split(v, ",") {
			if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
				codings = append(codings, c)
			}
		}
	}
	if len(body) == 0 {
		return body, nil
	}

	for i := len(codings) - 1; i >= 0; i-- {
		var r io.Reader
		switch codings[i] {
		case "gzip", "x-gzip":
			zr, err := gzip.NewReader(bytes.NewReader(body))
			if err != nil {
				return nil, err
			}
			r = zr
		case "br":
			r = brotli.NewReader(bytes.NewReader(body))
		case "identity":
			continue
		default:
			return body, nil
		}
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		body = out
	}
	return body, nil
}
