package config

import (
	"fmt"
	"net/url"
	"strings"

	http "github.com/wesleyorama2/tracehttp/internal/http"
)

// maxConnectTimeout is the largest accepted connect budget, in seconds.
const maxConnectTimeout = 3600

// ValidationError represents a request file validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors joins several validation errors into one error.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	parts := make([]string, len(ve))
	for i, e := range ve {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// ValidateRequestFile checks what can be checked before any I/O happens.
// Unknown methods are not an error; they fall back to GET.
func ValidateRequestFile(file *RequestFile) []ValidationError {
	var errors []ValidationError

	if file.Req.URL == "" {
		errors = append(errors, ValidationError{
			Path:    "req.url",
			Message: "url is required",
		})
	} else if !strings.Contains(file.Req.URL, "{{") {
		u, err := url.Parse(file.Req.URL)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, ValidationError{
				Path:    "req.url",
				Message: fmt.Sprintf("not an absolute http or https url: %s", file.Req.URL),
			})
		}
	}

	for i, h := range file.Req.Headers {
		if h.Enabled && strings.TrimSpace(h.Key) == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("req.headers[%d].key", i),
				Message: "header name cannot be empty",
			})
		}
	}

	for i, q := range file.Req.Query {
		if q.Enabled && q.Key == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("req.query[%d].key", i),
				Message: "query key cannot be empty",
			})
		}
	}

	errors = append(errors, ValidateTimeout(file.Timeout)...)

	for i, path := range file.Extract {
		if path == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("extract[%d]", i),
				Message: "extract path cannot be empty",
			})
		}
	}

	return errors
}

// ValidateTimeout checks the connect budget of a request file or payload.
func ValidateTimeout(timeout *http.Timeout) ValidationErrors {
	if timeout == nil || timeout.Connect <= maxConnectTimeout {
		return nil
	}
	return ValidationErrors{{
		Path:    "timeout.connect",
		Message: fmt.Sprintf("must be at most %d seconds", maxConnectTimeout),
	}}
}
