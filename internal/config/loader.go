package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	http "github.com/wesleyorama2/tracehttp/internal/http"
)

// FileFormat is the encoding of a request file.
type FileFormat string

const (
	FormatJSON FileFormat = "json"
	FormatYAML FileFormat = "yaml"
	FormatTOML FileFormat = "toml"
)

// RequestFile is a request saved to disk together with its timeout and the
// checks to run on the response.
type RequestFile struct {
	Req         http.RequestSpec  `json:"req" yaml:"req" toml:"req"`
	Timeout     *http.Timeout     `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	Environment map[string]string `json:"environment,omitempty" yaml:"environment,omitempty" toml:"environment,omitempty"`
	Extract     []string          `json:"extract,omitempty" yaml:"extract,omitempty" toml:"extract,omitempty"`
	Schema      string            `json:"schema,omitempty" yaml:"schema,omitempty" toml:"schema,omitempty"`
}

// FormatFromPath picks the decoder from the file extension. Unknown
// extensions are read as JSON.
func FormatFromPath(path string) FileFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// LoadRequestFile loads and validates a request file.
func LoadRequestFile(path string) (*RequestFile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("request file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading request file: %w", err)
	}

	file, err := ParseRequestFile(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("error parsing request file %s: %w", path, err)
	}

	if file.Schema != "" && !filepath.IsAbs(file.Schema) {
		file.Schema = filepath.Join(GetConfigDir(path), file.Schema)
	}

	if errs := ValidateRequestFile(file); len(errs) > 0 {
		return nil, fmt.Errorf("request file validation failed: %w", ValidationErrors(errs))
	}
	return file, nil
}

// ParseRequestFile decodes data. The document is either {req, timeout, ...}
// or a bare request.
func ParseRequestFile(data []byte, format FileFormat) (*RequestFile, error) {
	var file RequestFile
	if err := decode(data, format, &file); err != nil {
		return nil, err
	}
	if file.Req.URL != "" {
		return &file, nil
	}

	var bare http.RequestSpec
	if err := decode(data, format, &bare); err != nil {
		return nil, err
	}
	if bare.URL != "" {
		file.Req = bare
	}
	return &file, nil
}

func decode(data []byte, format FileFormat, v interface{}) error {
	switch format {
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	case FormatTOML:
		return toml.NewDecoder(bytes.NewReader(data)).Decode(v)
	default:
		return json.Unmarshal(data, v)
	}
}

// Resolve substitutes the environment into the request and returns it.
func (f *RequestFile) Resolve(overrides map[string]string) *http.RequestSpec {
	env := MergeEnvironments(f.Environment, overrides)
	req := f.Req
	req.URL = ProcessEnvironment(req.URL, env)
	req.Body = ProcessEnvironment(req.Body, env)
	req.Headers = processEntries(req.Headers, env)
	req.Query = processEntries(req.Query, env)
	return &req
}

func processEntries(entries []http.KeyValue, env map[string]string) []http.KeyValue {
	if entries == nil {
		return nil
	}
	out := make([]http.KeyValue, len(entries))
	for i, e := range entries {
		out[i] = http.KeyValue{
			Key:     ProcessEnvironment(e.Key, env),
			Value:   ProcessEnvironment(e.Value, env),
			Enabled: e.Enabled,
		}
	}
	return out
}

// ProcessEnvironment replaces {{name}} placeholders in input.
func ProcessEnvironment(input string, env map[string]string) string {
	result := input
	for key, value := range env {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// MergeEnvironments merges two environments, with the second taking precedence
func MergeEnvironments(base, override map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range override {
		result[key] = value
	}
	return result
}

// GetConfigDir returns the directory containing the config file
func GetConfigDir(configPath string) string {
	return filepath.Dir(configPath)
}
