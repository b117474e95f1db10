package check

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaResource = "schema.json"

// Violation is one place where a body breaks its schema.
type Violation struct {
	Location string `json:"location" yaml:"location"`
	Message  string `json:"message" yaml:"message"`
}

func (v Violation) String() string {
	loc := v.Location
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, v.Message)
}

// Schema is a compiled JSON Schema.
type Schema struct {
	schema *jsonschema.Schema
}

// CompileSchema compiles a schema document.
func CompileSchema(data []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResource, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	schema, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{schema: schema}, nil
}

// LoadSchema reads and compiles the schema at path.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading schema file: %w", err)
	}
	return CompileSchema(data)
}

// Validate checks body against s. A body that is not JSON is reported as a
// single violation at the root.
func (s *Schema) Validate(body string) []Violation {
	var doc interface{}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return []Violation{{Message: fmt.Sprintf("invalid JSON: %v", err)}}
	}

	err := s.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Violation{{Message: err.Error()}}
	}

	violations := collect(verr, nil)
	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Location < violations[j].Location
	})
	return violations
}

// collect flattens the cause tree, keeping the leaves.
func collect(err *jsonschema.ValidationError, out []Violation) []Violation {
	if len(err.Causes) == 0 {
		return append(out, Violation{Location: err.InstanceLocation, Message: err.Message})
	}
	for _, cause := range err.Causes {
		out = collect(cause, out)
	}
	return out
}
