package check

// Report gathers every check run against one response.
type Report struct {
	Extractions   []Extraction `json:"extractions,omitempty" yaml:"extractions,omitempty"`
	SchemaChecked bool         `json:"schemaChecked" yaml:"schemaChecked"`
	Violations    []Violation  `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// Run extracts paths from body and validates it against schema. schema may
// be nil.
func Run(body string, paths []string, schema *Schema) *Report {
	r := &Report{}
	if len(paths) > 0 {
		r.Extractions = ExtractAll(body, paths)
	}
	if schema != nil {
		r.SchemaChecked = true
		r.Violations = schema.Validate(body)
	}
	return r
}

// Passed reports whether every path was found and the schema held.
func (r *Report) Passed() bool {
	for _, e := range r.Extractions {
		if !e.Found {
			return false
		}
	}
	return len(r.Violations) == 0
}

// Empty reports whether no check was requested.
func (r *Report) Empty() bool {
	return len(r.Extractions) == 0 && !r.SchemaChecked
}
