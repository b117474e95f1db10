package check

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSchema = `{
	"type": "object",
	"required": ["id", "name"],
	"properties": {
		"id": {"type": "integer"},
		"name": {"type": "string"}
	}
}`

func TestSchema_Validate(t *testing.T) {
	schema, err := CompileSchema([]byte(userSchema))
	require.NoError(t, err)

	assert.Empty(t, schema.Validate(`{"id": 1, "name": "ada"}`))

	got := schema.Validate(`{"id": "one"}`)
	require.Len(t, got, 2)
	assert.Equal(t, "", got[0].Location)
	assert.Contains(t, got[0].Message, "name")
	assert.Equal(t, "/id", got[1].Location)
}

func TestSchema_ValidateNonJSON(t *testing.T) {
	schema, err := CompileSchema([]byte(userSchema))
	require.NoError(t, err)

	got := schema.Validate("not json")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "invalid JSON")
	assert.Equal(t, "/: "+got[0].Message, got[0].String())
}

func TestCompileSchema_Invalid(t *testing.T) {
	_, err := CompileSchema([]byte(`{"type": 12}`))
	assert.Error(t, err)

	_, err = CompileSchema([]byte(`{`))
	assert.Error(t, err)
}

func TestLoadSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	require.NoError(t, os.WriteFile(path, []byte(userSchema), 0o600))

	schema, err := LoadSchema(path)
	require.NoError(t, err)
	assert.Empty(t, schema.Validate(`{"id": 2, "name": "b"}`))

	_, err = LoadSchema(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	schema, err := CompileSchema([]byte(userSchema))
	require.NoError(t, err)

	report := Run(`{"id": 1, "name": "ada"}`, []string{"$.name"}, schema)
	want := &Report{
		Extractions:   []Extraction{{Path: "$.name", Value: "ada", Found: true}},
		SchemaChecked: true,
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, report.Passed())
	assert.False(t, report.Empty())

	failed := Run(`{"id": 1}`, []string{"$.missing"}, schema)
	assert.False(t, failed.Passed())

	assert.True(t, Run("{}", nil, nil).Empty())
}
