package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/tracehttp/internal/diag"
)

func TestRoot_Help(t *testing.T) {
	out, err := runCLI(t)
	require.NoError(t, err)
	for _, name := range []string{"do", "get", "post", "put", "patch", "delete", "head", "serve"} {
		assert.Contains(t, out, name)
	}
}

func TestRoot_InvalidOutputFlag(t *testing.T) {
	_, err := runCLI(t, "get", "-o", "junit", "http://127.0.0.1:1/")
	assert.Error(t, err)
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	_, err := runCLI(t, "get", "--log-level", "loud", "http://127.0.0.1:1/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestRoot_OutputFromEnvironment(t *testing.T) {
	srv, _ := newTarget(t, nil)
	t.Setenv("TRACEHTTP_OUTPUT", "json")

	out, err := runCLI(t, "get", srv.URL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"), out)
	assert.Equal(t, uint16(200), decodeResponse(t, out).Status)
}

func TestRoot_ConfigFile(t *testing.T) {
	srv, _ := newTarget(t, nil)
	path := filepath.Join(t.TempDir(), "tracehttp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: yaml\n"), 0o644))

	out, err := runCLI(t, "--config", path, "get", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "status: 200")

	// the flag wins over the file
	out, err = runCLI(t, "--config", path, "-o", "json", "get", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, uint16(200), decodeResponse(t, out).Status)
}

func TestRoot_MissingConfigFile(t *testing.T) {
	_, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "get", "http://127.0.0.1:1/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestServe_StopsWithContext(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"serve", "--addr", "127.0.0.1:0"})
	assert.NoError(t, cmd.ExecuteContext(ctx))
}

func TestRoot_TraceEvents(t *testing.T) {
	srv, _ := newTarget(t, nil)
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(func() { diag.Logger().SetOutput(io.Discard) })

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"get", "--trace-events", "--no-color", srv.URL})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, errOut.String(), "connecting to")
	assert.Contains(t, errOut.String(), "received first response byte")
	assert.NotContains(t, out.String(), "connecting to")
}
