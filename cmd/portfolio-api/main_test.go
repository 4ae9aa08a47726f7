package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_TRACING_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "ERROR")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "portfolio-api dev")
}

func TestUnknownProject(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.yaml")
	_, err := run(t, "metrics", "--config", missing, "--project", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown project 9")
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, "trades", "--config", filepath.Join("testdata", "invalid.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}
