package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	config, err := parseConfig([]byte(`
engine: tdewolff
sourcemap: true
logLevel: warning
outdir: dist
timing: false
`))
	require.NoError(t, err)
	assert.Equal(t, "tdewolff", config.Engine)
	require.NotNil(t, config.Sourcemap)
	assert.True(t, *config.Sourcemap)
	assert.Equal(t, "warning", config.LogLevel)
	assert.Equal(t, "dist", config.Outdir)
	require.NotNil(t, config.Timing)
	assert.False(t, *config.Timing)
	assert.Nil(t, config.Color)
	assert.Nil(t, config.NoMinify)
}

func TestParseConfigInvalid(t *testing.T) {
	_, err := parseConfig([]byte("engine: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "esminify.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("engine: nonsense\nlogLevel: silent\n"), 0644))

	// The bad engine from the config is never used because the flag wins
	opts := transformFlags{}
	cmd := newTransformCmd(&opts)
	cmd.SetArgs([]string{"--config", configPath, "--engine", "esbuild", "--no-minify"})
	cmd.SetIn(bytesReader("foo()"))
	out := captureOutput(cmd)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "esbuild", opts.engine)
	assert.Equal(t, "silent", opts.logLevel)
	assert.Equal(t, "foo()\n", out.String())
}
