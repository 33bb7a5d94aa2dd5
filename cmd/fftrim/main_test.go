package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/fftrim/internal/config"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvNoColor, "1")
	t.Chdir(t.TempDir())
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "-V")
	assert.Equal(t, 0, code)
	assert.Equal(t, "fftrim v"+config.Version+"\n", out)
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no output", []string{"in.mkv"}, "need an output file"},
		{"no input", []string{"-o", "out.mp4"}, "need an input file"},
		{"unknown flag", []string{"--bogus"}, "unknown flag"},
		{"too many args", []string{"a.mkv", "b.mkv"}, "accepts at most 1 arg"},
		{"probe without file", []string{"probe"}, "accepts 1 arg"},
		{"same file", []string{"-i", "a.mkv", "-o", "a.mkv"}, "must differ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			code, _, errOut := runCLI(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, errOut, tt.want)
			assert.Contains(t, errOut, "Usage:")
		})
	}
}

func TestRun_BadConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "c.toml")
	require.NoError(t, os.WriteFile(path, []byte("ffmpeg = ["), 0o644))

	code, _, errOut := runCLI(t, "--config", path, "-o", "out.mp4", "in.mkv")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "parse config")
	assert.NotContains(t, errOut, "Usage:")
}

func TestRun_MissingFfmpeg(t *testing.T) {
	isolate(t)
	code, _, _ := runCLI(t, "--ffmpeg", "fftrim-test-missing-ffmpeg", "-o", "out.mp4", "in.mkv")
	assert.Equal(t, 1, code)
}
