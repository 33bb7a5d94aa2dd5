package check

import (
	"context"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/fftrim/internal/config"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) add(level, format string, args ...interface{}) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}
func (r *recordingLogger) Info(f string, a ...interface{})    { r.add("INFO", f, a...) }
func (r *recordingLogger) Success(f string, a ...interface{}) { r.add("SUCCESS", f, a...) }
func (r *recordingLogger) Warn(f string, a ...interface{})    { r.add("WARN", f, a...) }
func (r *recordingLogger) Error(f string, a ...interface{})   { r.add("ERROR", f, a...) }
func (r *recordingLogger) Debug(f string, a ...interface{})   { r.add("DEBUG", f, a...) }

const filterListing = `Filters:
  T.. = Timeline support
  ---
 ... acopy             A->A       Copy the input audio unchanged to the output.
 ..C amix              N->A       Audio mixing.
 ... anull             A->A       Pass the source unchanged to the output.
`

func TestMissingFilters(t *testing.T) {
	assert.Equal(t, []string{"loudnorm"}, MissingFilters(filterListing, []string{"amix", "loudnorm"}))
	assert.Empty(t, MissingFilters(filterListing, []string{"amix", "anull"}))
}

func TestCheckDeps(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FFmpegPath = "fftrim-test-missing-ffmpeg"
	assert.ErrorIs(t, CheckDeps(&cfg), ErrFfmpegNotFound)

	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	cfg.FFmpegPath = sh
	cfg.FFprobePath = "fftrim-test-missing-ffprobe"
	cfg.DurationFallback = true
	assert.NoError(t, CheckDeps(&cfg))

	cfg.DurationFallback = false
	assert.ErrorIs(t, CheckDeps(&cfg), ErrFfprobeNotFound)
}

func TestQueryVersions_MissingTools(t *testing.T) {
	got := queryVersions(context.Background(), "fftrim-test-missing-ffmpeg", "fftrim-test-missing-ffprobe")
	require.Len(t, got, 2)
	assert.Equal(t, "ffmpeg", got[0].name)
	assert.Equal(t, "ffprobe", got[1].name)
	assert.ErrorIs(t, got[0].err, exec.ErrNotFound)
	assert.ErrorIs(t, got[1].err, exec.ErrNotFound)
}

func TestRunCheck_NoFfmpeg(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FFmpegPath = "fftrim-test-missing-ffmpeg"
	cfg.FFprobePath = "fftrim-test-missing-ffprobe"
	log := &recordingLogger{}

	err := RunCheck(context.Background(), &cfg, log)
	assert.ErrorIs(t, err, ErrFfmpegNotFound)
	assert.Contains(t, log.lines[0], "System Check")
	assert.Contains(t, log.lines[1], "ERROR ffmpeg")
	assert.Contains(t, log.lines[2], "WARN ffprobe unavailable")
}

func TestRunCheck_RealFfmpeg(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	cfg := config.DefaultConfig()
	log := &recordingLogger{}
	require.NoError(t, RunCheck(context.Background(), &cfg, log))
	assert.Contains(t, log.lines[1], "SUCCESS ffmpeg")
}
