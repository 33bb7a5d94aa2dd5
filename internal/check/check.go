// Package check provides system diagnostics (--check mode) and pre-run
// dependency validation (CheckDeps) for ffmpeg, ffprobe and the audio
// filters a trim can use.
package check

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/fftrim/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found")
	ErrFfprobeNotFound = errors.New("ffprobe not found (duration fallback disabled)")
)

// requiredFilters are the ffmpeg filters the planner can emit.
var requiredFilters = []string{"amix", "loudnorm"}

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// toolVersion is the outcome of one -version query.
type toolVersion struct {
	name    string
	binary  string
	version string
	err     error
}

// RunCheck runs the interactive --check flow: versions of ffmpeg and
// ffprobe (queried concurrently), availability of the mix and loudness
// filters, and a short test encode. It returns an error only when ffmpeg
// itself is unusable.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) error {
	log.Info("=== System Check ===")

	versions := queryVersions(ctx, cfg.FFmpegPath, cfg.FFprobePath)
	for _, v := range versions {
		switch {
		case v.err != nil && v.name == "ffprobe" && cfg.DurationFallback:
			log.Warn("ffprobe unavailable (%v); durations will be read from ffmpeg output", v.err)
		case v.err != nil:
			log.Error("%s (%s): %v", v.name, v.binary, v.err)
		default:
			log.Success("%s: %s", v.name, v.version)
		}
	}
	if versions[0].err != nil {
		return fmt.Errorf("%w: %v", ErrFfmpegNotFound, versions[0].err)
	}

	checkFilters(ctx, cfg.FFmpegPath, log)
	checkTestEncode(ctx, cfg.FFmpegPath, log)
	return nil
}

// queryVersions runs "<tool> -version" for ffmpeg and ffprobe in parallel.
// The result is always [ffmpeg, ffprobe].
func queryVersions(ctx context.Context, ffmpeg, ffprobe string) []toolVersion {
	results := []toolVersion{
		{name: "ffmpeg", binary: ffmpeg},
		{name: "ffprobe", binary: ffprobe},
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := range results {
		g.Go(func() error {
			results[i].version, results[i].err = firstLine(gctx, results[i].binary, "-version")
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// firstLine runs binary with args and returns the first line of stdout.
func firstLine(ctx context.Context, binary string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, binary, args...).Output()
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(string(out))
	if idx := strings.Index(line, "\n"); idx > 0 {
		line = line[:idx]
	}
	return line, nil
}

// checkFilters verifies that every filter the planner emits is compiled in.
func checkFilters(ctx context.Context, ffmpeg string, log Logger) {
	out, err := exec.CommandContext(ctx, ffmpeg, "-hide_banner", "-filters").Output()
	if err != nil {
		log.Warn("Could not list filters: %v", err)
		return
	}
	for _, name := range MissingFilters(string(out), requiredFilters) {
		log.Error("ffmpeg filter %q not available", name)
	}
	log.Debug("checked filters: %s", strings.Join(requiredFilters, ", "))
}

// MissingFilters returns the names in want that do not appear as a filter
// name in "ffmpeg -filters" output.
func MissingFilters(listing string, want []string) []string {
	have := make(map[string]bool)
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		// " TSC amix  N->A  Audio mixing." : flags, name, io, description.
		if len(fields) >= 3 {
			have[fields[1]] = true
		}
	}
	var missing []string
	for _, name := range want {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// checkTestEncode mixes two generated tones through the same filter chain a
// weighted trim uses.
func checkTestEncode(ctx context.Context, ffmpeg string, log Logger) {
	log.Info("Testing audio mix...")
	if runSilent(ctx, ffmpeg, testEncodeArgs()...) {
		log.Success("amix + loudnorm works")
	} else {
		log.Error("audio mix test encode failed")
	}
}

func testEncodeArgs() []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "sine=frequency=440:duration=0.2",
		"-f", "lavfi", "-i", "sine=frequency=880:duration=0.2",
		"-filter_complex", "[0:a][1:a]amix=inputs=2:duration=longest:weights=1 0.5,loudnorm[aout]",
		"-map", "[aout]", "-f", "null", "-",
	}
}

// CheckDeps is the pre-run validation: ffmpeg must resolve, and ffprobe
// must resolve unless the duration fallback is enabled. Returns a sentinel
// error on failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath(cfg.FFprobePath); err != nil && !cfg.DurationFallback {
		return ErrFfprobeNotFound
	}
	return nil
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(ctx context.Context, name string, args ...string) bool {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
