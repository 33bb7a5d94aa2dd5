package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/fftrim/internal/config"
	"github.com/backmassage/fftrim/internal/display"
	"github.com/backmassage/fftrim/internal/ffmpeg"
	"github.com/backmassage/fftrim/internal/logging"
	"github.com/backmassage/fftrim/internal/planner"
	"github.com/backmassage/fftrim/internal/probe"
	"github.com/backmassage/fftrim/internal/progress"
	"github.com/backmassage/fftrim/internal/timecode"
)

// stderrLines is how much encoder output is logged after a failure.
const stderrLines = 20

// Encoder is a running encode as seen by the pipeline.
type Encoder interface {
	Progress() *progress.Stream
	Wait() error
	Close() error
}

// Deps are the external collaborators of a run.
type Deps struct {
	Probe    func(ctx context.Context, ffprobe, path string) (*probe.VideoData, error)
	Fallback func(ctx context.Context, ffmpegBin, path string) (float64, error)
	Start    func(ctx context.Context, opts ffmpeg.Options, args []string) (Encoder, error)
	Renderer display.Renderer
	Echo     io.Writer // Receives raw ffmpeg stderr when non-nil.
}

// DefaultDeps runs the real ffprobe/ffmpeg and renders progress to stderr.
func DefaultDeps() Deps {
	return Deps{
		Probe:    probe.Probe,
		Fallback: probe.DurationFromDiagnostics,
		Start: func(ctx context.Context, opts ffmpeg.Options, args []string) (Encoder, error) {
			return ffmpeg.Start(ctx, opts, args)
		},
		Renderer: display.NewRenderer(os.Stderr),
	}
}

// Run performs one trim described by cfg: validate → probe → plan →
// execute → stats. A failed encode removes the partial output file.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, deps Deps) (RunStats, error) {
	var stats RunStats

	// --- Validate ---
	fi, err := os.Stat(cfg.Input)
	if err != nil {
		return stats, fmt.Errorf("input: %w", err)
	}
	if fi.IsDir() {
		return stats, fmt.Errorf("input %s is a directory", cfg.Input)
	}
	stats.InputBytes = fi.Size()
	if !IsMediaPath(cfg.Output) {
		log.Warn("Output %s has no recognized media extension; ffmpeg may not pick a container", filepath.Base(cfg.Output))
	}

	req, err := cfg.Resolve()
	if err != nil {
		return stats, err
	}

	// --- Probe ---
	vd, err := acquire(ctx, cfg, log, deps)
	if err != nil {
		return stats, err
	}
	logSource(log, cfg.Input, fi.Size(), vd)

	// --- Plan ---
	plan, err := planner.NewTrimPlan(req, vd)
	if err != nil {
		return stats, err
	}
	logPlan(log, plan)

	args := ffmpeg.Build(plan)
	log.Command(ffmpeg.Quote(cfg.FFmpegPath, args))

	if err := os.MkdirAll(filepath.Dir(cfg.Output), 0o755); err != nil {
		return stats, fmt.Errorf("create output directory: %w", err)
	}

	// --- Execute ---
	start := time.Now()
	enc, err := deps.Start(ctx, ffmpeg.Options{Binary: cfg.FFmpegPath, Echo: deps.Echo}, args)
	if err != nil {
		return stats, err
	}

	readErr := consume(ctx, enc, deps.Renderer, plan.Duration, &stats)
	var waitErr error
	if ctx.Err() != nil {
		waitErr = enc.Close()
	} else {
		waitErr = enc.Wait()
	}
	stats.Elapsed = time.Since(start)

	if err := firstErr(ctx.Err(), waitErr, readErr); err != nil {
		_ = os.Remove(cfg.Output)
		logFailure(log, err)
		return stats, err
	}

	// --- Stats ---
	if outInfo, err := os.Stat(cfg.Output); err == nil {
		stats.OutputBytes = outInfo.Size()
	}
	if stats.Events == 0 {
		log.Warn("ffmpeg reported no progress")
	}
	log.Success("Trimmed in %s: %s (%d%% of original, %s)",
		stats.Elapsed.Round(time.Second), display.FormatBytes(stats.OutputBytes), stats.Ratio(),
		display.FormatBytesWithSign(-stats.SpaceSaved()))
	return stats, nil
}

// acquire probes the input. When ffprobe is not installed and the fallback
// is allowed, only the duration is read from ffmpeg's banner; the stream
// layout is then unknown.
func acquire(ctx context.Context, cfg *config.Config, log *logging.Logger, deps Deps) (*probe.VideoData, error) {
	vd, err := deps.Probe(ctx, cfg.FFprobePath, cfg.Input)
	if err == nil {
		return vd, nil
	}
	if !toolMissing(err) || !cfg.DurationFallback {
		return nil, err
	}

	log.Warn("ffprobe not found; reading duration from ffmpeg output")
	dur, ferr := deps.Fallback(ctx, cfg.FFmpegPath, cfg.Input)
	if ferr != nil {
		return nil, fmt.Errorf("duration fallback: %w", ferr)
	}
	return &probe.VideoData{DurationSeconds: dur}, nil
}

// toolMissing reports whether err means the probe binary could not be run
// at all, as opposed to failing on the input.
func toolMissing(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// consume pulls progress events into the renderer until the stream ends or
// ctx is cancelled. It returns the stream's read error, if any.
func consume(ctx context.Context, enc Encoder, r display.Renderer, total float64, stats *RunStats) error {
	r.Start(total, "Trimming")
	defer r.Finish()

	for elapsed, err := range enc.Progress().All() {
		if err != nil {
			return fmt.Errorf("read ffmpeg output: %w", err)
		}
		stats.Events++
		stats.LastElapsed = elapsed
		r.Update(elapsed)
		if ctx.Err() != nil {
			return nil
		}
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// --- Logging helpers ---

func logSource(log *logging.Logger, path string, size int64, vd *probe.VideoData) {
	log.Info("Input: %s (%s, %s)", filepath.Base(path), display.FormatBytes(size),
		display.FormatSeconds(vd.DurationSeconds))
	if len(vd.Streams) == 0 {
		log.Debug("Stream layout unknown")
		return
	}
	for _, s := range vd.Streams {
		log.Debug("  Stream #%d: %s (%s)", s.Index, s.Type, s.Codec)
	}
}

func logPlan(log *logging.Logger, plan *planner.TrimPlan) {
	rangeLabel := "full length"
	if plan.Start != nil || plan.End != nil {
		from, to := "start", "end"
		if plan.Start != nil {
			from = timecode.Format(*plan.Start)
		}
		if plan.End != nil {
			to = timecode.Format(*plan.End)
		}
		rangeLabel = from + " -> " + to
	}
	log.Info("Range: %s (%s)", rangeLabel, display.FormatSeconds(plan.Duration))

	if plan.Bitrate > 0 {
		log.Info("Video bitrate: %s", display.FormatBitrate(plan.Bitrate))
	}
	log.Info("Audio: %s", describeAudio(plan.Audio, plan.Loudnorm))
	log.Info("Output: %s", plan.OutputPath)
}

// describeAudio summarizes a policy for the log.
func describeAudio(p planner.AudioPolicy, loudnorm bool) string {
	var s string
	switch a := p.(type) {
	case planner.SingleTrack:
		s = fmt.Sprintf("track %d", a.Track)
		if !loudnorm {
			s += " (copy)"
		}
	case planner.MixTracks:
		s = fmt.Sprintf("mix of tracks %s", joinInts(a.Tracks))
	case planner.WeightedMix:
		parts := make([]string, len(a.Tracks))
		for i, tw := range a.Tracks {
			parts[i] = fmt.Sprintf("%d×%g", tw.Track, tw.Weight)
		}
		s = "weighted mix " + strings.Join(parts, ", ")
	default:
		return "none"
	}
	if loudnorm {
		s += ", loudness normalized"
	}
	return s
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

func logFailure(log *logging.Logger, err error) {
	var encErr *ffmpeg.EncodeError
	if !errors.As(err, &encErr) {
		return
	}
	lines := encErr.LastLines(stderrLines)
	if len(lines) == 0 {
		return
	}
	log.Error("Last ffmpeg output:")
	for _, l := range lines {
		log.Error("  %s", l)
	}
}
