package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/backmassage/fftrim/internal/config"
	"github.com/backmassage/fftrim/internal/display"
	"github.com/backmassage/fftrim/internal/logging"
)

// Inspect probes cfg.Input and prints its duration and stream table to w.
// It uses the same fallback rules as Run.
func Inspect(ctx context.Context, cfg *config.Config, log *logging.Logger, deps Deps, w io.Writer) error {
	fi, err := os.Stat(cfg.Input)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}

	vd, err := acquire(ctx, cfg, log, deps)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s\n", filepath.Base(cfg.Input))
	fmt.Fprintf(w, "  Size:     %s\n", display.FormatBytes(fi.Size()))
	fmt.Fprintf(w, "  Duration: %s (%.3fs)\n", display.FormatSeconds(vd.DurationSeconds), vd.DurationSeconds)
	if len(vd.Streams) == 0 {
		fmt.Fprintln(w, "  Streams:  unknown (ffprobe unavailable)")
		return nil
	}
	fmt.Fprintf(w, "  Audio:    %d track(s)\n", len(vd.AudioStreams()))
	if !vd.HasVideo() {
		log.Warn("No video stream found")
	}
	fmt.Fprintln(w, display.StreamTable(vd))
	return nil
}
