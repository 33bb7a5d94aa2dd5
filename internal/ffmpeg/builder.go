package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/fftrim/internal/planner"
)

// Fixed trailing flags: keep ffmpeg at info level with level prefixes so the
// status line is printed, and overwrite the output without asking.
var trailerArgs = []string{"-loglevel", "level+info", "-y"}

// mixLabel is the filter graph output pad for merged audio.
const mixLabel = "[aout]"

// Build constructs the complete ffmpeg argument slice for a trim. Groups are
// appended in a fixed order so later flags can override earlier ones where
// ffmpeg's own precedence applies.
func Build(plan *planner.TrimPlan) []string {
	args := make([]string, 0, 24)

	// --- Input ---
	args = append(args, "-i", plan.InputPath)

	// --- Range (output seeking, after -i) ---
	if plan.Start != nil && *plan.Start != 0 {
		args = append(args, "-ss", formatNumber(*plan.Start))
	}
	if plan.End != nil {
		args = append(args, "-to", formatNumber(*plan.End))
	}

	// --- Loudness normalization (single track; mixes fold it into the graph) ---
	if plan.Loudnorm {
		if _, ok := plan.Audio.(planner.SingleTrack); ok {
			args = append(args, "-af", "loudnorm")
		}
	}

	// --- Video bitrate ---
	if plan.Bitrate > 0 {
		args = append(args, "-b:v", strconv.FormatInt(plan.Bitrate, 10))
	}

	// --- Audio policy ---
	args = appendAudioArgs(args, plan)

	// --- Extra args from config ---
	args = append(args, plan.ExtraArgs...)

	// --- Diagnostics and overwrite ---
	args = append(args, trailerArgs...)

	// --- Output ---
	args = append(args, plan.OutputPath)

	return args
}

// appendAudioArgs adds the stream maps and filters for the audio policy.
func appendAudioArgs(args []string, plan *planner.TrimPlan) []string {
	switch p := plan.Audio.(type) {
	case planner.SingleTrack:
		args = append(args, "-map", "0:V:0", "-map", fmt.Sprintf("0:a:%d", p.Track))
		if !plan.Loudnorm {
			args = append(args, "-c:a", "copy")
		}
		return args

	case planner.MixTracks:
		graph := MixGraph(p.Tracks, nil, plan.Loudnorm)
		return append(args, "-filter_complex", graph, "-map", "0:V:0", "-map", mixLabel)

	case planner.WeightedMix:
		tracks := make([]int, len(p.Tracks))
		weights := make([]float64, len(p.Tracks))
		for i, tw := range p.Tracks {
			tracks[i] = tw.Track
			weights[i] = tw.Weight
		}
		graph := MixGraph(tracks, weights, plan.Loudnorm)
		return append(args, "-filter_complex", graph, "-map", "0:V:0", "-map", mixLabel)

	default: // planner.NoAudio or unset
		return append(args, "-map", "0:V:0", "-an")
	}
}

// MixGraph renders an amix filter graph over the given audio ordinals, e.g.
//
//	[0:a:0][0:a:2]amix=inputs=2:duration=longest:weights=1 0.5[aout]
//
// weights, when non-nil, must be positionally aligned with tracks.
func MixGraph(tracks []int, weights []float64, loudnorm bool) string {
	var b strings.Builder
	for _, t := range tracks {
		fmt.Fprintf(&b, "[0:a:%d]", t)
	}
	fmt.Fprintf(&b, "amix=inputs=%d:duration=longest", len(tracks))
	if weights != nil {
		parts := make([]string, len(weights))
		for i, w := range weights {
			parts[i] = formatNumber(w)
		}
		b.WriteString(":weights=" + strings.Join(parts, " "))
	}
	if loudnorm {
		b.WriteString(",loudnorm")
	}
	b.WriteString(mixLabel)
	return b.String()
}

// Quote renders args for logging with every element double-quoted.
func Quote(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, strconv.Quote(binary))
	for _, a := range args {
		parts = append(parts, strconv.Quote(a))
	}
	return strings.Join(parts, " ")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
