package planner

import (
	"fmt"
	"math"
	"sort"

	"github.com/backmassage/fftrim/internal/probe"
)

// NewTrimPlan validates req against the probed media and resolves it into
// a TrimPlan.
//
// Flow:
//  0. Require a video stream when the probe listed streams
//  1. Check the time range (non-negative, start ≤ end, start inside the file)
//  2. Resolve the trimmed duration (end or probed duration, minus start)
//  3. Derive the video bitrate from the target size
//  4. Validate weights against the probed audio tracks and classify them
//
// vd may carry no streams when it came from the duration fallback; weights
// are then taken on trust.
func NewTrimPlan(req Request, vd *probe.VideoData) (*TrimPlan, error) {
	plan := &TrimPlan{
		InputPath:  req.InputPath,
		OutputPath: req.OutputPath,
		Loudnorm:   req.Loudnorm,
		ExtraArgs:  append([]string(nil), req.ExtraArgs...),
	}

	if vd != nil && len(vd.Streams) > 0 && !vd.HasVideo() {
		return nil, &PreconditionError{"input", "no video stream to keep"}
	}

	// --- 1. Time range ---
	if req.Start != nil {
		if !finite(*req.Start) {
			return nil, &PreconditionError{"start", fmt.Sprintf("%g is not a finite time", *req.Start)}
		}
		if *req.Start < 0 {
			return nil, &PreconditionError{"start", fmt.Sprintf("%g is negative", *req.Start)}
		}
		s := *req.Start
		plan.Start = &s
	}
	if req.End != nil {
		if !finite(*req.End) {
			return nil, &PreconditionError{"end", fmt.Sprintf("%g is not a finite time", *req.End)}
		}
		if *req.End < 0 {
			return nil, &PreconditionError{"end", fmt.Sprintf("%g is negative", *req.End)}
		}
		e := *req.End
		plan.End = &e
	}
	if plan.Start != nil && plan.End != nil && *plan.Start > *plan.End {
		return nil, &PreconditionError{"time range", fmt.Sprintf("start %g is after end %g", *plan.Start, *plan.End)}
	}

	total := 0.0
	if vd != nil {
		total = vd.DurationSeconds
	}
	if plan.Start != nil && total > 0 && *plan.Start >= total {
		return nil, &PreconditionError{"start", fmt.Sprintf("%g is past the end of the input (%g)", *plan.Start, total)}
	}

	// --- 2. Duration ---
	plan.Duration = trimmedDuration(plan.Start, plan.End, total)

	// --- 3. Bitrate ---
	if req.TargetSize > 0 {
		if plan.Duration <= 0 {
			return nil, &PreconditionError{"target size", "duration is unknown or zero"}
		}
		plan.Bitrate = TargetBitrate(req.TargetSize, plan.Duration)
	}

	// --- 4. Audio ---
	if req.Weights == nil {
		plan.Audio = DefaultPolicy(vd)
		return plan, nil
	}
	if err := checkWeights(req.Weights, vd); err != nil {
		return nil, err
	}
	plan.Audio = ClassifyWeights(req.Weights)
	return plan, nil
}

// TargetBitrate returns the bits/sec needed to fit sizeBytes into
// durationSeconds, rounded down.
func TargetBitrate(sizeBytes int64, durationSeconds float64) int64 {
	if sizeBytes <= 0 || durationSeconds <= 0 {
		return 0
	}
	return int64(math.Floor(float64(sizeBytes) * 8 / durationSeconds))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func trimmedDuration(start, end *float64, total float64) float64 {
	from := 0.0
	if start != nil {
		from = *start
	}
	to := total
	if end != nil && (total <= 0 || *end < total) {
		to = *end
	}
	if to <= from {
		return 0
	}
	return to - from
}

func checkWeights(weights map[int]float64, vd *probe.VideoData) error {
	tracks := make([]int, 0, len(weights))
	for t := range weights {
		tracks = append(tracks, t)
	}
	sort.Ints(tracks)

	known := -1
	if vd != nil && len(vd.Streams) > 0 {
		known = len(vd.AudioStreams())
	}
	for _, t := range tracks {
		w := weights[t]
		if !finite(w) || w < 0 {
			return &PreconditionError{"weights", fmt.Sprintf("track %d weight %g must be a finite non-negative number", t, w)}
		}
		if t < 0 {
			return &PreconditionError{"weights", fmt.Sprintf("track %d does not exist", t)}
		}
		if known >= 0 && t >= known {
			return &PreconditionError{"weights", fmt.Sprintf("track %d does not exist (input has %d audio tracks)", t, known)}
		}
	}
	return nil
}
