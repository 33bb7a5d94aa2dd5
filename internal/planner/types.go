package planner

import "fmt"

// Request carries the raw trim intent gathered from flags and config.
// Nil times mean "not given"; zero TargetSize means "no size target".
type Request struct {
	InputPath  string
	OutputPath string
	Start      *float64
	End        *float64
	TargetSize int64           // Bytes.
	Weights    map[int]float64 // Nil when no weights were given.
	Loudnorm   bool
	ExtraArgs  []string
}

// TrimPlan is the fully resolved set of parameters for one encode. It is
// produced by NewTrimPlan and not modified afterwards.
type TrimPlan struct {
	InputPath  string
	OutputPath string

	Start *float64 // Seconds; nil when not given.
	End   *float64 // Seconds; nil when not given.

	// Bitrate is the target video bitrate in bits/sec, 0 when unset.
	Bitrate int64

	Loudnorm bool
	Audio    AudioPolicy

	// ExtraArgs are appended after the audio arguments (config only).
	ExtraArgs []string

	// Duration is the length of the trimmed range in seconds, used for
	// progress percentages. 0 when unknown.
	Duration float64
}

// PreconditionError reports a request that violates the planner's input
// contract. It is not recoverable.
type PreconditionError struct {
	Field  string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
