package pipeline

import "time"

// RunStats describes a finished (or failed) trim.
type RunStats struct {
	InputBytes  int64
	OutputBytes int64
	Elapsed     time.Duration // Wall time of the encode.
	Events      int           // Progress events seen.
	LastElapsed float64       // Last reported media time, seconds.
}

// SpaceSaved returns the byte difference between input and output.
// Positive means the output is smaller.
func (s *RunStats) SpaceSaved() int64 {
	return s.InputBytes - s.OutputBytes
}

// Ratio returns output size as a whole percentage of input size, or 100
// when the input size is unknown.
func (s *RunStats) Ratio() int64 {
	if s.InputBytes <= 0 {
		return 100
	}
	return s.OutputBytes * 100 / s.InputBytes
}
