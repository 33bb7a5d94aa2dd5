// Package planner turns user intent into a validated [TrimPlan] that the
// ffmpeg package renders into an argument vector.
//
// Audio handling is an [AudioPolicy] sum type derived from per-track
// weights by [ClassifyWeights]:
//   - NoAudio: every weight is zero (or there are none).
//   - SingleTrack: exactly one non-zero weight; the track is stream-copied.
//   - MixTracks: two or more equal non-zero weights; unweighted amix.
//   - WeightedMix: two or more non-zero weights, not all equal; weighted amix.
package planner
