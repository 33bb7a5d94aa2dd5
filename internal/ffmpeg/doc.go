// Package ffmpeg builds the trim command for a [planner.TrimPlan] and runs
// it, exposing the encoder's stderr as a progress stream.
//
//   - Build(plan) → []string: ordered argument vector (binary excluded).
//   - Start(ctx, opts, args) → *Encode: running encoder; Progress() pulls
//     elapsed seconds, Wait() reaps the process, Close() abandons it.
//   - errors.go: stderr classification for failed encodes.
package ffmpeg
