// Package pipeline orchestrates one trim: probe (or duration fallback) →
// plan → build arguments → run ffmpeg → render progress → report stats.
// It also backs the "probe" subcommand ([Inspect]).
//
// External processes are reached through [Deps] so tests can substitute
// canned probe results and encoder output.
package pipeline
