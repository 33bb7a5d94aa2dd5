// Package probe provides ffprobe-based media inspection. A single JSON call
// per file yields a validated [VideoData]: the container duration plus the
// index, type and codec of every video and audio stream.
//
// Validation is all-or-nothing. A metadata object with one bad stream entry
// is rejected as a whole rather than trimmed down to its good entries.
//
// When ffprobe is not installed, [DurationFromDiagnostics] recovers just the
// duration from ffmpeg's own input report.
package probe
