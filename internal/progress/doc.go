// Package progress decodes ffmpeg's diagnostic stream into elapsed-seconds
// progress events.
//
// ffmpeg rewrites its status line in place by terminating each update with
// a carriage return. [Stream] splits the stream on '\r' and yields the
// "time=" value of each chunk on demand; the caller pulls one event at a
// time with [Stream.Next] or ranges over [Stream.All].
//
// Chunks that do not match are ignored until the first match (banner and
// configuration lines). After that, the first chunk without a "time=" value
// marks the end of progress and the stream stops reading.
//
// [SumDurations] is the fallback used when ffprobe is unavailable: it folds
// the "Duration:" lines ffmpeg prints for its inputs into one total.
package progress
