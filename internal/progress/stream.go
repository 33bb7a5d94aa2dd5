package progress

import (
	"bufio"
	"bytes"
	"io"
	"iter"
	"regexp"

	"github.com/backmassage/fftrim/internal/timecode"
)

// maxChunkSize bounds a single undelimited chunk. The pre-progress banner is
// newline-separated and arrives as one chunk, so this is well above the
// scanner default.
const maxChunkSize = 1 << 20

var reProgressTime = regexp.MustCompile(`time=(\d{2}:\d{2}:\d{2}(?:\.\d+)?)`)

// EndReason describes why a [Stream] stopped producing events.
type EndReason int

const (
	EndNone      EndReason = iota // Still producing.
	EndExhausted                  // Underlying reader reached EOF.
	EndMarker                     // A non-progress chunk followed progress.
)

func (r EndReason) String() string {
	switch r {
	case EndExhausted:
		return "exhausted"
	case EndMarker:
		return "end-of-progress"
	default:
		return "running"
	}
}

// Stream is a forward-only sequence of elapsed-seconds values read from an
// ffmpeg stderr stream. It is not safe for concurrent use.
type Stream struct {
	scanner *bufio.Scanner
	started bool
	end     EndReason
	err     error
}

// NewStream wraps r. Nothing is read until the first call to Next.
func NewStream(r io.Reader) *Stream {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxChunkSize)
	sc.Split(ScanCarriageReturns)
	return &Stream{scanner: sc}
}

// Next returns the next elapsed time in seconds. It returns io.EOF once the
// stream has ended, either because the reader is exhausted or because a
// non-progress chunk followed progress. Any other error comes from the
// underlying reader. After Next returns an error, every later call returns
// the same error without reading.
func (s *Stream) Next() (float64, error) {
	if s.err != nil {
		return 0, s.err
	}

	for s.scanner.Scan() {
		m := reProgressTime.FindSubmatch(s.scanner.Bytes())
		if m == nil {
			if s.started {
				return 0, s.finish(EndMarker, io.EOF)
			}
			continue
		}

		secs, err := timecode.ClockToSeconds(string(m[1]))
		if err != nil {
			// The pattern guarantees a valid clock; treat a failure like a miss.
			if s.started {
				return 0, s.finish(EndMarker, io.EOF)
			}
			continue
		}
		s.started = true
		return secs, nil
	}

	if err := s.scanner.Err(); err != nil {
		return 0, s.finish(EndNone, err)
	}
	return 0, s.finish(EndExhausted, io.EOF)
}

func (s *Stream) finish(reason EndReason, err error) error {
	s.end = reason
	s.err = err
	return err
}

// Started reports whether at least one progress value has been produced.
func (s *Stream) Started() bool { return s.started }

// Ended reports why the stream stopped, or EndNone while it is still open
// (or stopped on a read error).
func (s *Stream) Ended() EndReason { return s.end }

// All returns an iterator over the remaining events. The iteration ends
// cleanly on io.EOF; a read error is yielded once as the final pair.
// Breaking out of the loop leaves the stream where it stopped.
func (s *Stream) All() iter.Seq2[float64, error] {
	return func(yield func(float64, error) bool) {
		for {
			secs, err := s.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(0, err)
				return
			}
			if !yield(secs, nil) {
				return
			}
		}
	}
}

// ScanCarriageReturns is a bufio.SplitFunc that yields '\r'-terminated
// chunks without the delimiter. The final undelimited chunk is returned at
// EOF.
func ScanCarriageReturns(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\r'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
