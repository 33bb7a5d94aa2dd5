package progress

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/backmassage/fftrim/internal/timecode"
)

// MissingOutputSentinel is the last line ffmpeg prints when invoked with
// inputs only. Reading stops there.
const MissingOutputSentinel = "At least one output file must be specified"

var reInputDuration = regexp.MustCompile(`Duration: (\d{2}:\d{2}:\d{2}(?:\.\d+)?)`)

// SumDurations reads newline-delimited lines from r until a line containing
// sentinel (or EOF) and returns the sum of every "Duration:" value seen.
// An invocation with several inputs reports one Duration line per input, and
// all of them are added together.
func SumDurations(r io.Reader, sentinel string) (float64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxChunkSize)

	var total float64
	for sc.Scan() {
		line := sc.Text()
		if m := reInputDuration.FindStringSubmatch(line); m != nil {
			if secs, err := timecode.ClockToSeconds(m[1]); err == nil {
				total += secs
			}
		}
		if sentinel != "" && strings.Contains(line, sentinel) {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return total, nil
}
