package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/backmassage/fftrim/internal/progress"
)

// Probe runs a single ffprobe JSON call against path and returns the
// validated result. There is no retry: a failed invocation fails the call.
func Probe(ctx context.Context, binary, path string) (*VideoData, error) {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-print_format", "json",
		"-show_streams", "-show_format",
		"--", path,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		reason := "ffprobe failed"
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			reason += " (" + msg + ")"
		}
		return nil, &ProbeError{Path: path, Reason: reason, Err: err}
	}

	vd, err := ParseJSON(out)
	if err != nil {
		var pe *ProbeError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return vd, nil
}

// ParseJSON converts raw ffprobe JSON output into validated VideoData.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*VideoData, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ProbeError{Reason: "parse ffprobe JSON", Err: err}
	}
	if err := validate(&raw); err != nil {
		return nil, err
	}
	return buildResult(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  *ffprobeFormat  `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename string          `json:"filename"`
	Duration json.RawMessage `json:"duration"`
}

type ffprobeStream struct {
	Index     *int   `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
}

// knownCodecTypes lists every codec_type ffprobe emits. Only video and audio
// are carried into VideoData; the rest are valid but not relevant to trimming.
var knownCodecTypes = map[string]bool{
	"video":      true,
	"audio":      true,
	"subtitle":   true,
	"data":       true,
	"attachment": true,
}

// --- Validation ---

// validate is a pure predicate over the decoded structure. Any invalid
// stream rejects the whole result.
func validate(raw *ffprobeOutput) error {
	if raw.Format == nil {
		return invalid("missing format section")
	}
	if _, err := parseDuration(raw.Format.Duration); err != nil {
		return err
	}

	seen := make(map[int]bool, len(raw.Streams))
	for i, s := range raw.Streams {
		if s.Index == nil {
			return invalid("stream #%d has no index", i)
		}
		idx := *s.Index
		if idx < 0 {
			return invalid("stream #%d has negative index %d", i, idx)
		}
		if seen[idx] {
			return invalid("duplicate stream index %d", idx)
		}
		seen[idx] = true

		if !knownCodecTypes[s.CodecType] {
			return invalid("stream %d has unrecognized type %q", idx, s.CodecType)
		}
		if isCarried(s.CodecType) && strings.TrimSpace(s.CodecName) == "" {
			return invalid("%s stream %d has no codec name", s.CodecType, idx)
		}
	}
	return nil
}

// parseDuration accepts ffprobe's string form ("12.345000") and a bare JSON
// number, and rejects anything that is not a finite non-negative value.
func parseDuration(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, invalid("missing duration")
	}

	text := string(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		text = s
	}

	d, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, invalid("duration %s is not a number", string(raw))
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0, invalid("duration %s is not a finite non-negative number", string(raw))
	}
	return d, nil
}

func isCarried(codecType string) bool {
	return codecType == string(StreamVideo) || codecType == string(StreamAudio)
}

// --- Conversion from wire types to domain types ---

func buildResult(raw *ffprobeOutput) *VideoData {
	d, _ := parseDuration(raw.Format.Duration)
	vd := &VideoData{DurationSeconds: d}
	for _, s := range raw.Streams {
		if !isCarried(s.CodecType) {
			continue
		}
		vd.Streams = append(vd.Streams, Stream{
			Index: *s.Index,
			Type:  StreamType(s.CodecType),
			Codec: s.CodecName,
		})
	}
	return vd
}

// DurationFromDiagnostics is the last-resort duration source for hosts
// without ffprobe. It runs "ffmpeg -i path" with no output, which makes
// ffmpeg print its input report and exit non-zero, and sums the reported
// durations. The exit status is ignored; a zero total is an error.
func DurationFromDiagnostics(ctx context.Context, ffmpegBinary, path string) (float64, error) {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, "-hide_banner", "-nostdin", "-i", path)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, &ProbeError{Path: path, Reason: "duration fallback", Err: err}
	}
	if err := cmd.Start(); err != nil {
		return 0, &ProbeError{Path: path, Reason: "duration fallback", Err: err}
	}

	total, readErr := progress.SumDurations(stderr, progress.MissingOutputSentinel)
	_ = cmd.Wait()
	if readErr != nil {
		return 0, &ProbeError{Path: path, Reason: "duration fallback", Err: readErr}
	}
	if total <= 0 {
		return 0, &ProbeError{Path: path, Reason: fmt.Sprintf("duration fallback: no duration reported by %s", ffmpegBinary)}
	}
	return total, nil
}
