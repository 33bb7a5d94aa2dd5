package probe

import "fmt"

// ProbeError reports ffprobe output that could not be run, decoded or
// validated. It is fatal for the file: no encode is attempted.
type ProbeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ProbeError) Error() string {
	msg := "probe"
	if e.Path != "" {
		msg += fmt.Sprintf(" %q", e.Path)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProbeError) Unwrap() error { return e.Err }

func invalid(format string, args ...any) *ProbeError {
	return &ProbeError{Reason: "invalid video data: " + fmt.Sprintf(format, args...)}
}
