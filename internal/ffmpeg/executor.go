package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/backmassage/fftrim/internal/progress"
)

// tailSize bounds the stderr kept for error reporting.
const tailSize = 16 << 10

// Options configures an encoder run.
type Options struct {
	Binary string    // Default: "ffmpeg".
	Echo   io.Writer // When set, raw stderr is copied here as it is read.
}

// Encode is a running ffmpeg process. Progress must be consumed (or Close
// called) before Wait returns.
type Encode struct {
	cmd    *exec.Cmd
	args   []string
	cancel context.CancelFunc
	stderr io.ReadCloser
	tail   *tailBuffer
	sink   io.Writer // tail, plus Echo when set
	stream *progress.Stream

	waitOnce sync.Once
	waitErr  error
}

// Start launches ffmpeg with args. The process is killed when ctx is
// cancelled or Close is called.
func Start(ctx context.Context, opts Options, args []string) (*Encode, error) {
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = nil

	pipe, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}

	tail := &tailBuffer{max: tailSize}
	var sink io.Writer = tail
	if opts.Echo != nil {
		sink = io.MultiWriter(tail, opts.Echo)
	}

	return &Encode{
		cmd:    cmd,
		args:   args,
		cancel: cancel,
		stderr: pipe,
		tail:   tail,
		sink:   sink,
		stream: progress.NewStream(io.TeeReader(pipe, sink)),
	}, nil
}

// Progress returns the stream of elapsed seconds decoded from stderr.
func (e *Encode) Progress() *progress.Stream { return e.stream }

// Close abandons the encode: the process is killed and reaped.
func (e *Encode) Close() error {
	e.cancel()
	return e.Wait()
}

// Wait drains what is left of stderr, waits for the process to exit and
// returns an *EncodeError when it failed.
func (e *Encode) Wait() error {
	e.waitOnce.Do(func() {
		// Remaining output goes to the same sink as the progress reads so
		// the process never blocks on a full pipe after progress ends.
		_, _ = io.Copy(e.sink, e.stderr)
		err := e.cmd.Wait()
		e.cancel()
		if err != nil {
			e.waitErr = &EncodeError{Args: e.args, Tail: e.tail.String(), Err: err}
		}
	})
	return e.waitErr
}

// Stderr returns the most recent stderr output.
func (e *Encode) Stderr() string { return e.tail.String() }

// EncodeError reports a failed ffmpeg run with the end of its stderr.
type EncodeError struct {
	Args []string
	Tail string
	Err  error
}

func (e *EncodeError) Error() string {
	msg := "ffmpeg failed: " + e.Err.Error()
	if hint := Classify(e.Tail); hint != "" {
		msg += " (" + hint + ")"
	}
	return msg
}

func (e *EncodeError) Unwrap() error { return e.Err }

// ExitCode returns the process exit code, or -1 when it did not exit normally.
func (e *EncodeError) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// LastLines returns up to n trailing non-empty stderr lines. Carriage
// returns are treated as line breaks so status updates appear one per line.
func (e *EncodeError) LastLines(n int) []string {
	return lastLines(e.Tail, n)
}

func lastLines(s string, n int) []string {
	s = strings.ReplaceAll(s, "\r", "\n")
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
