package display

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/backmassage/fftrim/internal/term"
	"github.com/backmassage/fftrim/internal/timecode"
)

// Renderer shows encode progress. Start is called once before any Update,
// Finish once after the last.
type Renderer interface {
	Start(total float64, label string)
	Update(elapsed float64)
	Finish()
}

// NewRenderer returns a progress bar when out is a terminal and a line
// renderer that reports every tenth otherwise.
func NewRenderer(out *os.File) Renderer {
	if term.IsTerminal(out) {
		return &BarRenderer{out: out}
	}
	return &LineRenderer{out: out}
}

// BarRenderer draws a terminal progress bar scaled in milliseconds of media
// time. With an unknown total it shows a spinner.
type BarRenderer struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func (r *BarRenderer) Start(total float64, label string) {
	max := int64(-1)
	if total > 0 {
		max = int64(math.Round(total * 1000))
	}
	r.bar = progressbar.NewOptions64(max,
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetDescription(label),
		progressbar.OptionEnableColorCodes(term.Enabled()),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(r.out) }),
	)
}

func (r *BarRenderer) Update(elapsed float64) {
	if r.bar == nil {
		return
	}
	_ = r.bar.Set64(int64(math.Round(elapsed * 1000)))
}

func (r *BarRenderer) Finish() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
}

// NewLineRenderer returns a renderer that writes plain progress lines to w.
func NewLineRenderer(w io.Writer) *LineRenderer {
	return &LineRenderer{out: w}
}

// LineRenderer writes one line per completed tenth of the total, or one
// line per minute of media time when the total is unknown.
type LineRenderer struct {
	out   io.Writer
	total float64
	label string
	last  int
	seen  float64
}

func (r *LineRenderer) Start(total float64, label string) {
	r.total = total
	r.label = label
	r.last = 0
	r.seen = 0
}

func (r *LineRenderer) Update(elapsed float64) {
	r.seen = elapsed
	if r.total <= 0 {
		if m := int(elapsed / 60); m > r.last {
			r.last = m
			fmt.Fprintf(r.out, "%s %s\n", r.label, timecode.Format(elapsed))
		}
		return
	}
	step := int(Percent(elapsed, r.total) / 10)
	if step > r.last && step < 10 {
		r.last = step
		fmt.Fprintf(r.out, "%s %3d%% (%s / %s)\n", r.label, step*10,
			timecode.Format(elapsed), timecode.Format(r.total))
	}
}

func (r *LineRenderer) Finish() {
	if r.total > 0 {
		fmt.Fprintf(r.out, "%s 100%% (%s)\n", r.label, timecode.Format(r.total))
		return
	}
	fmt.Fprintf(r.out, "%s done (%s)\n", r.label, timecode.Format(r.seen))
}
