package display

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/backmassage/fftrim/internal/timecode"
)

// FormatBytes returns a human-readable IEC size ("512 B", "1.5 KiB", "700 MiB").
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatBytesWithSign prefixes with + or - for delta display (e.g. "- 1.2 GiB").
func FormatBytesWithSign(bytes int64) string {
	sign := ""
	if bytes > 0 {
		sign = "+ "
	} else if bytes < 0 {
		sign = "- "
		bytes = -bytes
	}
	return sign + FormatBytes(bytes)
}

// FormatBitrate returns a short label for a bitrate in bits/sec
// (e.g. "800 kbps", "1.2 Mbps").
func FormatBitrate(bps int64) string {
	kbps := bps / 1000
	if kbps < 1000 {
		return fmt.Sprintf("%d kbps", kbps)
	}
	return fmt.Sprintf("%.1f Mbps", float64(kbps)/1000)
}

// FormatSeconds renders media time as H:MM:SS or M:SS, or "unknown" for a
// non-positive duration.
func FormatSeconds(secs float64) string {
	if secs <= 0 {
		return "unknown"
	}
	return timecode.Format(secs)
}

// Percent returns elapsed as a percentage of total, clamped to [0, 100].
// It returns -1 when total is unknown.
func Percent(elapsed, total float64) float64 {
	if total <= 0 {
		return -1
	}
	p := elapsed / total * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
