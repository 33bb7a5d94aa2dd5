// Package timecode converts between user-facing time strings and seconds.
//
// Three input forms are accepted by [Parse]:
//   - unit form: "5h2m20.5s", "90s", "1m"
//   - clock form: "01:02:03.5", "02:03", "00:00:00"
//   - bare seconds: "90", "12.25"
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse converts a user-supplied timestamp into seconds. It dispatches to
// [ClockToSeconds] when the value contains a colon, [HMSToSeconds] when it
// contains a unit letter, and otherwise treats the value as plain seconds.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	switch {
	case strings.Contains(s, ":"):
		return ClockToSeconds(s)
	case strings.ContainsAny(s, "hmsHMS"):
		return HMSToSeconds(s)
	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || !valid(v) {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		return v, nil
	}
}

// ClockToSeconds parses "HH:MM:SS[.fraction]" (or "MM:SS[.fraction]") into
// seconds, preserving the fractional part. "01:02:03.5" is 3723.5.
func ClockToSeconds(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}

	var total float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || !valid(v) {
			return 0, fmt.Errorf("invalid clock time %q", s)
		}
		// Only the last field may carry a fraction.
		if i < len(parts)-1 && strings.Contains(p, ".") {
			return 0, fmt.Errorf("invalid clock time %q", s)
		}
		total = total*60 + v
	}
	return total, nil
}

// HMSToSeconds parses the unit form "5h2m20.5s" into seconds. Each unit may
// appear at most once; missing units count as zero. A trailing number
// without a unit is read as seconds.
func HMSToSeconds(s string) (float64, error) {
	var (
		total   float64
		current strings.Builder
		seen    = map[rune]bool{}
	)
	for _, c := range strings.ToLower(strings.TrimSpace(s)) {
		if (c >= '0' && c <= '9') || c == '.' {
			current.WriteRune(c)
			continue
		}

		var scale float64
		switch c {
		case 'h':
			scale = 3600
		case 'm':
			scale = 60
		case 's':
			scale = 1
		default:
			return 0, fmt.Errorf("unexpected timestamp unit %q in %q", c, s)
		}
		if seen[c] {
			return 0, fmt.Errorf("duplicate timestamp unit %q in %q", c, s)
		}
		seen[c] = true

		v, err := parseField(current.String())
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		total += v * scale
		current.Reset()
	}

	if current.Len() > 0 {
		v, err := parseField(current.String())
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		total += v
	}
	return total, nil
}

func parseField(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if !valid(v) {
		return 0, fmt.Errorf("%q is not a finite non-negative number", s)
	}
	return v, nil
}

// valid rejects negative values along with NaN and ±Inf, which ParseFloat
// accepts as "nan", "inf" and "infinity".
func valid(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// Format renders seconds as "H:MM:SS" (or "M:SS" under an hour) for display.
func Format(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	sec := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
