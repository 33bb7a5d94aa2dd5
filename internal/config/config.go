// Package config holds runtime configuration: defaults, the optional TOML
// config file, environment overrides, CLI flag binding and validation.
// Raw user strings (timestamps, sizes, weights) are kept as typed in and
// converted by [Config.Resolve].
package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/shlex"

	"github.com/backmassage/fftrim/internal/planner"
	"github.com/backmassage/fftrim/internal/timecode"
)

// Version is shown by --version and the banner; override at build time with
// -ldflags "-X github.com/backmassage/fftrim/internal/config.Version=...".
var Version = "1.0.0-dev"

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stderr is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig], then
// the config file, the environment and finally CLI flags (see [Load]).
// Fields without a toml tag name can only be set on the command line.
type Config struct {
	// Paths.
	Input  string `toml:"-"`
	Output string `toml:"-"`

	// Trim intent, unparsed.
	Start      string `toml:"-"` // 5h2m20.5s | 01:02:03.5 | 90
	End        string `toml:"-"`
	TargetSize string `toml:"-"` // 8M, 1.5GB, 700MiB
	Weights    string `toml:"-"` // Comma-separated, one per audio track.
	Dampen     bool   `toml:"dampen"`

	// External tools.
	FFmpegPath  string `toml:"ffmpeg"`  // Default: "ffmpeg".
	FFprobePath string `toml:"ffprobe"` // Default: "ffprobe".
	ExtraArgs   string `toml:"extra_args"`

	// DurationFallback allows reading the duration from ffmpeg's banner when
	// ffprobe is not installed. Default: true.
	DurationFallback bool `toml:"duration_fallback"`

	// Display and logging.
	Verbose    bool      `toml:"verbose"`
	ColorMode  ColorMode `toml:"color"`
	LogFile    string    `toml:"log_file"`
	CheckOnly  bool      `toml:"-"`
	ConfigPath string    `toml:"-"` // Empty means the default location.
}

// DefaultConfig returns the built-in defaults, the base before the config
// file, environment and flags are applied.
func DefaultConfig() Config {
	return Config{
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		DurationFallback: true,
		ColorMode:        ColorAuto,
	}
}

// Validate checks enum fields and, unless in CheckOnly mode, that input and
// output paths are present and distinct.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}
	if strings.TrimSpace(c.FFmpegPath) == "" {
		return errors.New("ffmpeg path must not be empty")
	}

	if c.CheckOnly {
		return nil
	}
	if c.Input == "" {
		return errors.New("need an input file (-i or first argument)")
	}
	if c.Output == "" {
		return errors.New("need an output file (-o)")
	}
	if filepath.Clean(c.Input) == filepath.Clean(c.Output) {
		return errors.New("output file must differ from input file")
	}
	return nil
}

// Resolve converts the raw trim settings into a planner request.
func (c *Config) Resolve() (planner.Request, error) {
	req := planner.Request{
		InputPath:  c.Input,
		OutputPath: c.Output,
		Loudnorm:   c.Dampen,
	}

	var err error
	if req.Start, err = parseOptionalTime(c.Start, "start"); err != nil {
		return req, err
	}
	if req.End, err = parseOptionalTime(c.End, "end"); err != nil {
		return req, err
	}
	if req.TargetSize, err = ParseTargetSize(c.TargetSize); err != nil {
		return req, err
	}
	if req.Weights, err = ParseWeights(c.Weights); err != nil {
		return req, err
	}
	if req.ExtraArgs, err = ParseExtraArgs(c.ExtraArgs); err != nil {
		return req, err
	}
	return req, nil
}

func parseOptionalTime(raw, name string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	secs, err := timecode.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s time: %w", name, err)
	}
	return &secs, nil
}

// ParseTargetSize parses a human byte size ("8M", "1.5GB", "700MiB"). SI
// suffixes are powers of 1000, IEC suffixes powers of 1024. Empty means no
// target and returns 0.
func ParseTargetSize(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid target size %q: %w", raw, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("invalid target size %q: must be greater than zero", raw)
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("invalid target size %q: too large", raw)
	}
	return int64(n), nil
}

// ParseWeights parses a comma-separated weight list ("1,0,0.5") into a
// mapping of audio ordinal to weight. Empty input returns nil, meaning the
// default audio policy applies.
func ParseWeights(raw string) (map[int]float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	list := make([]float64, len(parts))
	for i, p := range parts {
		w, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q at position %d (use numbers, e.g. 1,0,0.5)", p, i+1)
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("invalid weight %q at position %d: must be a finite non-negative number", p, i+1)
		}
		list[i] = w
	}
	return planner.WeightsFromList(list), nil
}

// ParseExtraArgs splits the configured extra encoder arguments with shell
// quoting rules.
func ParseExtraArgs(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	args, err := shlex.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid extra_args %q: %w", raw, err)
	}
	return args, nil
}
