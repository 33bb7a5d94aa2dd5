package config

// This file binds CLI flags with pflag. Flags are grouped into trim,
// tools, display and utility. Negated flags (--no-color) are applied after
// parsing so config file and environment values hold unless a flag is set.

import (
	"fmt"

	"github.com/spf13/pflag"
)

// FlagState holds flag values that are applied to a Config after parsing
// rather than bound to a field directly.
type FlagState struct {
	forceColor  bool
	noColor     bool
	ShowVersion bool
}

// BindTrimFlags registers the trim flags: input, output, range, size,
// weights and dampen.
func BindTrimFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Input, "input", "i", cfg.Input, "Input file (or first argument)")
	fs.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output file")
	fs.StringVarP(&cfg.Start, "start", "s", cfg.Start, "Start time (5h2m20.5s | 01:02:03.5 | 90)")
	fs.StringVarP(&cfg.End, "end", "e", cfg.End, "End time")
	fs.StringVarP(&cfg.TargetSize, "target-size", "t", cfg.TargetSize, "Target output size (8M, 500k, 1.5GB, 700MiB)")
	fs.StringVarP(&cfg.Weights, "weights", "w", cfg.Weights, "Per-audio-track weights, e.g. 1,0,0.5")
	fs.BoolVarP(&cfg.Dampen, "dampen", "d", cfg.Dampen, "Loudness normalization (loudnorm)")
	fs.BoolVarP(&cfg.CheckOnly, "check", "c", cfg.CheckOnly, "Run system diagnostics and exit")
}

// BindGlobalFlags registers flags shared by every command: tool paths,
// config file, logging and color. The returned state must be passed to
// [ApplyFlagState] after parsing.
func BindGlobalFlags(fs *pflag.FlagSet, cfg *Config) *FlagState {
	st := &FlagState{}
	defineToolFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, st)
	defineUtilityFlags(fs, st)
	return st
}

// defineToolFlags registers --ffmpeg, --ffprobe and --config.
func defineToolFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "ffmpeg binary")
	fs.StringVar(&cfg.FFprobePath, "ffprobe", cfg.FFprobePath, "ffprobe binary")
	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "TOML config file (default $XDG_CONFIG_HOME/fftrim/config.toml)")
}

// defineDisplayFlags registers --color, --no-color, --verbose and --log.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config, st *FlagState) {
	fs.BoolVar(&st.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&st.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output (echo ffmpeg diagnostics)")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
}

// defineUtilityFlags registers -V/--version.
func defineUtilityFlags(fs *pflag.FlagSet, st *FlagState) {
	fs.BoolVarP(&st.ShowVersion, "version", "V", false, "Print version and exit")
}

// ApplyFlagState copies negated flag values into cfg. --no-color wins over
// --color.
func ApplyFlagState(cfg *Config, st *FlagState) {
	if st.noColor {
		cfg.ColorMode = ColorNever
	} else if st.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// ApplyPositional sets Input from the first positional argument when -i was
// not given.
func ApplyPositional(cfg *Config, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	if len(args) == 1 {
		if cfg.Input != "" && cfg.Input != args[0] {
			return fmt.Errorf("input given twice (%q and %q)", cfg.Input, args[0])
		}
		cfg.Input = args[0]
	}
	return nil
}

// Load builds the effective configuration for a parsed flag set: defaults,
// then the config file named by --config (or the default location), then
// dotenvPath and the environment, then every flag the user actually set.
func Load(parsed *pflag.FlagSet, dotenvPath string) (*Config, *FlagState, error) {
	cfg := DefaultConfig()
	if f := parsed.Lookup("config"); f != nil {
		cfg.ConfigPath = f.Value.String()
	}

	if _, err := LoadFile(&cfg, cfg.ConfigPath); err != nil {
		return nil, nil, err
	}
	if err := ApplyEnv(&cfg, dotenvPath); err != nil {
		return nil, nil, err
	}

	// Re-bind onto the layered config and replay only changed flags so
	// unset flags do not clobber file or environment values.
	overlay := pflag.NewFlagSet("overlay", pflag.ContinueOnError)
	BindTrimFlags(overlay, &cfg)
	st := BindGlobalFlags(overlay, &cfg)

	var setErr error
	parsed.Visit(func(f *pflag.Flag) {
		if setErr != nil || overlay.Lookup(f.Name) == nil {
			return
		}
		if err := overlay.Set(f.Name, f.Value.String()); err != nil {
			setErr = fmt.Errorf("flag --%s: %w", f.Name, err)
		}
	})
	if setErr != nil {
		return nil, nil, setErr
	}

	ApplyFlagState(&cfg, st)
	return &cfg, st, nil
}
