package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables read by [ApplyEnv].
const (
	EnvFFmpeg  = "FFTRIM_FFMPEG"
	EnvFFprobe = "FFTRIM_FFPROBE"
	EnvLog     = "FFTRIM_LOG"
	EnvNoColor = "NO_COLOR"
)

// DefaultConfigPath returns $XDG_CONFIG_HOME/fftrim/config.toml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultConfigPath() (string, error) {
	if base, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "fftrim", "config.toml"), nil
	}
	return expandPath("~/.config/fftrim/config.toml")
}

// LoadFile decodes the TOML file at path into cfg. Keys absent from the file
// leave cfg unchanged. With an empty path the default location is used and a
// missing file is not an error; an explicit path must exist. It reports
// whether a file was read.
func LoadFile(cfg *Config, path string) (bool, error) {
	explicit := path != ""
	if !explicit {
		def, err := DefaultConfigPath()
		if err != nil {
			return false, err
		}
		path = def
	} else {
		expanded, err := expandPath(path)
		if err != nil {
			return false, err
		}
		path = expanded
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return false, nil
		}
		return false, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return false, fmt.Errorf("parse config %s: %w", path, err)
	}
	return true, nil
}

// ApplyEnv loads dotenvPath (when it exists) into the process environment
// without overriding variables already set, then applies FFTRIM_* and
// NO_COLOR overrides to cfg. An empty dotenvPath skips the file.
func ApplyEnv(cfg *Config, dotenvPath string) error {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvFFmpeg)); v != "" {
		cfg.FFmpegPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFFprobe)); v != "" {
		cfg.FFprobePath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLog)); v != "" {
		cfg.LogFile = v
	}
	// https://no-color.org: any non-empty value disables color.
	if os.Getenv(EnvNoColor) != "" {
		cfg.ColorMode = ColorNever
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && pathValue[1] == '/' {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	return filepath.Clean(pathValue), nil
}
