// Package logging provides the leveled console logger used by every command.
// Records go through zerolog and are rendered by its ConsoleWriter as
// "<time> [LEVEL] message", colored when the terminal allows it. Errors go to
// stderr, everything else to stdout; an optional log file receives a plain
// copy of every record.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/backmassage/fftrim/internal/config"
	"github.com/backmassage/fftrim/internal/term"
)

const (
	tagField   = "tag"
	timeLayout = "2006-01-02 15:04:05"
)

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	zl   zerolog.Logger
	file *os.File
}

// NewLogger configures terminal colors from cfg and optionally opens
// cfg.LogFile for appending. Call Close when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	var file *os.File
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
	}

	var sink io.Writer
	if file != nil {
		sink = file
	}
	l := New(os.Stdout, os.Stderr, sink, term.Enabled(), cfg.Verbose)
	l.file = file
	return l, nil
}

// New builds a Logger over explicit writers. file may be nil.
func New(out, errOut, file io.Writer, color, verbose bool) *Logger {
	writers := []io.Writer{levelRouter{
		out:    consoleWriter(out, color),
		errOut: consoleWriter(errOut, color),
	}}
	if file != nil {
		writers = append(writers, consoleWriter(file, false))
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
	return &Logger{zl: zl}
}

func consoleWriter(out io.Writer, color bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       !color,
		TimeFormat:    timeLayout,
		PartsOrder:    []string{zerolog.TimestampFieldName, tagField, zerolog.MessageFieldName},
		FieldsExclude: []string{tagField},
		FormatFieldValue: func(i interface{}) string {
			tag := fmt.Sprint(i)
			if color {
				return term.ColorFor(tag) + "[" + tag + "]" + term.NC
			}
			return "[" + tag + "]"
		},
	}
}

// levelRouter sends error records to errOut and the rest to out.
type levelRouter struct {
	out    io.Writer
	errOut io.Writer
}

func (r levelRouter) Write(p []byte) (int, error) { return r.out.Write(p) }

func (r levelRouter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel {
		return r.errOut.Write(p)
	}
	return r.out.Write(p)
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) emit(ev *zerolog.Event, tag, format string, args []interface{}) {
	ev.Str(tagField, tag).Msgf(format, args...)
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(l.zl.Info(), "INFO", format, args)
}

// Success logs at INFO level with a SUCCESS tag (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.emit(l.zl.Info(), "SUCCESS", format, args)
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(l.zl.Warn(), "WARN", format, args)
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(l.zl.Error(), "ERROR", format, args)
}

// Command logs an external command line at INFO level (magenta).
func (l *Logger) Command(line string) {
	l.emit(l.zl.Info(), "CMD", "%s", []interface{}{line})
}

// Debug logs at DEBUG level (cyan); dropped unless verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.emit(l.zl.Debug(), "DEBUG", format, args)
}
