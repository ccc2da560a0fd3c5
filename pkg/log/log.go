// Package log configures structured logging for the linus toolchain on
// top of log/slog. Commands build one Logger at startup from their
// flags and pass it down; library packages receive it as a value and
// never consult globals.
package log

import (
	"io"
	"log/slog"
	"strings"
)

// Level is the minimum severity a Logger reports.
type Level slog.Level

const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel applies when no WithLevel option is given.
const DefaultLevel = LevelInfo

func (l Level) String() string {
	return strings.ToLower(slog.Level(l).String())
}

// ParseLevel reads a level name such as "debug" or "WARN", with the
// optional offset syntax of [slog.Level.UnmarshalText]. Names that do
// not parse fall back to DefaultLevel.
func ParseLevel(s string) Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}
	return Level(l)
}

// Format selects how log records are rendered.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat applies when no WithFormat option is given.
const DefaultFormat = FormatText

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "text"
}

// ParseFormat reads "text" or "json"; anything else falls back to
// DefaultFormat.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return FormatJSON
	}
	return DefaultFormat
}

type config struct {
	output io.Writer
	level  Level
	format Format
}

// Option adjusts one Logger setting.
type Option func(config) config

// WithLevel sets the minimum level a Logger reports.
func WithLevel(level Level) Option {
	return func(c config) config {
		c.level = level
		return c
	}
}

// WithFormat sets the record rendering.
func WithFormat(format Format) Option {
	return func(c config) config {
		c.format = format
		return c
	}
}

// Logger wraps a slog.Logger built from the package's options.
type Logger struct {
	*slog.Logger
	config
}

// Make builds a Logger writing to w. A nil writer discards all output.
func Make(w io.Writer, opts ...Option) Logger {
	if w == nil {
		w = io.Discard
	}
	cfg := config{output: w, level: DefaultLevel, format: DefaultFormat}
	for _, opt := range opts {
		cfg = opt(cfg)
	}
	return Logger{Logger: slog.New(cfg.handler()), config: cfg}
}

// Discard returns a Logger that drops every record. Library code uses
// it as the default until a command installs a real one.
func Discard() Logger {
	return Make(io.Discard)
}

// Level reports the configured minimum level.
func (l Logger) Level() Level { return l.level }

// Format reports the configured rendering.
func (l Logger) Format() Format { return l.format }

func (c config) handler() slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.Level(c.level)}
	if c.format == FormatJSON {
		return slog.NewJSONHandler(c.output, opts)
	}
	return slog.NewTextHandler(c.output, opts)
}
