// Package logging builds the diagnostic logger. Diagnostics go to stderr so
// they never mix with the report on stdout.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const (
	EnvLogLevel     = "DEVFETCH_LOG_LEVEL"
	EnvLogTimestamp = "DEVFETCH_LOG_TIMESTAMP"
	EnvLogNoColor   = "DEVFETCH_LOG_NOCOLOR"
)

// Config controls the console logger.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
}

// DefaultConfig is quiet unless verbose: only warnings and errors show.
func DefaultConfig(verbose bool) Config {
	cfg := Config{Level: zerolog.WarnLevel}
	if verbose {
		cfg.Level = zerolog.DebugLevel
	}
	return cfg
}

// New returns a console logger writing to w with env overrides applied.
// Colour is dropped when w is not a terminal.
func New(w io.Writer, verbose, noColor bool) zerolog.Logger {
	cfg := DefaultConfig(verbose)
	cfg.NoColor = noColor || !isTerminal(w)
	ApplyEnvOverrides(&cfg)
	return NewWithConfig(w, cfg)
}

// NewWithConfig builds the logger without consulting the environment.
func NewWithConfig(w io.Writer, cfg Config) zerolog.Logger {
	if f, ok := w.(*os.File); ok && !cfg.NoColor {
		w = colorable.NewColorable(f)
	}
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    cfg.NoColor,
		TimeFormat: time.TimeOnly,
	}
	if !cfg.Timestamp {
		out.PartsExclude = []string{zerolog.TimestampFieldName}
	}

	ctx := zerolog.New(out).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

// ApplyEnvOverrides lets DEVFETCH_LOG_* variables override cfg. Invalid
// values are ignored.
func ApplyEnvOverrides(cfg *Config) {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.WarnLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.WarnLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
