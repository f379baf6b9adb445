// Package logging configures the zerolog logger used by nbtools.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel     = "NBTOOLS_LOG_LEVEL"
	EnvLogTimestamp = "NBTOOLS_LOG_TIMESTAMP"
	EnvLogNoColor   = "NBTOOLS_LOG_NOCOLOR"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config selects level and console formatting.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
}

var (
	configureOnce sync.Once
	logger        = zerolog.Nop()
)

// ConfigureRuntime sets up the process logger for command-line use.
func ConfigureRuntime(debug bool) zerolog.Logger {
	Configure(ProfileRuntime, os.Stderr, debug)
	return logger
}

// Configure builds the process logger once. Later calls are no-ops.
func Configure(profile Profile, w io.Writer, debug bool) {
	configureOnce.Do(func() {
		cfg := defaultConfig(profile)
		if debug {
			cfg.Level = zerolog.DebugLevel
		}
		applyEnvOverrides(&cfg)
		logger = New(w, cfg)
	})
}

// Logger returns the configured process logger, or a no-op logger when
// Configure has not run.
func Logger() zerolog.Logger {
	return logger
}

// New builds a console logger writing to w.
func New(w io.Writer, cfg Config) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    cfg.NoColor,
		TimeFormat: time.TimeOnly,
	}
	if !cfg.Timestamp {
		cw.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	l := zerolog.New(cw).Level(cfg.Level)
	if cfg.Timestamp {
		l = l.With().Timestamp().Logger()
	}
	return l
}

func defaultConfig(profile Profile) Config {
	switch profile {
	case ProfileTest:
		return Config{Level: zerolog.DebugLevel, NoColor: true}
	default:
		return Config{Level: zerolog.InfoLevel, Timestamp: true}
	}
}

func applyEnvOverrides(cfg *Config) {
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

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
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
		return zerolog.InfoLevel, false
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
