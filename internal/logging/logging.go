// =============================================================================
// SWIFT MT Engine - Logging
// =============================================================================
//
// Builds the zerolog logger used by the CLI, the batch converter and the HTTP
// server. The parsing and validation packages never log.
//
// OUTPUTS:
//   - console: human readable, coloured unless NoColor is set
//   - json: one JSON object per line, for log shippers
//
// ENVIRONMENT OVERRIDES (applied after the configuration file):
//   - SWIFTMT_LOG_LEVEL:   trace, debug, info, warn, error, off
//   - SWIFTMT_LOG_FORMAT:  console, json
//   - SWIFTMT_LOG_NOCOLOR: true/false
//
// =============================================================================

package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "SWIFTMT_LOG_LEVEL"
	EnvLogFormat  = "SWIFTMT_LOG_FORMAT"
	EnvLogNoColor = "SWIFTMT_LOG_NOCOLOR"
)

// Config describes the logger to build.
type Config struct {
	Level   string
	Format  string
	NoColor bool

	// File, when set, receives the log in addition to Out.
	File string

	// Out defaults to stderr.
	Out io.Writer
}

// New builds a logger from cfg after applying environment overrides, and
// installs it as the global zerolog logger. The returned closer releases the
// log file, if any.
func New(app string, cfg Config) (zerolog.Logger, func() error, error) {
	applyEnvOverrides(&cfg)

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.NoColor,
		}
	}

	closer := func() error { return nil }
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, err
		}
		out = zerolog.MultiLevelWriter(out, f)
		closer = f.Close
	}

	level, ok := ParseLevel(cfg.Level)
	if !ok {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger, closer, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Format = v
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvLogNoColor))); err == nil {
		cfg.NoColor = v
	}
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(raw string) (zerolog.Level, bool) {
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
