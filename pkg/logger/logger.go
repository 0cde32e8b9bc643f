package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tryluxor/server/internal/core"
)

var DefaultLoggerOpts = &LoggerOpts{
	Environment: core.Development,
	Level:       "debug",
}

type LoggerOpts struct {
	Environment core.Environment
	// Level is a zerolog level name (debug, info, warn, error). Empty keeps the
	// environment default.
	Level string
	// Output overrides stdout, mainly for tests.
	Output io.Writer
}

func safe(otps ...LoggerOpts) *LoggerOpts {
	if len(otps) == 0 {
		return DefaultLoggerOpts
	}
	return &otps[0]
}

// ParseLevel converts a LOG_LEVEL value into a zerolog level. Unknown values map to fallback.
func ParseLevel(v string, fallback zerolog.Level) zerolog.Level {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "warning" {
		v = "warn"
	}
	if v == "critical" {
		v = "fatal"
	}
	lvl, err := zerolog.ParseLevel(v)
	if err != nil || v == "" {
		return fallback
	}
	return lvl
}

func Init(otps ...LoggerOpts) {
	opts := safe(otps...)
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	if opts.Environment == core.Production {
		log.Logger = zerolog.New(out).With().Timestamp().Logger().
			Level(ParseLevel(opts.Level, zerolog.InfoLevel))
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Caller().Logger().
			Level(ParseLevel(opts.Level, zerolog.DebugLevel))
	}
}

// Logger returns the process logger, e.g. for hlog middleware.
func Logger() zerolog.Logger {
	return log.Logger
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Panic() *zerolog.Event {
	return log.Panic()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
