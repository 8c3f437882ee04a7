// Package logging sets up structured logging for the CLI process (spec
// SPEC_FULL.md section A "Logging"): text to stderr by default, optionally
// tee'd into a rotating file when OVERSEER_LOG_FILE is set, in the manner
// of tysonthomas9-beads/cmd/bd/daemon_logger.go.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// EnvLogFile names the log file to rotate into, in addition to stderr.
const EnvLogFile = "OVERSEER_LOG_FILE"

// EnvLogLevel selects the minimum level logged (debug, info, warn, error).
const EnvLogLevel = "OVERSEER_LOG_LEVEL"

// EnvLogJSON, when set to a truthy value, switches the handler to JSON.
const EnvLogJSON = "OVERSEER_LOG_JSON"

// Setup builds a *slog.Logger from the environment. The returned closer
// flushes and closes the rotating log file, if one was opened; callers
// should defer it. Safe to call multiple times (each call opens its own
// file handle).
func Setup() (*slog.Logger, io.Closer) {
	level := parseLevel(os.Getenv(EnvLogLevel))

	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if path := os.Getenv(EnvLogFile); path != "" {
		rotating := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    50,
			MaxBackups: 7,
			MaxAge:     30,
			Compress:   true,
		}
		w = io.MultiWriter(os.Stderr, rotating)
		closer = rotating
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if truthy(os.Getenv(EnvLogJSON)) {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), closer
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
