// Package logger configures structured logging. Channel failures are routine
// here rather than exceptional, so attempt records carry enough context
// (channel, operation, versions, elapsed time) to reconstruct a fallback
// sequence from logs alone.
package logger

import (
	"log/slog"
	"os"
	"time"
)

// Setup installs the default slog handler. Verbose lowers the level to Debug
// so individual channel attempts become visible.
func Setup(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// Attempt logs one channel attempt and its outcome.
func Attempt(opID, op, channel string, elapsed time.Duration, err error) {
	args := []any{
		"op", op,
		"opId", opID,
		"channel", channel,
		"elapsedMs", elapsed.Milliseconds(),
	}
	if err != nil {
		args = append(args, "error", err)
		slog.Warn("channel attempt failed", args...)
		return
	}
	slog.Debug("channel attempt succeeded", args...)
}

// Skip logs a channel that was skipped outright, typically because the
// version gate distrusts it.
func Skip(opID, op, channel, reason string) {
	slog.Debug("channel skipped", "op", op, "opId", opID, "channel", channel, "reason", reason)
}
