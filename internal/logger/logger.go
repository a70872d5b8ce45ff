// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logger constructs the slog logger shared by the server and workers.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New constructs a text logger for the named component. The level comes
// from the LOG_LEVEL environment variable and defaults to info.
func New(component string) *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("component", component)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
