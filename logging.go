package main

import (
	"log/slog"
	"os"
	"sync"
)

var (
	logOnce  sync.Once
	logger   *slog.Logger
	logDebug bool
)

// SetupLogging configures the process-wide logger. Call once at startup,
// before the first Log(); later calls have no effect.
func SetupLogging(debug bool) {
	logDebug = debug
	Log()
}

// Log returns the process-wide logger, initializing it on first use so
// that code paths reached before main (tests, init) still log sanely.
func Log() *slog.Logger {
	logOnce.Do(func() {
		level := slog.LevelInfo
		if logDebug {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		}))
		slog.SetDefault(logger)
	})
	return logger
}
