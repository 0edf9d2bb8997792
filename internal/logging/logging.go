package logging

import (
	"log/slog"
	"os"
)

// Init configures the default slog logger. Logs go to stderr so that
// report output on stdout stays machine-readable.
func Init(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
