package alloc

import (
	"io"
	"log/slog"
	"os"
)

// Runtime debug flag for allocation logging - controlled by TINYHEAP_LOG_ALLOC env var.
var logAlloc = os.Getenv("TINYHEAP_LOG_ALLOC") != ""

// defaultLogger is used when Config.Logger is nil.
func defaultLogger() *slog.Logger {
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
