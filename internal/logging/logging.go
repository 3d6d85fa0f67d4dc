// Package logging builds the engine's structured logger, following the
// dual stdout+file slog.TextHandler convention used across the
// nrgchamp services.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// DualLogger logs to both stdout and an append-only log file (no rotation).
type DualLogger struct {
	Logger *slog.Logger
	file   *os.File
}

// New creates a slog logger. The log file path comes from HOTELAC_LOGFILE
// or defaults to "./hotelac.log"; if the file cannot be opened, logging
// falls back to stdout only rather than failing boot.
func New() *DualLogger {
	logPath := os.Getenv("HOTELAC_LOGFILE")
	if logPath == "" {
		logPath = "./hotelac.log"
	}

	writers := []io.Writer{os.Stdout}
	var file *os.File
	if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
		file = f
		writers = append(writers, f)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: slog.LevelInfo})
	return &DualLogger{Logger: slog.New(handler), file: file}
}

// Close releases the underlying log file, if one was opened.
func (d *DualLogger) Close() error {
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}
