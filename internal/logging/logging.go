package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileLogger bundles a slog logger with its backing file so callers can
// close it on shutdown.
type FileLogger struct {
	Logger  *slog.Logger
	Close   func() error
	Path    string
	Enabled bool
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// NewFileLogger opens an append-only log file under dataDir/logs. With debug
// off it returns a working no-op logger so call sites never nil-check.
func NewFileLogger(dataDir string, debug bool) (FileLogger, error) {
	nop := FileLogger{Logger: Nop(), Close: func() error { return nil }, Enabled: false}
	if !debug {
		return nop, nil
	}
	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nop, err
	}
	path := filepath.Join(logDir, "ghostcanvas.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nop, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	return FileLogger{
		Logger:  slog.New(handler),
		Close:   file.Close,
		Path:    path,
		Enabled: true,
	}, nil
}
