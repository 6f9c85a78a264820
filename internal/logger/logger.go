// Package logger builds the process logger: charmbracelet/log writing to a
// rotated file, mirrored to stderr in debug mode.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Debug bool
	Dir   string
	// Stderr receives a copy of every line in debug mode. Defaults to os.Stderr.
	Stderr io.Writer
}

// Logger wraps the charm logger together with the rotating file behind it.
type Logger struct {
	*log.Logger
	file *lumberjack.Logger
}

// New creates the log directory and a logger writing to tally.log inside it.
func New(cfg Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, "tally.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := log.InfoLevel
	var writer io.Writer = fileWriter
	if cfg.Debug {
		level = log.DebugLevel
		stderr := cfg.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		writer = io.MultiWriter(stderr, fileWriter)
	}

	l := log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "tally",
	})
	return &Logger{Logger: l, file: fileWriter}, nil
}

// Discard returns a logger that writes nowhere.
func Discard() *Logger {
	return &Logger{Logger: log.New(io.Discard)}
}

// Slog exposes the logger as a *slog.Logger for packages that take one.
func (l *Logger) Slog() *slog.Logger {
	return slog.New(l.Logger)
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
