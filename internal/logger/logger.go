// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var Logger = slog.Default()

// Init builds the process logger and installs it as slog's default.
// format "json" selects the JSON handler, anything else the text handler.
func Init(debug bool, format string) *slog.Logger {
	return InitTo(os.Stdout, debug, format)
}

// InitTo is Init writing to w.
func InitTo(w io.Writer, debug bool, format string) *slog.Logger {
	Logger = New(w, debug, format)
	slog.SetDefault(Logger)
	return Logger
}

func New(w io.Writer, debug bool, format string) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// OrDefault lets constructors accept a nil logger.
func OrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Logger
	}
	return l
}
