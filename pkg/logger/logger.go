// Package logger builds the slog loggers used by the innerai gateway and CLI.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// config is the accumulated state of the Options passed to New.
type config struct {
	level  slog.Level
	format Format
	source bool
	writer io.Writer
}

// New builds a *slog.Logger writing text records at Info level to os.Stdout
// unless options say otherwise.
func New(opts ...Option) *slog.Logger {
	c := &config{
		level:  slog.LevelInfo,
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.writer == nil {
		c.writer = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     c.level,
		AddSource: c.source,
	}

	switch c.format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(c.writer, handlerOpts))

	case FormatPretty:
		return slog.New(charmlog.NewWithOptions(c.writer, charmlog.Options{
			Level:           charmlog.Level(c.level),
			ReportTimestamp: true,
			ReportCaller:    c.source,
		}))

	default:
		return slog.New(slog.NewTextHandler(c.writer, handlerOpts))
	}
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
