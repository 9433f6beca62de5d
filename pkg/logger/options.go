package logger

import (
	"io"
	"log/slog"
)

// Format selects how records are encoded.
type Format int

const (
	// FormatText is slog's key=value text encoding.
	FormatText Format = iota

	// FormatJSON writes one JSON object per record. Used for service logs
	// and log files.
	FormatJSON

	// FormatPretty is the colorized charmbracelet/log output for terminals.
	FormatPretty
)

// Option configures a logger created with New.
type Option func(*config)

// WithDebug sets the log level to Debug when true, Info otherwise.
func WithDebug(debug bool) Option {
	return func(c *config) {
		if debug {
			c.level = slog.LevelDebug
		} else {
			c.level = slog.LevelInfo
		}
	}
}

// WithFormat picks the record encoding. Defaults to FormatText.
func WithFormat(format Format) Option {
	return func(c *config) {
		c.format = format
	}
}

// WithWriter overrides the output writer. Defaults to os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.writer = w
	}
}

// WithSource includes source file:line in log output.
func WithSource(source bool) Option {
	return func(c *config) {
		c.source = source
	}
}
