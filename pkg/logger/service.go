package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ServiceConfig describes the gateway's log sinks.
type ServiceConfig struct {
	Debug bool

	// Console receives every record. Defaults to os.Stdout.
	Console io.Writer

	// Pretty renders console records with charmbracelet/log instead of JSON.
	Pretty bool

	// LogFile, when set, is opened for append and receives JSON records.
	LogFile string
}

// Service is the logger behind "innerai serve": a console sink plus an
// optional JSON file sink.
type Service struct {
	*slog.Logger

	file *os.File
}

// NewService opens the configured sinks.
func NewService(c ServiceConfig) (*Service, error) {
	format := FormatJSON
	if c.Pretty {
		format = FormatPretty
	}
	console := New(WithDebug(c.Debug), WithFormat(format), WithWriter(c.Console))

	if c.LogFile == "" {
		return &Service{Logger: console}, nil
	}

	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	file := New(WithDebug(c.Debug), WithFormat(FormatJSON), WithWriter(f))

	return &Service{
		Logger: Multi(console, file),
		file:   f,
	}, nil
}

// Close closes the log file, if any. The logger keeps writing to the console.
func (s *Service) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
