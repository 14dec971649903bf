// Package logging builds the component loggers used across the service.
package logging

import (
	"io"
	"log"
	"os"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options control where log output goes.
type Options struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Sink is the shared log destination. Close flushes and releases any log file.
type Sink struct {
	writer io.Writer
	file   *lumberjack.Logger
}

// NewSink returns a sink writing to stderr, teed to a rotating file when opts.File is set.
func NewSink(opts Options) *Sink {
	if opts.File == "" {
		return &Sink{writer: os.Stderr}
	}
	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     28,
		Compress:   true,
	}
	return &Sink{writer: io.MultiWriter(os.Stderr, file), file: file}
}

// Writer exposes the underlying destination.
func (s *Sink) Writer() io.Writer {
	return s.writer
}

// Logger returns a logger tagged with the component name.
func (s *Sink) Logger(component string) *log.Logger {
	return log.New(s.writer, "["+component+"] ", log.LstdFlags|log.Lshortfile)
}

// Close releases the log file, if any.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
