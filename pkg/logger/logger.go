package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the logging interface used by the library.
type Logger interface {
	Info(msg string, obj any)
	Warn(msg string, obj any)
	Debug(msg string, obj any)
	Error(msg string, obj any)
}

// NopLogger discards all log messages.
type NopLogger struct{}

func (NopLogger) Info(string, any)  {}
func (NopLogger) Warn(string, any)  {}
func (NopLogger) Debug(string, any) {}
func (NopLogger) Error(string, any) {}

// Options configures a file-backed logger.
type Options struct {
	// File is appended to; empty disables the file sink.
	File string
	// Console receives a human-readable mirror; nil disables it.
	Console io.Writer
	Verbose bool
	// Name is attached to every record as "logger".
	Name string
}

// FileLogger writes JSON records to an append-only file and mirrors them
// to a console writer.
type FileLogger struct {
	zl   zerolog.Logger
	file *os.File
}

// New opens the log file (creating parent directories) and builds the logger.
func New(opts Options) (*FileLogger, error) {
	var writers []io.Writer
	var file *os.File
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		writers = append(writers, f)
	}
	if opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        opts.Console,
			TimeFormat: time.DateTime,
			NoColor:    !isTerminal(opts.Console),
		})
	}

	var w io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		w = writers[0]
	default:
		w = zerolog.MultiLevelWriter(writers...)
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if opts.Name != "" {
		ctx = ctx.Str("logger", opts.Name)
	}
	return &FileLogger{zl: ctx.Logger(), file: file}, nil
}

// NewWriterLogger builds a logger that writes JSON records to an io.Writer.
func NewWriterLogger(w io.Writer) Logger {
	return &FileLogger{zl: zerolog.New(w).With().Timestamp().Logger()}
}

// Close releases the log file, if any.
func (l *FileLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *FileLogger) write(ev *zerolog.Event, msg string, obj any) {
	switch v := obj.(type) {
	case nil:
	case map[string]any:
		ev = ev.Fields(v)
	case error:
		ev = ev.Err(v)
	default:
		ev = ev.Interface("obj", v)
	}
	ev.Msg(msg)
}

func (l *FileLogger) Info(msg string, obj any)  { l.write(l.zl.Info(), msg, obj) }
func (l *FileLogger) Warn(msg string, obj any)  { l.write(l.zl.Warn(), msg, obj) }
func (l *FileLogger) Debug(msg string, obj any) { l.write(l.zl.Debug(), msg, obj) }
func (l *FileLogger) Error(msg string, obj any) { l.write(l.zl.Error(), msg, obj) }

// Debug writes a debug log when enabled and logger is non-nil.
func Debug(enabled bool, logger Logger, msg string, obj any) {
	if !enabled || logger == nil {
		return
	}
	logger.Debug(msg, obj)
}

// Debugf is a compatibility helper for format-style debug logging.
func Debugf(enabled bool, logger Logger, format string, args ...any) {
	Debug(enabled, logger, fmt.Sprintf(format, args...), nil)
}

// Info writes an info log when logger is non-nil.
func Info(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Info(msg, obj)
}

// Warn writes a warning log when logger is non-nil.
func Warn(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Warn(msg, obj)
}

// Error writes an error log when logger is non-nil.
func Error(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Error(msg, obj)
}
