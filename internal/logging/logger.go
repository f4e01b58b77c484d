package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Field is a structured key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// String creates a string field.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int creates an int field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Uint64 creates a uint64 field.
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

// Float64 creates a float64 field.
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }

// Bool creates a bool field.
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Duration creates a time.Duration field.
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Err creates a field holding an error under the "error" key.
func Err(err error) Field { return Field{Key: "error", Value: err} }

// Logger is the logging interface used throughout the application.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	Printf(format string, args ...any)
	Println(args ...any)
}

// ZerologAdapter implements Logger on top of zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter wraps an existing zerolog.Logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// NewDefaultLogger returns a human-readable console logger writing to stderr.
func NewDefaultLogger() *ZerologAdapter {
	return NewConsoleLogger(os.Stderr, "fanout")
}

// NewLogger returns a JSON logger writing to w, tagging every entry with the
// given component name.
func NewLogger(w io.Writer, component string) *ZerologAdapter {
	zl := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	return NewZerologAdapter(zl)
}

// NewConsoleLogger returns a console-formatted logger writing to w.
func NewConsoleLogger(w io.Writer, component string) *ZerologAdapter {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: os.Getenv("NO_COLOR") != ""}
	zl := zerolog.New(cw).With().Timestamp().Str("component", component).Logger()
	return NewZerologAdapter(zl)
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *ZerologAdapter {
	return NewZerologAdapter(zerolog.Nop())
}

// With returns a child logger carrying the given fields on every entry.
func (z *ZerologAdapter) With(fields ...Field) *ZerologAdapter {
	ctx := z.logger.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return NewZerologAdapter(ctx.Logger())
}

// Debug logs a message at debug level.
func (z *ZerologAdapter) Debug(msg string, fields ...Field) {
	z.applyFields(z.logger.Debug(), fields).Msg(msg)
}

// Info logs a message at info level.
func (z *ZerologAdapter) Info(msg string, fields ...Field) {
	z.applyFields(z.logger.Info(), fields).Msg(msg)
}

// Warn logs a message at warn level.
func (z *ZerologAdapter) Warn(msg string, fields ...Field) {
	z.applyFields(z.logger.Warn(), fields).Msg(msg)
}

// Error logs a message at error level with the given error.
func (z *ZerologAdapter) Error(msg string, err error, fields ...Field) {
	z.applyFields(z.logger.Error().Err(err), fields).Msg(msg)
}

// Printf logs a formatted message at info level.
func (z *ZerologAdapter) Printf(format string, args ...any) {
	z.logger.Info().Msgf(format, args...)
}

// Println logs its arguments, space separated, at info level.
func (z *ZerologAdapter) Println(args ...any) {
	z.logger.Info().Msg(strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}

func (z *ZerologAdapter) applyFields(e *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			e = e.Str(f.Key, v)
		case int:
			e = e.Int(f.Key, v)
		case int64:
			e = e.Int64(f.Key, v)
		case uint64:
			e = e.Uint64(f.Key, v)
		case float64:
			e = e.Float64(f.Key, v)
		case bool:
			e = e.Bool(f.Key, v)
		case time.Duration:
			e = e.Dur(f.Key, v)
		case error:
			e = e.AnErr(f.Key, v)
		default:
			e = e.Interface(f.Key, v)
		}
	}
	return e
}

// StdLoggerAdapter implements Logger on top of the standard library logger.
type StdLoggerAdapter struct {
	logger *log.Logger
}

// NewStdLoggerAdapter wraps a *log.Logger.
func NewStdLoggerAdapter(logger *log.Logger) *StdLoggerAdapter {
	return &StdLoggerAdapter{logger: logger}
}

func (s *StdLoggerAdapter) Debug(msg string, fields ...Field) {
	s.logger.Println("[DEBUG]", msg+formatFields(fields))
}

func (s *StdLoggerAdapter) Info(msg string, fields ...Field) {
	s.logger.Println("[INFO]", msg+formatFields(fields))
}

func (s *StdLoggerAdapter) Warn(msg string, fields ...Field) {
	s.logger.Println("[WARN]", msg+formatFields(fields))
}

func (s *StdLoggerAdapter) Error(msg string, err error, fields ...Field) {
	s.logger.Println("[ERROR]", msg+formatFields(append([]Field{Err(err)}, fields...)))
}

func (s *StdLoggerAdapter) Printf(format string, args ...any) {
	s.logger.Printf(format, args...)
}

func (s *StdLoggerAdapter) Println(args ...any) {
	s.logger.Println(args...)
}

func formatFields(fields []Field) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	return b.String()
}
