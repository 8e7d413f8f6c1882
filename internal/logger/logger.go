package logger

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel parses a string into a Level.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Logger is a leveled logger backed by a zap SugaredLogger.
type Logger struct {
	sugar *zap.SugaredLogger
}

type options struct {
	out      io.Writer
	level    Level
	prefix   string
	colorize bool
	json     bool
}

// Option configures a Logger.
type Option func(*options)

// WithOutput sets the output destination.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithPrefix sets the logger name.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithColors enables or disables colorized level names.
func WithColors(enabled bool) Option {
	return func(o *options) {
		o.colorize = enabled
	}
}

// WithJSON switches to the JSON encoder.
func WithJSON(enabled bool) Option {
	return func(o *options) {
		o.json = enabled
	}
}

// New creates a new Logger with the given options.
func New(opts ...Option) *Logger {
	o := options{
		out:      os.Stdout,
		level:    INFO,
		colorize: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if o.colorize && !o.json {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var enc zapcore.Encoder
	if o.json {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(o.out), o.level.zapLevel())
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	if o.prefix != "" {
		z = z.Named(o.prefix)
	}
	return &Logger{sugar: z.Sugar()}
}

var defaultLogger = New()

// SetDefault sets the default logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}

// Default returns the default logger.
func Default() *Logger {
	return defaultLogger
}

// WithField returns a new logger with the given field added.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{sugar: l.sugar.With(key, value)}
}

// WithFields returns a new logger with the given fields added, in key order.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]any, 0, len(fields)*2)
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return &Logger{sugar: l.sugar.With(kv...)}
}

// WithPrefix returns a new logger whose name is extended by prefix.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{sugar: l.sugar.Named(prefix)}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// Debug logs a message at DEBUG level.
func (l *Logger) Debug(msg string, args ...any) {
	l.sugar.Debugf(msg, args...)
}

// Info logs a message at INFO level.
func (l *Logger) Info(msg string, args ...any) {
	l.sugar.Infof(msg, args...)
}

// Warn logs a message at WARN level.
func (l *Logger) Warn(msg string, args ...any) {
	l.sugar.Warnf(msg, args...)
}

// Error logs a message at ERROR level.
func (l *Logger) Error(msg string, args ...any) {
	l.sugar.Errorf(msg, args...)
}

// Package-level functions that use the default logger.

func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { defaultLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { defaultLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }

// Context key for request-scoped logger.
type ctxKey struct{}

// FromContext returns the logger from the context, or the default logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return defaultLogger
}

// NewContext returns a new context with the given logger.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}
