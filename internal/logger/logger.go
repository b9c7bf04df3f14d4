package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var levelStrings = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

func (l LogLevel) String() string {
	if s, ok := levelStrings[l]; ok {
		return s
	}
	return "UNKNOWN"
}

func (l LogLevel) zapLevel() zapcore.Level {
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

// ParseLevel maps DEBUG, INFO, WARN or ERROR (any case) to a LogLevel
func ParseLevel(s string) (LogLevel, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for level, name := range levelStrings {
		if name == upper {
			return level, nil
		}
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

// Logger writes structured JSON lines. ERROR goes to the error writer,
// everything else to the regular output.
type Logger struct {
	level zap.AtomicLevel
	zl    *zap.Logger
}

// NewLogger creates a logger writing to stdout and stderr
func NewLogger(minLevel LogLevel) *Logger {
	return New(minLevel, os.Stdout, os.Stderr)
}

// New creates a logger with explicit writers
func New(minLevel LogLevel, out, errOut io.Writer) *Logger {
	level := zap.NewAtomicLevelAt(minLevel.zapLevel())

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.MessageKey = "msg"
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	low := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return level.Enabled(lvl) && lvl < zapcore.ErrorLevel
	})
	high := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return level.Enabled(lvl) && lvl >= zapcore.ErrorLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.AddSync(out), low),
		zapcore.NewCore(encoder.Clone(), zapcore.AddSync(errOut), high),
	)

	// Skip log and Debug/Info/Warn/Error so the caller is the real call site
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.Fields(zap.Int("pid", os.Getpid())))
	return &Logger{level: level, zl: zl}
}

// Default logger instance (INFO level)
var defaultLogger = NewLogger(INFO)

func (l *Logger) log(level LogLevel, message string, context map[string]interface{}) {
	if !l.level.Enabled(level.zapLevel()) {
		return
	}
	fields := toFields(context)
	switch level {
	case DEBUG:
		l.zl.Debug(message, fields...)
	case WARN:
		l.zl.Warn(message, fields...)
	case ERROR:
		l.zl.Error(message, fields...)
	default:
		l.zl.Info(message, fields...)
	}
}

// toFields turns the context map into zap fields in key order
func toFields(context map[string]interface{}) []zap.Field {
	if len(context) == 0 {
		return nil
	}
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		if err, ok := context[k].(error); ok {
			fields = append(fields, zap.NamedError(k, err))
			continue
		}
		fields = append(fields, zap.Any(k, context[k]))
	}
	return fields
}

func firstContext(context []map[string]interface{}) map[string]interface{} {
	if len(context) > 0 {
		return context[0]
	}
	return nil
}

// Debug logs a debug message
func (l *Logger) Debug(message string, context ...map[string]interface{}) {
	l.log(DEBUG, message, firstContext(context))
}

// Info logs an info message
func (l *Logger) Info(message string, context ...map[string]interface{}) {
	l.log(INFO, message, firstContext(context))
}

// Warn logs a warning message
func (l *Logger) Warn(message string, context ...map[string]interface{}) {
	l.log(WARN, message, firstContext(context))
}

// Error logs an error message
func (l *Logger) Error(message string, context ...map[string]interface{}) {
	l.log(ERROR, message, firstContext(context))
}

// SetMinLevel changes the level at runtime
func (l *Logger) SetMinLevel(level LogLevel) {
	l.level.SetLevel(level.zapLevel())
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

// Package-level convenience functions using default logger

// Debug logs a debug message using the default logger
func Debug(message string, context ...map[string]interface{}) {
	defaultLogger.log(DEBUG, message, firstContext(context))
}

// Info logs an info message using the default logger
func Info(message string, context ...map[string]interface{}) {
	defaultLogger.log(INFO, message, firstContext(context))
}

// Warn logs a warning message using the default logger
func Warn(message string, context ...map[string]interface{}) {
	defaultLogger.log(WARN, message, firstContext(context))
}

// Error logs an error message using the default logger
func Error(message string, context ...map[string]interface{}) {
	defaultLogger.log(ERROR, message, firstContext(context))
}

// SetMinLevel sets the minimum log level for the default logger
func SetMinLevel(level LogLevel) {
	defaultLogger.SetMinLevel(level)
}

// SetDefault replaces the default logger and returns the previous one
func SetDefault(l *Logger) *Logger {
	prev := defaultLogger
	defaultLogger = l
	return prev
}

// Sync flushes the default logger
func Sync() {
	_ = defaultLogger.Sync()
}
