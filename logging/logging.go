// Package logging package contains functionality for colortrack logging.
package logging

import (
	"context"
	"io"
	"os"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging interface used throughout colortrack. Every method of a
// zap SugaredLogger that colortrack relies on is mirrored here so callers never
// depend on zap directly.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	CDebugf(ctx context.Context, template string, args ...interface{})
	CDebugw(ctx context.Context, msg string, keysAndValues ...interface{})

	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})

	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})

	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	// Sublogger returns a logger named "<parent>.<subname>" sharing the same outputs.
	Sublogger(subname string) Logger
	// With returns a logger that attaches the given key/value pairs to every entry.
	With(keysAndValues ...interface{}) Logger

	SetLevel(level Level)
	GetLevel() Level
	Sync() error
	AsZap() *zap.SugaredLogger
}

// NewLoggerConfig returns a new default logger config.
func NewLoggerConfig() zap.Config {
	// from https://github.com/uber-go/zap/blob/2314926ec34c23ee21f3dd4399438469668f8097/config.go#L135
	// but disable stacktraces, use same keys as prod, and color levels.
	return zap.Config{
		Level:    zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

func newStdoutCore() zapcore.Core {
	encoder := zapcore.NewConsoleEncoder(NewLoggerConfig().EncoderConfig)
	// the impl does its own level filtering so debug mode contexts can bypass it.
	return zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zapcore.DebugLevel)
}

// NewLogger returns a new logger that outputs Info+ logs to stdout.
func NewLogger(name string) Logger {
	return newImpl(name, INFO, newStdoutCore())
}

// NewDebugLogger returns a new logger that outputs Debug+ logs to stdout.
func NewDebugLogger(name string) Logger {
	return newImpl(name, DEBUG, newStdoutCore())
}

// NewFileLogger returns a logger that, like NewLogger, writes to stdout and
// also appends JSON entries to the rotated log file at path. Closing the
// returned closer closes the file.
func NewFileLogger(name string, level Level, path string) (Logger, io.Closer) {
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    64,
		MaxBackups: 2,
		Compress:   true,
	}
	encoderConfig := NewLoggerConfig().EncoderConfig
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), zapcore.DebugLevel)
	return newImpl(name, level, zapcore.NewTee(newStdoutCore(), fileCore)), file
}

// NewBlankLogger returns a new logger that accepts Debug+ logs but writes them nowhere.
func NewBlankLogger(name string) Logger {
	return newImpl(name, DEBUG, zapcore.NewNopCore())
}

// NewTestLogger returns a new logger that outputs Debug+ logs to the test's log.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also saves logs to an in memory observer.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	testCore := zaptest.NewLogger(tb, zaptest.Level(zapcore.DebugLevel)).Core()
	observerCore, observedLogs := observer.New(zap.LevelEnablerFunc(zapcore.DebugLevel.Enabled))
	return newImpl("", DEBUG, zapcore.NewTee(testCore, observerCore)), observedLogs
}
