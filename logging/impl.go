package logging

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type impl struct {
	name  string
	level *atomic.Int32

	// root carries the outputs and any With fields, but no name.
	root  *zap.Logger
	sugar *zap.SugaredLogger
}

func newImpl(name string, level Level, core zapcore.Core) *impl {
	root := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return newImplFromRoot(name, level, root)
}

func newImplFromRoot(name string, level Level, root *zap.Logger) *impl {
	lvl := &atomic.Int32{}
	lvl.Store(int32(level))
	return &impl{
		name:  name,
		level: lvl,
		root:  root,
		sugar: root.Named(name).Sugar(),
	}
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Store(int32(level))
}

func (imp *impl) GetLevel() Level {
	return Level(imp.level.Load())
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}
	return newImplFromRoot(newName, imp.GetLevel(), imp.root)
}

func (imp *impl) With(keysAndValues ...interface{}) Logger {
	root := imp.root.Sugar().With(keysAndValues...).Desugar()
	return newImplFromRoot(imp.name, imp.GetLevel(), root)
}

func (imp *impl) Sync() error {
	return imp.root.Sync()
}

func (imp *impl) AsZap() *zap.SugaredLogger {
	return imp.root.WithOptions(zap.AddCallerSkip(-1)).Named(imp.name).Sugar()
}

func (imp *impl) shouldLog(logLevel Level) bool {
	return logLevel >= imp.GetLevel()
}

func (imp *impl) Debug(args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.sugar.Debug(args...)
	}
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.sugar.Debugf(template, args...)
	}
}

func (imp *impl) CDebugf(ctx context.Context, template string, args ...interface{}) {
	if imp.shouldLog(DEBUG) || IsDebugMode(ctx) {
		imp.sugar.Debugf(template, args...)
	}
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.sugar.Debugw(msg, keysAndValues...)
	}
}

func (imp *impl) CDebugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(DEBUG) || IsDebugMode(ctx) {
		imp.sugar.Debugw(msg, keysAndValues...)
	}
}

func (imp *impl) Info(args ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.sugar.Info(args...)
	}
}

func (imp *impl) Infof(template string, args ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.sugar.Infof(template, args...)
	}
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.sugar.Infow(msg, keysAndValues...)
	}
}

func (imp *impl) Warn(args ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.sugar.Warn(args...)
	}
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.sugar.Warnf(template, args...)
	}
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.sugar.Warnw(msg, keysAndValues...)
	}
}

func (imp *impl) Error(args ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.sugar.Error(args...)
	}
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.sugar.Errorf(template, args...)
	}
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.sugar.Errorw(msg, keysAndValues...)
	}
}
