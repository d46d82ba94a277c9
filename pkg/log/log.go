// Package log is the process-wide structured logger, a thin layer over a zap
// SugaredLogger.
package log

import (
	"fmt"

	"go.uber.org/zap"
)

var (
	base  *zap.Logger
	sugar *zap.SugaredLogger
)

// Until Init is called, entries go to a production logger.
func init() {
	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}
	Set(l)
}

// Init replaces the package logger with a development logger when debug is
// set and a production logger otherwise.
func Init(debug bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		l, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}
	Set(l)
	return nil
}

// Set installs l as the package logger. Tests use it with an observer core.
func Set(l *zap.Logger) {
	base = l
	sugar = l.Sugar()
}

// Zap returns the underlying logger.
func Zap() *zap.Logger {
	return base
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = sugar.Sync()
}

func Debugf(template string, args ...any) {
	sugar.Debugf(template, args...)
}

func Debugw(msg string, keysAndValues ...any) {
	sugar.Debugw(msg, keysAndValues...)
}

func Infof(template string, args ...any) {
	sugar.Infof(template, args...)
}

func Infow(msg string, keysAndValues ...any) {
	sugar.Infow(msg, keysAndValues...)
}

func Warnf(template string, args ...any) {
	sugar.Warnf(template, args...)
}

func Warnw(msg string, keysAndValues ...any) {
	sugar.Warnw(msg, keysAndValues...)
}

func Errorf(template string, args ...any) {
	sugar.Errorf(template, args...)
}

func Errorw(msg string, keysAndValues ...any) {
	sugar.Errorw(msg, keysAndValues...)
}

func Fatalf(template string, args ...any) {
	sugar.Fatalf(template, args...)
}

// Printf logs at info level. It lets the logger stand in for the writers
// other libraries expect.
func Printf(template string, args ...any) {
	sugar.Infof(template, args...)
}
