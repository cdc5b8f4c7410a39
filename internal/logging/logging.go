// Package logging provides the logger interface shared across the core's
// components, and a production implementation backed by go-log.
package logging

import (
	golog "github.com/ipfs/go-log/v2"
)

// StandardLogger is the subset of go-log's Logger that components depend on.
// Keeping it as an interface lets tests inject a DiscardLogger instead of
// wiring a real sink.
type StandardLogger interface {
	Debug(args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// DiscardLogger drops everything. Useful as a zero-value-safe default for
// components constructed without an explicit logger.
type DiscardLogger struct{}

var _ StandardLogger = (*DiscardLogger)(nil)

func (d *DiscardLogger) Debug(args ...interface{})                       {}
func (d *DiscardLogger) Debugf(format string, args ...interface{})       {}
func (d *DiscardLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (d *DiscardLogger) Error(args ...interface{})                       {}
func (d *DiscardLogger) Errorf(format string, args ...interface{})       {}
func (d *DiscardLogger) Errorw(msg string, keysAndValues ...interface{}) {}
func (d *DiscardLogger) Infof(format string, args ...interface{})        {}
func (d *DiscardLogger) Info(args ...interface{})                        {}
func (d *DiscardLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (d *DiscardLogger) Warn(args ...interface{})                        {}
func (d *DiscardLogger) Warnf(format string, args ...interface{})        {}
func (d *DiscardLogger) Warnw(msg string, keysAndValues ...interface{})  {}

// Logger returns a named go-log logger satisfying StandardLogger. Components
// use this the way the teacher's jobqueue package does: one named logger per
// subsystem (e.g. "queue", "worker", "statestore", "eventbus").
func Logger(name string) StandardLogger {
	return golog.Logger(name)
}

// SetAllLoggers sets the level of every registered subsystem logger.
func SetAllLoggers(level golog.LogLevel) {
	golog.SetAllLoggers(level)
}

// SetLogLevel overrides the level of a single named subsystem logger.
func SetLogLevel(name, level string) error {
	return golog.SetLogLevel(name, level)
}

// LevelFromString parses a textual log level ("debug", "info", ...).
func LevelFromString(level string) (golog.LogLevel, error) {
	return golog.LevelFromString(level)
}
