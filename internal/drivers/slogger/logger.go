// Package slogger adapts the standard library's log/slog to the
// drivers.Logger contract, exactly as the teacher's internal/commands/root.go
// installs slog with a JSON handler on stderr.
package slogger

import (
	"log/slog"
	"os"

	"github.com/rigctl/rigctl/internal/drivers"
)

// Logger wraps an *slog.Logger as a drivers.Logger.
type Logger struct {
	base *slog.Logger
}

// New wraps the default slog logger.
func New() Logger { return Logger{base: slog.Default()} }

// Wrap adapts an existing *slog.Logger.
func Wrap(l *slog.Logger) Logger { return Logger{base: l} }

func (l Logger) Debug(msg string, args ...any) { l.base.Debug(msg, args...) }
func (l Logger) Info(msg string, args ...any)  { l.base.Info(msg, args...) }
func (l Logger) Warn(msg string, args ...any)  { l.base.Warn(msg, args...) }
func (l Logger) Error(msg string, args ...any) { l.base.Error(msg, args...) }

// Child returns a logger scoped to a component, matching spec §6.1's
// child(component) capability.
func (l Logger) Child(component string) drivers.Logger {
	return Logger{base: l.base.With("component", component)}
}

// Install sets up the process-wide default slog logger as a JSON handler
// on stderr, matching the teacher's commands.Execute wiring.
func Install() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
}
