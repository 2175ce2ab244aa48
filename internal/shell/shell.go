// Package shell is the presentation boundary: transient notifications and
// blocking-progress overlays. Workflows only report through it; they never
// consume a return value beyond the progress dismiss hook.
package shell

import (
	"time"

	"go.uber.org/zap"
)

// Severity of a notification.
type Severity string

const (
	Success Severity = "success"
	Warning Severity = "warning"
	Danger  Severity = "danger"
)

// Position hints where the notification appears.
type Position string

const Top Position = "top"

// Shell is what workflows see of the UI.
type Shell interface {
	// Notify shows one transient notification.
	Notify(header, message string, pos Position, sev Severity, duration time.Duration)
	// Progress shows a blocking indicator and returns its dismiss hook. The
	// hook must be safe to call exactly once on every exit path.
	Progress(message string) (dismiss func())
}

// Terminal reports through a zap logger; the CLI's stand-in for toasts and
// spinners.
type Terminal struct {
	log *zap.Logger
}

func NewTerminal(log *zap.Logger) *Terminal {
	if log == nil {
		log = zap.NewNop()
	}
	return &Terminal{log: log}
}

func (t *Terminal) Notify(header, message string, pos Position, sev Severity, duration time.Duration) {
	fields := []zap.Field{
		zap.String("severity", string(sev)),
		zap.String("position", string(pos)),
		zap.Duration("duration", duration),
	}
	switch sev {
	case Danger:
		t.log.Error(header+": "+message, fields...)
	case Warning:
		t.log.Warn(header+": "+message, fields...)
	default:
		t.log.Info(header+": "+message, fields...)
	}
}

func (t *Terminal) Progress(message string) func() {
	start := time.Now()
	t.log.Info(message)
	return func() {
		t.log.Debug("done", zap.String("task", message), zap.Duration("took", time.Since(start)))
	}
}
