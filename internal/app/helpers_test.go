package app

import (
	"sync"
	"time"

	"github.com/unilater/galeaz/internal/shell"
)

// recordingShell captures notifications and counts progress overlays.
type recordingShell struct {
	mu            sync.Mutex
	notifications []recordedNotification
	openProgress  int
}

type recordedNotification struct {
	Header   string
	Message  string
	Severity shell.Severity
}

func (r *recordingShell) Notify(header, message string, _ shell.Position, sev shell.Severity, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, recordedNotification{Header: header, Message: message, Severity: sev})
}

func (r *recordingShell) Progress(string) func() {
	r.mu.Lock()
	r.openProgress++
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.openProgress--
		r.mu.Unlock()
	}
}

func (r *recordingShell) all() []recordedNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedNotification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

func (r *recordingShell) bySeverity(sev shell.Severity) int {
	count := 0
	for _, n := range r.all() {
		if n.Severity == sev {
			count++
		}
	}
	return count
}

func (r *recordingShell) pendingProgress() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openProgress
}
