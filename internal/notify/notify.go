// Package notify carries short-lived user-facing notifications.
//
// Storage failures and operation confirmations surface here instead of
// propagating as errors to the presentation layer. Notifications
// auto-dismiss after a fixed duration and can be dismissed early.
package notify

import (
	"log"
	"os"
	"sync"
	"time"
)

// Level classifies a notification.
type Level string

const (
	// LevelSuccess confirms a completed operation.
	LevelSuccess Level = "success"
	// LevelInfo reports a neutral event, such as a deletion.
	LevelInfo Level = "info"
	// LevelError reports a failed operation.
	LevelError Level = "error"
)

// DefaultDuration is how long a notification stays active before
// auto-dismissing.
const DefaultDuration = 2500 * time.Millisecond

// Notification is one active message.
type Notification struct {
	ID      int
	Level   Level
	Message string
	ShownAt time.Time
}

// Notifier is the interface the sync layer reports through.
type Notifier interface {
	Success(msg string)
	Info(msg string)
	Error(msg string)
}

// Hub collects active notifications and logs every one for
// diagnostics.
type Hub struct {
	mu       sync.Mutex
	seq      int
	active   map[int]Notification
	timers   map[int]*time.Timer
	duration time.Duration
	logger   *log.Logger
}

// NewHub creates a notification hub. A zero duration means
// DefaultDuration; a nil logger means a default stderr logger.
func NewHub(duration time.Duration, logger *log.Logger) *Hub {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[notify] ", log.LstdFlags)
	}
	return &Hub{
		active:   make(map[int]Notification),
		timers:   make(map[int]*time.Timer),
		duration: duration,
		logger:   logger,
	}
}

// Show records a notification and schedules its auto-dismiss.
// It returns the notification id for early dismissal.
func (h *Hub) Show(level Level, msg string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	id := h.seq
	h.active[id] = Notification{
		ID:      id,
		Level:   level,
		Message: msg,
		ShownAt: time.Now(),
	}
	h.logger.Printf("%s: %s", level, msg)

	h.timers[id] = time.AfterFunc(h.duration, func() {
		h.Dismiss(id)
	})
	return id
}

// Dismiss removes a notification before its auto-dismiss fires.
// Dismissing an unknown or already-dismissed id is a no-op.
func (h *Hub) Dismiss(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if t, ok := h.timers[id]; ok {
		t.Stop()
		delete(h.timers, id)
	}
	delete(h.active, id)
}

// Active returns the notifications currently shown, oldest first.
func (h *Hub) Active() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Notification, 0, len(h.active))
	for _, n := range h.active {
		out = append(out, n)
	}
	// Oldest first by sequence.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].ID > out[j].ID; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Success implements Notifier.
func (h *Hub) Success(msg string) { h.Show(LevelSuccess, msg) }

// Info implements Notifier.
func (h *Hub) Info(msg string) { h.Show(LevelInfo, msg) }

// Error implements Notifier.
func (h *Hub) Error(msg string) { h.Show(LevelError, msg) }
