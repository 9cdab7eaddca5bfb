// Package toast holds the transient notification queue.
//
// The queue is a pure state machine: it owns toast ordering and the
// Visible/Dismissing lifecycle, while the caller owns the timers. Both
// the display timer and the removal grace timer report back through
// Dismiss and Remove, which are guarded by toast id and state so a
// timer that fires after the toast moved on is a no-op instead of a
// race against a second timer.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RemoveGrace is how long a dismissing toast lingers before it is
// purged, long enough for the UI to play its exit.
const RemoveGrace = 300 * time.Millisecond

// Level classifies a toast for styling and default duration.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

// DurationFor returns the default display duration for a level.
// Errors stay up longer since the user usually has to act on them.
func DurationFor(l Level) time.Duration {
	switch l {
	case LevelWarn:
		return 5 * time.Second
	case LevelError:
		return 7 * time.Second
	default:
		return 4 * time.Second
	}
}

// State is a toast's lifecycle phase. Removed toasts are purged from
// the queue rather than flagged, so there is no terminal state here.
type State int

const (
	StateVisible State = iota
	StateDismissing
)

// Toast is one queued notification.
type Toast struct {
	ID       string
	Content  string
	Level    Level
	Duration time.Duration
	State    State
	Created  time.Time
}

// Queue is an ordered set of live toasts, oldest first.
type Queue struct {
	mu     sync.Mutex
	toasts []Toast
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push appends a new visible toast and returns it. The returned ID is
// unique for the life of the process; callers key their timers on it.
// A non-positive duration falls back to the level default.
func (q *Queue) Push(content string, level Level, d time.Duration) Toast {
	if d <= 0 {
		d = DurationFor(level)
	}
	t := Toast{
		ID:       uuid.NewString(),
		Content:  content,
		Level:    level,
		Duration: d,
		State:    StateVisible,
		Created:  time.Now(),
	}

	q.mu.Lock()
	q.toasts = append(q.toasts, t)
	q.mu.Unlock()
	return t
}

// Dismiss moves a visible toast into its exit grace period. It serves
// both the elapsed display timer and manual dismissal; whichever
// arrives second finds the toast already dismissing and reports false,
// so only one removal timer ever gets scheduled.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.toasts {
		if q.toasts[i].ID == id && q.toasts[i].State == StateVisible {
			q.toasts[i].State = StateDismissing
			return true
		}
	}
	return false
}

// Remove purges a dismissing toast once its grace period has elapsed.
// Anything else, a toast still visible or one already gone, is left
// alone and reported false.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.toasts {
		if q.toasts[i].ID == id && q.toasts[i].State == StateDismissing {
			q.toasts = append(q.toasts[:i], q.toasts[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns a snapshot of the live toasts, oldest first.
func (q *Queue) Items() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Toast, len(q.toasts))
	copy(out, q.toasts)
	return out
}

// Len reports how many toasts are live, dismissing ones included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.toasts)
}
