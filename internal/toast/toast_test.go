package toast

import (
	"testing"
	"time"
)

func TestQueue_PushOrdering(t *testing.T) {
	q := NewQueue()

	first := q.Push("saved", LevelSuccess, 0)
	second := q.Push("copied", LevelInfo, 0)
	third := q.Push("failed", LevelError, 0)

	items := q.Items()
	if len(items) != 3 {
		t.Fatalf("Len = %d, want 3", len(items))
	}
	want := []string{first.ID, second.ID, third.ID}
	for i, it := range items {
		if it.ID != want[i] {
			t.Fatalf("items[%d].ID = %s, want %s (oldest first)", i, it.ID, want[i])
		}
		if it.State != StateVisible {
			t.Fatalf("items[%d] pushed in state %v, want visible", i, it.State)
		}
	}
	if first.ID == second.ID || second.ID == third.ID {
		t.Fatalf("toast ids not unique: %s %s %s", first.ID, second.ID, third.ID)
	}
}

func TestQueue_DefaultDurations(t *testing.T) {
	q := NewQueue()

	tests := []struct {
		level Level
		want  time.Duration
	}{
		{LevelInfo, 4 * time.Second},
		{LevelSuccess, 4 * time.Second},
		{LevelWarn, 5 * time.Second},
		{LevelError, 7 * time.Second},
	}
	for _, tt := range tests {
		got := q.Push("x", tt.level, 0)
		if got.Duration != tt.want {
			t.Fatalf("Push(level %v).Duration = %v, want %v", tt.level, got.Duration, tt.want)
		}
	}

	explicit := q.Push("x", LevelInfo, 1500*time.Millisecond)
	if explicit.Duration != 1500*time.Millisecond {
		t.Fatalf("explicit duration overridden: %v", explicit.Duration)
	}
}

func TestQueue_FullLifecycle(t *testing.T) {
	q := NewQueue()
	tst := q.Push("done", LevelSuccess, 0)

	if !q.Dismiss(tst.ID) {
		t.Fatalf("Dismiss of a visible toast = false")
	}
	items := q.Items()
	if len(items) != 1 || items[0].State != StateDismissing {
		t.Fatalf("after Dismiss: %+v, want one dismissing toast", items)
	}

	if !q.Remove(tst.ID) {
		t.Fatalf("Remove of a dismissing toast = false")
	}
	if q.Len() != 0 {
		t.Fatalf("Len = %d after Remove, want 0 (purged, not hidden)", q.Len())
	}
}

func TestQueue_SecondDismissIsNoop(t *testing.T) {
	q := NewQueue()
	tst := q.Push("done", LevelInfo, 0)

	// Manual dismiss wins; the display timer fires afterwards.
	if !q.Dismiss(tst.ID) {
		t.Fatalf("first Dismiss = false")
	}
	if q.Dismiss(tst.ID) {
		t.Fatalf("second Dismiss = true, want no-op so only one removal is scheduled")
	}
}

func TestQueue_RemoveGuards(t *testing.T) {
	q := NewQueue()
	tst := q.Push("done", LevelInfo, 0)

	if q.Remove(tst.ID) {
		t.Fatalf("Remove of a visible toast = true, want refusal (never skip dismissing)")
	}

	q.Dismiss(tst.ID)
	q.Remove(tst.ID)
	if q.Remove(tst.ID) {
		t.Fatalf("Remove of a purged toast = true, want no-op")
	}
	if q.Dismiss(tst.ID) {
		t.Fatalf("Dismiss of a purged toast = true, want no-op")
	}
}

func TestQueue_ToastsAreIndependent(t *testing.T) {
	q := NewQueue()
	a := q.Push("a", LevelInfo, 0)
	b := q.Push("b", LevelInfo, 0)
	c := q.Push("c", LevelInfo, 0)

	// Removing the middle toast must not disturb its neighbours.
	q.Dismiss(b.ID)
	if !q.Remove(b.ID) {
		t.Fatalf("Remove(b) = false")
	}

	items := q.Items()
	if len(items) != 2 || items[0].ID != a.ID || items[1].ID != c.ID {
		t.Fatalf("after removing b: %+v, want [a c] untouched", items)
	}
	for _, it := range items {
		if it.State != StateVisible {
			t.Fatalf("neighbour %s state = %v, want still visible", it.ID, it.State)
		}
	}

	// b's late display timer finds nothing to act on.
	if q.Dismiss(b.ID) {
		t.Fatalf("stale timer for removed toast dismissed something")
	}
}

func TestQueue_ItemsIsASnapshot(t *testing.T) {
	q := NewQueue()
	tst := q.Push("x", LevelInfo, 0)

	items := q.Items()
	items[0].State = StateDismissing

	if got := q.Items()[0].State; got != StateVisible {
		t.Fatalf("mutating a snapshot leaked into the queue: %v", got)
	}
	_ = tst
}
