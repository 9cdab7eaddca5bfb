package reconcile

import (
	"errors"
	"testing"
)

func TestMap_LatestGenerationWins(t *testing.T) {
	m := NewMap[string, string]()

	first := m.Begin("OGN-001")
	second := m.Begin("OGN-001")

	// The newer attempt settles before the older one.
	if !m.Finish(second, "art-v2", nil) {
		t.Fatalf("Finish(second) = false, want applied")
	}
	if m.Finish(first, "art-v1", nil) {
		t.Fatalf("Finish(first) = true, want stale discard")
	}

	got, ok := m.Get("OGN-001")
	if !ok || got != "art-v2" {
		t.Fatalf("Get = %q, %v, want art-v2 from the newest attempt", got, ok)
	}
}

func TestMap_LateOldSuccessNeverOverwrites(t *testing.T) {
	m := NewMap[string, int]()

	first := m.Begin("k")
	second := m.Begin("k")

	if m.Finish(first, 1, nil) {
		t.Fatalf("stale first attempt applied")
	}
	if m.Loading("k") != true {
		t.Fatalf("Loading = false, want true while the newest attempt is open")
	}
	if !m.Finish(second, 2, nil) {
		t.Fatalf("current attempt not applied")
	}
	if got, _ := m.Get("k"); got != 2 {
		t.Fatalf("Get = %d, want 2", got)
	}
}

func TestMap_FailureKeepsLastKnownGood(t *testing.T) {
	m := NewMap[string, string]()

	ok1 := m.Begin("OGN-045")
	if !m.Finish(ok1, "hero.png", nil) {
		t.Fatalf("first attempt not applied")
	}

	failed := m.Begin("OGN-045")
	boom := errors.New("boom")
	if !m.Finish(failed, "", boom) {
		t.Fatalf("current failure should settle the slot")
	}

	got, ok := m.Get("OGN-045")
	if !ok || got != "hero.png" {
		t.Fatalf("Get = %q, %v, want previous value retained after failure", got, ok)
	}
	if err := m.Err("OGN-045"); !errors.Is(err, boom) {
		t.Fatalf("Err = %v, want boom", err)
	}

	// The next success clears the recorded error.
	again := m.Begin("OGN-045")
	if !m.Finish(again, "hero2.png", nil) {
		t.Fatalf("retry not applied")
	}
	if err := m.Err("OGN-045"); err != nil {
		t.Fatalf("Err = %v, want nil after success", err)
	}
}

func TestMap_StaleFailureLeavesNoTrace(t *testing.T) {
	m := NewMap[string, string]()

	good := m.Begin("k")
	if !m.Finish(good, "v", nil) {
		t.Fatalf("initial attempt not applied")
	}

	superseded := m.Begin("k")
	_ = m.Begin("k") // newest attempt, still in flight

	if m.Finish(superseded, "", errors.New("slow failure")) {
		t.Fatalf("stale failure applied")
	}
	if err := m.Err("k"); err != nil {
		t.Fatalf("Err = %v, want nil; stale failures must be invisible", err)
	}
	if !m.Loading("k") {
		t.Fatalf("Loading = false, want true; newest attempt is still open")
	}
}

func TestMap_KeysAreIndependent(t *testing.T) {
	m := NewMap[string, string]()

	m.Begin("stuck") // never settles

	other := m.Begin("fine")
	if !m.Finish(other, "done", nil) {
		t.Fatalf("independent key blocked by a pending one")
	}
	if got, ok := m.Get("fine"); !ok || got != "done" {
		t.Fatalf("Get(fine) = %q, %v", got, ok)
	}
	if !m.Loading("stuck") {
		t.Fatalf("pending key should still be loading")
	}
	if m.Idle() {
		t.Fatalf("Idle = true with an attempt in flight")
	}
}

func TestMap_IdleAfterAllSettle(t *testing.T) {
	m := NewMap[int, string]()
	if !m.Idle() {
		t.Fatalf("empty map should be idle")
	}

	a := m.Begin(1)
	b := m.Begin(2)
	m.Finish(a, "a", nil)
	if m.Idle() {
		t.Fatalf("Idle = true with one attempt open")
	}
	m.Finish(b, "b", nil)
	if !m.Idle() {
		t.Fatalf("Idle = false after all attempts settled")
	}
}

func TestMap_DropInvalidatesInFlight(t *testing.T) {
	m := NewMap[string, string]()

	old := m.Begin("k")
	m.Drop("k")

	if m.Finish(old, "ghost", nil) {
		t.Fatalf("attempt for a dropped slot applied")
	}
	if _, ok := m.Get("k"); ok {
		t.Fatalf("dropped slot resurrected")
	}

	// A fresh attempt after the drop works normally.
	fresh := m.Begin("k")
	if !m.Finish(fresh, "new", nil) {
		t.Fatalf("fresh attempt after drop not applied")
	}
	if got, _ := m.Get("k"); got != "new" {
		t.Fatalf("Get = %q, want new", got)
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
}

func TestSlot_SelectionRace(t *testing.T) {
	s := NewSlot[string]()

	// Select card A, then card B before A's art arrives.
	forA := s.Begin()
	forB := s.Begin()

	if !s.Finish(forB, "b.png", nil) {
		t.Fatalf("newest selection not applied")
	}
	if s.Finish(forA, "a.png", nil) {
		t.Fatalf("superseded selection applied")
	}

	got, ok := s.Get()
	if !ok || got != "b.png" {
		t.Fatalf("Get = %q, %v, want b.png", got, ok)
	}
	if s.Loading() {
		t.Fatalf("Loading = true after the newest attempt settled")
	}
}

func TestSlot_ResetClearsValue(t *testing.T) {
	s := NewSlot[int]()

	tk := s.Begin()
	s.Finish(tk, 7, nil)
	s.Reset()

	if _, ok := s.Get(); ok {
		t.Fatalf("value survived Reset")
	}
	if s.Err() != nil || s.Loading() {
		t.Fatalf("Reset slot should be empty and idle")
	}
}
