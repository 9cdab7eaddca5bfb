package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	jwt "github.com/form3tech-oss/jwt-go"
)

func makeToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{"sub": sub}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestStore_SetCurrentClear(t *testing.T) {
	s := Open("", nil)

	if _, ok := s.Current(); ok {
		t.Fatalf("fresh store has an identity")
	}

	tok := makeToken(t, "rifthunter", time.Now().Add(time.Hour))
	s.Set(Identity{Username: "rifthunter", Token: tok})

	got, ok := s.Current()
	if !ok || got.Username != "rifthunter" || got.Token != tok {
		t.Fatalf("Current = %+v, %v", got, ok)
	}
	if !s.Authed() {
		t.Fatalf("Authed = false after Set")
	}

	s.Clear()
	if _, ok := s.Current(); ok {
		t.Fatalf("identity survived Clear")
	}
}

func TestStore_SetFillsInClaims(t *testing.T) {
	s := Open("", nil)

	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	s.Set(Identity{Token: makeToken(t, "rifthunter", exp)})

	got, ok := s.Current()
	if !ok {
		t.Fatalf("no identity after Set")
	}
	if got.Username != "rifthunter" {
		t.Fatalf("Username = %q, want claim subject", got.Username)
	}
	if !got.ExpiresAt.Equal(exp) {
		t.Fatalf("ExpiresAt = %v, want %v", got.ExpiresAt, exp)
	}
}

func TestStore_RestoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := makeToken(t, "rifthunter", exp)

	s := Open(path, nil)
	s.Set(Identity{Token: tok})
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2 := Open(path, nil)
	defer s2.Close()

	id, ok := s2.Restore()
	if !ok {
		t.Fatalf("Restore found nothing")
	}
	if id.Username != "rifthunter" || id.Token != tok || !id.ExpiresAt.Equal(exp) {
		t.Fatalf("Restore = %+v", id)
	}
	if cur, ok := s2.Current(); !ok || cur.Token != tok {
		t.Fatalf("Current after Restore = %+v, %v", cur, ok)
	}
}

func TestStore_RestoreEmptyDatabase(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "session.db"), nil)
	defer s.Close()

	if _, ok := s.Restore(); ok {
		t.Fatalf("Restore invented a session")
	}
}

func TestStore_RestoreDropsExpired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	tok := makeToken(t, "rifthunter", time.Now().Add(-time.Minute))

	s := Open(path, nil)
	s.Set(Identity{Token: tok, ExpiresAt: time.Now().Add(time.Hour)}) // caller's optimism does not matter
	s.Close()

	s2 := Open(path, nil)
	defer s2.Close()
	if _, ok := s2.Restore(); ok {
		t.Fatalf("expired session restored")
	}

	// The record is wiped, not just skipped.
	if rec, ok := s2.loadRecord(); ok {
		t.Fatalf("expired record still on disk: %+v", rec)
	}
}

func TestStore_RestoreDropsUnreadableToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s := Open(path, nil)
	s.Set(Identity{Username: "rifthunter", Token: "not-a-jwt"})
	s.Close()

	s2 := Open(path, nil)
	defer s2.Close()
	if _, ok := s2.Restore(); ok {
		t.Fatalf("unreadable token restored")
	}
}

func TestStore_OpenUnusableFileDegradesToMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	if err := os.WriteFile(path, []byte("not a database"), 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	s := Open(path, nil)
	defer s.Close()

	// Still fully usable, just not durable.
	s.Set(Identity{Token: makeToken(t, "rifthunter", time.Time{})})
	if !s.Authed() {
		t.Fatalf("memory-only store rejected Set")
	}
	if _, ok := s.Restore(); ok {
		t.Fatalf("memory-only store restored a session")
	}
}

func TestStore_SubscribeSeesSetAndClear(t *testing.T) {
	s := Open("", nil)

	var calls int
	s.Subscribe(func() { calls++ })

	s.Set(Identity{Token: makeToken(t, "a", time.Time{})})
	if calls != 1 {
		t.Fatalf("calls = %d after Set, want 1", calls)
	}

	s.Clear()
	if calls != 2 {
		t.Fatalf("calls = %d after Clear, want 2", calls)
	}

	// Clearing an absent session changes nothing and stays silent.
	s.Clear()
	if calls != 2 {
		t.Fatalf("calls = %d after redundant Clear, want 2", calls)
	}
}

func TestStore_SubscriberMayReadBack(t *testing.T) {
	s := Open("", nil)

	var seen bool
	s.Subscribe(func() {
		_, seen = s.Current()
	})

	s.Set(Identity{Token: makeToken(t, "a", time.Time{})})
	if !seen {
		t.Fatalf("subscriber observed stale state")
	}
}

func TestIdentity_Expired(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		exp  time.Time
		want bool
	}{
		{"no expiry", time.Time{}, false},
		{"future", now.Add(time.Minute), false},
		{"past", now.Add(-time.Minute), true},
	}
	for _, tt := range tests {
		id := Identity{ExpiresAt: tt.exp}
		if got := id.Expired(now); got != tt.want {
			t.Errorf("%s: Expired = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDecodeToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := makeToken(t, "rifthunter", exp)

	sub, gotExp, err := decodeToken(raw)
	if err != nil {
		t.Fatalf("decodeToken: %v", err)
	}
	if sub != "rifthunter" {
		t.Fatalf("sub = %q", sub)
	}
	if !gotExp.Equal(exp) {
		t.Fatalf("exp = %v, want %v", gotExp, exp)
	}

	if _, _, err := decodeToken("garbage"); err == nil {
		t.Fatalf("decodeToken accepted garbage")
	}
}
