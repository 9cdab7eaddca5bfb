package app

import (
	"context"
	"testing"
	"time"

	"deckhand/internal/session"
)

func TestCheckExpiry(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{"no expiry recorded", time.Time{}, false},
		{"expires later", now.Add(time.Hour), false},
		{"already expired", now.Add(-time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.Open("", nil)
			store.Set(session.Identity{Username: "rifthunter", Token: "opaque", ExpiresAt: tt.expires})

			fired := false
			got := checkExpiry(store, now, func() { fired = true })
			if got != tt.want {
				t.Fatalf("checkExpiry = %v, want %v", got, tt.want)
			}
			if fired != tt.want {
				t.Fatalf("callback fired = %v, want %v", fired, tt.want)
			}
			wantAuthed := !tt.want
			if store.Authed() != wantAuthed {
				t.Fatalf("Authed = %v after check, want %v", store.Authed(), wantAuthed)
			}
		})
	}
}

func TestCheckExpiry_NoSession(t *testing.T) {
	store := session.Open("", nil)
	if checkExpiry(store, time.Now(), func() { t.Fatal("callback fired without a session") }) {
		t.Fatal("checkExpiry = true with no session")
	}
}

func TestStartExpiryWatch_SignsOutOnExpiry(t *testing.T) {
	store := session.Open("", nil)
	store.Set(session.Identity{
		Username:  "rifthunter",
		Token:     "opaque",
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 1)
	StartExpiryWatch(ctx, store, 10*time.Millisecond, func() { fired <- struct{}{} })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("expiry watcher never fired")
	}
	if store.Authed() {
		t.Fatal("session still present after expiry")
	}
}
