package app

import (
	"context"
	"time"

	"deckhand/internal/session"
)

const defaultWatchInterval = 30 * time.Second

// StartExpiryWatch launches a background goroutine that clears the session
// once the stored token passes its expiry, then fires the callback so the
// UI can explain the sign-out. It returns immediately.
func StartExpiryWatch(ctx context.Context, store *session.Store, interval time.Duration, expired func()) {
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			checkExpiry(store, time.Now(), expired)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// checkExpiry reports whether it signed the user out. Tokens that carry no
// expiry never trip it; the server's 401 handling covers those.
func checkExpiry(store *session.Store, now time.Time, expired func()) bool {
	id, ok := store.Current()
	if !ok || !id.Expired(now) {
		return false
	}
	store.Clear()
	if expired != nil {
		expired()
	}
	return true
}
