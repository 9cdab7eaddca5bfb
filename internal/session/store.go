// Package session holds the process-wide authenticated identity and its
// durable copy on disk. There is at most one identity at a time; every
// reader sees the same value, and the resolver re-checks it through
// Current on each evaluation rather than caching.
package session

import (
	"encoding/json"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var (
	bucketName = []byte("session")
	recordKey  = []byte("current")
)

// Identity is one authenticated user.
type Identity struct {
	Username  string
	Token     string
	ExpiresAt time.Time // zero when the token carries no expiry
}

// Expired reports whether the identity's token has an expiry in the
// past. Identities without an expiry never expire here; the server
// still rejects them if it disagrees.
func (id Identity) Expired(now time.Time) bool {
	return !id.ExpiresAt.IsZero() && now.After(id.ExpiresAt)
}

// record is the durable shape. Only the token is authoritative; the
// username is kept so the UI can greet before any network call.
type record struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Store coordinates access to the identity.
type Store struct {
	mu      sync.RWMutex
	current Identity
	present bool
	subs    []func()

	db  *bolt.DB // nil when running memory-only
	log *zap.Logger
}

// Open creates a store backed by the bbolt file at path. Any failure
// to open the file degrades to a memory-only store: the user just has
// to log in again next launch. An empty path skips persistence
// entirely, which the tests use.
func Open(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{log: log}
	if path == "" {
		return s
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		log.Warn("session store unavailable, running memory-only",
			zap.String("path", path), zap.Error(err))
		return s
	}
	s.db = db
	return s
}

// Close releases the underlying database, if any.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Current returns the identity, if one is present.
func (s *Store) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.present
}

// Authed reports whether an identity is present.
func (s *Store) Authed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.present
}

// Restore loads the durable record once at boot. A missing, corrupt or
// expired record means no session; that is an answer, not an error, so
// none is returned. Restore does not notify subscribers since nothing
// has observed the store yet.
func (s *Store) Restore() (Identity, bool) {
	rec, ok := s.loadRecord()
	if !ok {
		return Identity{}, false
	}

	id := Identity{Username: rec.Username, Token: rec.Token}
	sub, exp, err := decodeToken(rec.Token)
	if err != nil {
		s.log.Debug("stored token unreadable, dropping session", zap.Error(err))
		s.wipeRecord()
		return Identity{}, false
	}
	if sub != "" {
		id.Username = sub
	}
	id.ExpiresAt = exp
	if id.Expired(time.Now()) {
		s.log.Debug("stored session expired", zap.Time("expiresAt", exp))
		s.wipeRecord()
		return Identity{}, false
	}

	s.mu.Lock()
	s.current = id
	s.present = true
	s.mu.Unlock()

	s.log.Info("session restored", zap.String("username", id.Username))
	return id, true
}

// Set installs the identity and persists it. When the caller has not
// filled in the expiry or username, both are recovered from the token's
// claims. Subscribers are notified after the change is visible.
func (s *Store) Set(id Identity) {
	if sub, exp, err := decodeToken(id.Token); err == nil {
		if id.Username == "" {
			id.Username = sub
		}
		if id.ExpiresAt.IsZero() {
			id.ExpiresAt = exp
		}
	}

	s.mu.Lock()
	s.current = id
	s.present = true
	s.mu.Unlock()

	s.saveRecord(record{Username: id.Username, Token: id.Token})
	s.notify()
}

// Clear drops the identity and its durable record, then notifies
// subscribers. Clearing an absent session is a no-op.
func (s *Store) Clear() {
	s.mu.Lock()
	wasPresent := s.present
	s.current = Identity{}
	s.present = false
	s.mu.Unlock()

	if !wasPresent {
		return
	}
	s.wipeRecord()
	s.notify()
}

// Subscribe registers fn to run after every Set and Clear. The
// subscription list is append-only; there is no unsubscribe.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	// Outside the lock so a subscriber may call back into the store.
	for _, fn := range subs {
		fn()
	}
}

func (s *Store) loadRecord() (record, bool) {
	if s.db == nil {
		return record{}, false
	}

	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		if v := b.Get(recordKey); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return record{}, false
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil || rec.Token == "" {
		return record{}, false
	}
	return rec, true
}

func (s *Store) saveRecord(rec record) {
	if s.db == nil {
		return
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		s.log.Warn("session not persisted", zap.Error(err))
		return
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		return b.Put(recordKey, raw)
	})
	if err != nil {
		s.log.Warn("session not persisted", zap.Error(err))
	}
}

func (s *Store) wipeRecord() {
	if s.db == nil {
		return
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		return b.Delete(recordKey)
	})
	if err != nil {
		s.log.Warn("stored session not removed", zap.Error(err))
	}
}

