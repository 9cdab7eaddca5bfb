// Package apitest runs an in-process fake of the deckhand backend for
// tests. It speaks the same JSON contract as the real service, issues
// real (HS256) tokens, and lets tests inject failures and count hits
// without any network beyond the loopback httptest listener.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	jwt "github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"deckhand/internal/api"
)

const signingSecret = "apitest-secret"

// Account is one seeded user with its server-side state.
type Account struct {
	Password    string
	User        api.User
	Preferences api.Preferences
	Keys        []api.InviteKey
}

type plannedFailure struct {
	status int
	detail string
}

// Server is the fake backend. Fields are guarded by mu; tests touch
// them only through the helper methods.
type Server struct {
	HTTP *httptest.Server

	mu       sync.Mutex
	accounts map[string]*Account // by username
	tokens   map[string]string   // token -> username
	decks    map[string]api.Deck // by share code
	images   map[string]string   // variant -> art URL
	invites  map[string]*api.InviteKey
	failures []plannedFailure
	hits     map[string]int // "METHOD path" -> count
}

// New starts the fake backend and shuts it down with the test.
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		accounts: make(map[string]*Account),
		tokens:   make(map[string]string),
		decks:    make(map[string]api.Deck),
		images:   make(map[string]string),
		invites:  make(map[string]*api.InviteKey),
		hits:     make(map[string]int),
	}

	r := mux.NewRouter()
	r.Use(s.bookkeeping)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/password", s.handlePassword).Methods(http.MethodPost)
	r.HandleFunc("/api/users/me", s.handleMe).Methods(http.MethodGet)
	r.HandleFunc("/api/users/me/preferences", s.handleGetPreferences).Methods(http.MethodGet)
	r.HandleFunc("/api/users/me/preferences", s.handlePatchPreferences).Methods(http.MethodPatch)
	r.HandleFunc("/api/users/me/keys", s.handleKeys).Methods(http.MethodGet)
	r.HandleFunc("/api/decks", s.handleListDecks).Methods(http.MethodGet)
	r.HandleFunc("/api/decks/{code}", s.handleFetchDeck).Methods(http.MethodGet)
	r.HandleFunc("/api/cards/{variant}/image", s.handleCardImage).Methods(http.MethodGet)

	s.HTTP = httptest.NewServer(r)
	t.Cleanup(s.HTTP.Close)
	return s
}

// URL is the base URL clients should dial.
func (s *Server) URL() string {
	return s.HTTP.URL
}

// Client returns an api.Client wired to this server, reading its bearer
// token through tokenFn.
func (s *Server) Client(t *testing.T, tokenFn func() string) *api.Client {
	t.Helper()

	c, err := api.NewClient(s.URL(), tokenFn)
	if err != nil {
		t.Fatalf("apitest client: %v", err)
	}
	return c
}

// AddUser seeds an account and returns a valid token for it.
func (s *Server) AddUser(username, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	s.accounts[username] = &Account{
		Password: password,
		User: api.User{
			ID:          uuid.NewString(),
			Username:    username,
			Email:       username + "@example.com",
			DateCreated: now,
			LastUpdated: now,
		},
		Preferences: api.Preferences{DisplayName: username, Theme: "dark"},
	}
	return s.issueToken(username)
}

// SetPreferences replaces a seeded user's stored preferences.
func (s *Server) SetPreferences(username string, p api.Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct, ok := s.accounts[username]; ok {
		acct.Preferences = p
	}
}

// AddInviteKey seeds a registration key. maxUses <= 0 means unlimited.
func (s *Server) AddInviteKey(owner, key string, usedCount, maxUses int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := &api.InviteKey{
		Key:          key,
		UsedCount:    usedCount,
		MaxUses:      maxUses,
		FullyClaimed: maxUses > 0 && usedCount >= maxUses,
	}
	s.invites[key] = k
	if acct, ok := s.accounts[owner]; ok {
		acct.Keys = append(acct.Keys, *k)
	}
}

// AddDeck seeds a deck, generating a share code when it has none.
func (s *Server) AddDeck(d api.Deck) api.Deck {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.Code == "" {
		d.Code = strings.ToUpper(uuid.NewString()[:8])
	}
	if d.LastUpdated == "" {
		d.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	}
	s.decks[d.Code] = d
	return d
}

// SetCardImage seeds art for a card variant.
func (s *Server) SetCardImage(variant, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[variant] = url
}

// FailNext makes the next matched request fail with the given status
// and detail message. Queued failures apply in order, one per request.
func (s *Server) FailNext(status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, plannedFailure{status: status, detail: detail})
}

// Hits reports how many requests matched "METHOD /path".
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// ExpiredToken returns a token for the user that is already past its
// expiry. The server itself will reject it with 401.
func (s *Server) ExpiredToken(username string) string {
	raw, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte(signingSecret))
	return raw
}

func (s *Server) issueToken(username string) string {
	raw, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(signingSecret))
	s.tokens[raw] = username
	return raw
}

// bookkeeping counts hits and serves planned failures before the real
// handlers run.
func (s *Server) bookkeeping(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		var fail *plannedFailure
		if len(s.failures) > 0 {
			fail = &s.failures[0]
			s.failures = s.failures[1:]
		}
		s.mu.Unlock()

		if fail != nil {
			writeDetail(w, fail.status, fail.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authorize resolves the bearer token to a username. Expired tokens are
// rejected like unknown ones.
func (s *Server) authorize(r *http.Request) (string, bool) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if raw == "" || raw == r.Header.Get("Authorization") {
		return "", false
	}

	token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
		return []byte(signingSecret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.tokens[raw]
	return username, ok
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[body.Username]
	s.mu.Unlock()
	if !ok || acct.Password != body.Password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	s.mu.Lock()
	token := s.issueToken(body.Username)
	user := acct.User
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, api.AuthResponse{Token: token, User: user})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[body.Username]; exists {
		writeDetail(w, http.StatusBadRequest, "Username already taken")
		return
	}
	key, ok := s.invites[body.InviteCode]
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Invalid registration key")
		return
	}
	if key.FullyClaimed {
		writeDetail(w, http.StatusBadRequest, "Registration key fully claimed")
		return
	}
	key.UsedCount++
	if key.MaxUses > 0 && key.UsedCount >= key.MaxUses {
		key.FullyClaimed = true
	}

	now := time.Now().UTC().Format(time.RFC3339)
	s.accounts[body.Username] = &Account{
		Password: body.Password,
		User: api.User{
			ID:          uuid.NewString(),
			Username:    body.Username,
			Email:       body.Email,
			DateCreated: now,
			LastUpdated: now,
		},
		Preferences: api.Preferences{DisplayName: body.Username, Theme: "dark"},
	}
	token := s.issueToken(body.Username)
	writeJSON(w, http.StatusOK, api.AuthResponse{Token: token, User: s.accounts[body.Username].User})
}

func (s *Server) handlePassword(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authorize(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accounts[username]
	if acct.Password != body.CurrentPassword {
		writeDetail(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	acct.Password = body.NewPassword
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authorize(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	s.mu.Lock()
	user := s.accounts[username].User
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authorize(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	s.mu.Lock()
	prefs := s.accounts[username].Preferences
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handlePatchPreferences(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authorize(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var patch api.PreferencesPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accounts[username]
	if patch.DisplayName != nil {
		acct.Preferences.DisplayName = *patch.DisplayName
	}
	if patch.ProfileCard != nil {
		acct.Preferences.ProfileCard = *patch.ProfileCard
	}
	if patch.Theme != nil {
		acct.Preferences.Theme = *patch.Theme
	}
	if patch.ScreenshotMode != nil {
		acct.Preferences.ScreenshotMode = *patch.ScreenshotMode
	}
	acct.User.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	writeJSON(w, http.StatusOK, acct.Preferences)
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authorize(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accounts[username]
	keys := make([]api.InviteKey, 0, len(acct.Keys))
	for _, k := range acct.Keys {
		if live, ok := s.invites[k.Key]; ok {
			keys = append(keys, *live)
		} else {
			keys = append(keys, k)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"keys": keys})
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authorize(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	decks := make([]api.Deck, 0)
	for _, d := range s.decks {
		if d.Owner == username {
			decks = append(decks, d)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"decks": decks})
}

func (s *Server) handleFetchDeck(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	s.mu.Lock()
	deck, ok := s.decks[code]
	s.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Deck not found")
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (s *Server) handleCardImage(w http.ResponseWriter, r *http.Request) {
	variant := mux.Vars(r)["variant"]

	s.mu.Lock()
	url, ok := s.images[variant]
	s.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "No image for card")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
