// Package api is the HTTP client for the deckhand backend. All payloads
// are JSON; authenticated calls carry a bearer token read lazily from
// the session so the client never holds a stale copy. Service failures
// come back as *Error with the server's human-readable message when one
// was provided.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
)

// Service is the backend surface the UI consumes. It is implemented by
// *Client and can be substituted in tests.
type Service interface {
	Login(ctx context.Context, username, password string) (AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	ChangePassword(ctx context.Context, current, next string) error
	Me(ctx context.Context) (User, error)
	Preferences(ctx context.Context) (Preferences, error)
	UpdatePreferences(ctx context.Context, patch PreferencesPatch) (Preferences, error)
	InviteKeys(ctx context.Context) ([]InviteKey, error)
	ListDecks(ctx context.Context) ([]Deck, error)
	FetchDeck(ctx context.Context, code string) (Deck, error)
	CardImage(ctx context.Context, variant string) (string, bool, error)
}

// Ensure Client implements Service at compile time.
var _ Service = (*Client)(nil)

// RegisterRequest carries a registration submission.
type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	InviteCode string `json:"inviteCode"`
}

// Error is a failure reported by the backend, as opposed to a transport
// failure. Message holds the server's "detail" string when the response
// carried one.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Message extracts the server's message from err when it is an *Error,
// else the empty string so callers can fall back to their own wording.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// Client talks to the deckhand backend HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	token     func() string
}

const (
	defaultServerURL = "http://127.0.0.1:8000"
	defaultUserAgent = "deckhand/0.1"
	requestTimeout   = 10 * time.Second

	retryInitialInterval = 250 * time.Millisecond
	retryMaxElapsed      = 5 * time.Second
)

// NewClient builds a Client for the given server URL. token is consulted
// on every request and may return "" while signed out; it must be safe
// to call from any goroutine.
func NewClient(serverURL string, token func() string) (*Client, error) {
	base, err := parseBaseURL(serverURL)
	if err != nil {
		return nil, err
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		token:     token,
	}, nil
}

// Login exchanges credentials for a token and the account record.
func (c *Client) Login(ctx context.Context, username, password string) (AuthResponse, error) {
	if c == nil {
		return AuthResponse{}, fmt.Errorf("client is nil")
	}
	body := map[string]string{"username": username, "password": password}
	var payload AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &payload); err != nil {
		return AuthResponse{}, err
	}
	return payload, nil
}

// Register creates an account using an invite code and signs it in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	if c == nil {
		return AuthResponse{}, fmt.Errorf("client is nil")
	}
	var payload AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &payload); err != nil {
		return AuthResponse{}, err
	}
	return payload, nil
}

// ChangePassword swaps the account password. The server re-checks the
// current password; local validation has already run by the time this
// is called.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return c.do(ctx, http.MethodPost, "/api/auth/password", body, nil)
}

// Me retrieves the signed-in account record.
func (c *Client) Me(ctx context.Context) (User, error) {
	if c == nil {
		return User{}, fmt.Errorf("client is nil")
	}
	var payload User
	if err := c.get(ctx, "/api/users/me", &payload); err != nil {
		return User{}, err
	}
	return payload, nil
}

// Preferences retrieves the stored preferences record.
func (c *Client) Preferences(ctx context.Context) (Preferences, error) {
	if c == nil {
		return Preferences{}, fmt.Errorf("client is nil")
	}
	var payload Preferences
	if err := c.get(ctx, "/api/users/me/preferences", &payload); err != nil {
		return Preferences{}, err
	}
	return payload, nil
}

// UpdatePreferences applies a partial update and returns the full record
// the server persisted. Callers display the echo, never their own patch.
func (c *Client) UpdatePreferences(ctx context.Context, patch PreferencesPatch) (Preferences, error) {
	if c == nil {
		return Preferences{}, fmt.Errorf("client is nil")
	}
	var payload Preferences
	if err := c.do(ctx, http.MethodPatch, "/api/users/me/preferences", patch, &payload); err != nil {
		return Preferences{}, err
	}
	return payload, nil
}

// InviteKeys retrieves the user's registration keys with usage counts.
func (c *Client) InviteKeys(ctx context.Context) ([]InviteKey, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload keyListResponse
	if err := c.get(ctx, "/api/users/me/keys", &payload); err != nil {
		return nil, err
	}
	return payload.Keys, nil
}

// ListDecks retrieves the signed-in user's decks.
func (c *Client) ListDecks(ctx context.Context) ([]Deck, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload deckListResponse
	if err := c.get(ctx, "/api/decks", &payload); err != nil {
		return nil, err
	}
	return payload.Decks, nil
}

// FetchDeck retrieves one deck by its share code. Works signed out; the
// server decides what is shared.
func (c *Client) FetchDeck(ctx context.Context, code string) (Deck, error) {
	if c == nil {
		return Deck{}, fmt.Errorf("client is nil")
	}
	var payload Deck
	if err := c.get(ctx, "/api/decks/"+url.PathEscape(code), &payload); err != nil {
		return Deck{}, err
	}
	return payload, nil
}

// CardImage looks up the art URL for a card variant. A 404 means the
// card simply has no art; that is an absent result, not an error.
func (c *Client) CardImage(ctx context.Context, variant string) (string, bool, error) {
	if c == nil {
		return "", false, fmt.Errorf("client is nil")
	}
	var payload cardImageResponse
	err := c.get(ctx, "/api/cards/"+url.PathEscape(variant)+"/image", &payload)
	if err != nil {
		if IsNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return payload.URL, payload.URL != "", nil
}

// get performs a GET with retry. Transport failures and 5xx responses
// back off and try again a few times; anything the server decided on
// purpose (4xx) is permanent.
func (c *Client) get(ctx context.Context, path string, dest any) error {
	rel := &url.URL{Path: path}
	op := func() error {
		err := c.doURL(ctx, http.MethodGet, rel, nil, dest)
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInitialInterval
	bo.MaxElapsedTime = retryMaxElapsed
	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError turns an error response into *Error, picking up the
// backend's {"detail": "..."} body when present.
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = strings.TrimSpace(body.Detail)
	}
	return apiErr
}

func parseBaseURL(serverURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(serverURL)
	if trimmed == "" {
		trimmed = defaultServerURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", serverURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
