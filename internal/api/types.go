package api

import "time"

// User mirrors the account record returned by /api/users/me and nested
// in auth responses.
type User struct {
	ID          string `json:"_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DateCreated string `json:"dateCreated"`
	LastUpdated string `json:"lastUpdated"`
}

// ParsedCreated returns the creation timestamp as time.Time when possible.
func (u User) ParsedCreated() time.Time {
	return parseTime(u.DateCreated)
}

// AuthResponse mirrors the payload of /api/auth/login and /api/auth/register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Preferences mirrors the record at /api/users/me/preferences. The same
// shape comes back as the echo of a PATCH and is what the UI treats as
// the saved state.
type Preferences struct {
	DisplayName    string `json:"displayName"`
	ProfileCard    string `json:"profileCard"`
	Theme          string `json:"theme"`
	ScreenshotMode bool   `json:"screenshotMode"`
}

// PreferencesPatch carries only the fields the user actually changed.
// Nil fields are omitted from the request body.
type PreferencesPatch struct {
	DisplayName    *string `json:"displayName,omitempty"`
	ProfileCard    *string `json:"profileCard,omitempty"`
	Theme          *string `json:"theme,omitempty"`
	ScreenshotMode *bool   `json:"screenshotMode,omitempty"`
}

// InviteKey describes one registration key owned by the user.
type InviteKey struct {
	Key          string `json:"key"`
	UsedCount    int    `json:"usedCount"`
	MaxUses      int    `json:"maxUses"`
	FullyClaimed bool   `json:"fullyClaimed"`
}

// keyListResponse mirrors /api/users/me/keys.
type keyListResponse struct {
	Keys []InviteKey `json:"keys"`
}

// Deck is a deck as listed and as fetched by share code.
type Deck struct {
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Owner       string     `json:"owner"`
	Colors      []string   `json:"colors"`
	Cards       []DeckCard `json:"cards"`
	DateCreated string     `json:"dateCreated"`
	LastUpdated string     `json:"lastUpdated"`
}

// CardCount sums the copies across all rows.
func (d Deck) CardCount() int {
	total := 0
	for _, c := range d.Cards {
		total += c.Count
	}
	return total
}

// ParsedUpdated returns the last-updated timestamp as time.Time when possible.
func (d Deck) ParsedUpdated() time.Time {
	return parseTime(d.LastUpdated)
}

// DeckCard is one row of a deck: a card variant and how many copies.
type DeckCard struct {
	Variant string `json:"variant"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Cost    int    `json:"cost"`
	Count   int    `json:"count"`
}

// deckListResponse mirrors /api/decks.
type deckListResponse struct {
	Decks []Deck `json:"decks"`
}

// cardImageResponse mirrors /api/cards/<variant>/image.
type cardImageResponse struct {
	URL string `json:"url"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
