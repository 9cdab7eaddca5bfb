// Package route maps a location string and the current session state to
// the view that should render. Resolution is pure and total: any input
// yields a usable Resolution, unknown locations degrade to the login
// view, and a returned redirect target never redirects again under the
// same session state.
package route

import (
	"net/url"
	"strings"
)

// View identifies one of the app's screens.
type View int

const (
	ViewLogin View = iota
	ViewHome
	ViewDeck
	ViewProfile
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewHome:
		return "home"
	case ViewDeck:
		return "deck"
	case ViewProfile:
		return "profile"
	}
	return "unknown"
}

// Resolution is the outcome of resolving one location.
//
// Path is the settled location: the input itself, or the redirect
// target when RedirectTo is set. View, DeckCode and InviteCode always
// describe Path, not the input.
type Resolution struct {
	View       View
	Path       string
	RedirectTo string
	DeckCode   string
	InviteCode string
}

// Redirected reports whether the caller must rewrite its stored
// location to Path before rendering.
func (r Resolution) Redirected() bool {
	return r.RedirectTo != ""
}

// Resolve maps a location to a view for the given session state.
//
// Rules, in priority order: "/" and "/profile" need a session and
// bounce to "/login" or "/" without one; "/login" needs no session and
// bounces to "/" with one; "/deck" alone needs a session while
// "/deck/<code>" is shared and never does; "/register/<key>" never
// renders and rewrites to "/login?code=<key>"; anything else falls
// back to the login view. Redirect chains are collapsed here, so the
// returned target resolves to itself when the session state has not
// changed in between.
func Resolve(location string, authed bool) Resolution {
	res := step(location, authed)
	for hops := 0; res.RedirectTo != "" && hops < 3; hops++ {
		next := step(res.RedirectTo, authed)
		if next.RedirectTo == "" {
			next.RedirectTo = res.RedirectTo
			return next
		}
		res = next
	}
	return res
}

// step applies the rule table once, without collapsing chains.
func step(location string, authed bool) Resolution {
	u, err := url.Parse(location)
	if err != nil {
		return Resolution{View: ViewLogin, Path: location}
	}
	path := normalize(u.Path)

	switch {
	case path == "/":
		if !authed {
			return Resolution{View: ViewLogin, Path: path, RedirectTo: "/login"}
		}
		return Resolution{View: ViewHome, Path: path}

	case path == "/login":
		if authed {
			return Resolution{View: ViewHome, Path: path, RedirectTo: "/"}
		}
		return Resolution{
			View:       ViewLogin,
			Path:       location,
			InviteCode: u.Query().Get("code"),
		}

	case path == "/deck":
		if !authed {
			return Resolution{View: ViewLogin, Path: path, RedirectTo: "/"}
		}
		return Resolution{View: ViewDeck, Path: path}

	case strings.HasPrefix(path, "/deck/"):
		// Shared view: the code is opaque and carried through as is.
		return Resolution{
			View:     ViewDeck,
			Path:     path,
			DeckCode: strings.TrimPrefix(path, "/deck/"),
		}

	case path == "/profile":
		if !authed {
			return Resolution{View: ViewLogin, Path: path, RedirectTo: "/"}
		}
		return Resolution{View: ViewProfile, Path: path}

	case strings.HasPrefix(path, "/register/"):
		key := strings.TrimPrefix(path, "/register/")
		return Resolution{
			View:       ViewLogin,
			Path:       path,
			RedirectTo: "/login?code=" + url.QueryEscape(key),
		}
	}

	return Resolution{View: ViewLogin, Path: location}
}

// normalize strips trailing slashes so "/login/" matches "/login".
// The root path stays "/".
func normalize(path string) string {
	if path == "" {
		return "/"
	}
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		return "/"
	}
	return trimmed
}
