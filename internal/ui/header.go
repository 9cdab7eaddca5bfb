package ui

import (
	"fmt"
	"strings"

	"deckhand/internal/route"
)

// renderHeader renders the status bar: wordmark, session state, location.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	var parts []string

	parts = append(parts, bg.Render("deckhand", styles.Logo))

	if id, ok := m.session.Current(); ok {
		parts = append(parts,
			bg.Render("●", styles.SuccessText)+bg.Space()+
				bg.Render(id.Username, styles.Text))
	} else {
		parts = append(parts,
			bg.Render("○", styles.FaintText)+bg.Space()+
				bg.Render("signed out", styles.MutedText))
	}

	parts = append(parts, bg.Render(truncateMiddle(m.location, 40), styles.AccentText))

	if m.anyLoading() {
		parts = append(parts, bg.Render(m.spin.View(), styles.InfoText))
	}

	if m.config != nil && m.config.ServerURL != "" {
		parts = append(parts, bg.Render(truncateMiddle(m.config.ServerURL, 36), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, sep))
}

// renderCommandBar renders the command hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.resolution.View {
	case route.ViewLogin:
		modeLabel := "Register"
		if m.login.register {
			modeLabel = "Login"
		}
		commands = []cmd{
			{"tab", "Fields"},
			{"enter", "Submit"},
			{"ctrl+r", modeLabel},
			{"ctrl+t", "Theme"},
			{"ctrl+c", "Quit"},
		}
	case route.ViewDeck:
		commands = []cmd{
			{"j/k", "Cards"},
			{"r", "Refresh"},
			{"esc", "Decks"},
			{"p", "Profile"},
			{"?", "More"},
		}
	case route.ViewProfile:
		commands = []cmd{
			{"tab", "Fields"},
			{"ctrl+s", "Save"},
			{"esc", "Decks"},
			{"ctrl+x", "Sign out"},
			{"ctrl+c", "Quit"},
		}
	default: // route.ViewHome
		commands = []cmd{
			{"j/k", "Navigate"},
			{"enter", "Open"},
			{"n", "New deck"},
			{"r", "Refresh"},
			{"p", "Profile"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if n := m.toasts.Len(); n > 0 {
		segments = append(segments,
			bg.Render("x", styles.AccentText)+colon+
				bg.Render(fmt.Sprintf("Dismiss (%d)", n), styles.MutedText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// truncateMiddle truncates a string in the middle, preserving start and end.
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 5 {
		return s[:max]
	}
	// Keep more of the end than the start
	endLen := (max - 3) * 2 / 3
	startLen := max - 3 - endLen
	return s[:startLen] + "..." + s[len(s)-endLen:]
}
