package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"deckhand/internal/api"
	"deckhand/internal/reconcile"
)

// homeModel holds the deck list screen's view-local state. The deck data
// itself lives in the root model's reconciled slot so that a stale fetch from
// a previous visit can never repaint a fresh one.
type homeModel struct {
	selected int
}

func newHomeModel() homeModel {
	return homeModel{}
}

func (h *homeModel) clamp(n int) {
	if h.selected >= n {
		h.selected = n - 1
	}
	if h.selected < 0 {
		h.selected = 0
	}
}

// handleHomeKey processes keys while the deck list is active.
func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	decks, _ := m.deckList.Get()

	switch msg.String() {
	case "j", "down":
		m.home.selected++
		m.home.clamp(len(decks))
		return m, nil

	case "k", "up":
		m.home.selected--
		m.home.clamp(len(decks))
		return m, nil

	case "g", "home":
		m.home.selected = 0
		return m, nil

	case "G", "end":
		m.home.selected = len(decks) - 1
		m.home.clamp(len(decks))
		return m, nil

	case "enter":
		if m.home.selected < len(decks) {
			cmd := m.navigate("/deck/" + decks[m.home.selected].Code)
			return m, cmd
		}
		return m, nil

	case "n":
		cmd := m.navigate("/deck")
		return m, cmd

	case "r":
		return m, m.loadDecksCmd()
	}

	return m, nil
}

// loadDecksCmd begins a reconciled deck list fetch.
func (m Model) loadDecksCmd() tea.Cmd {
	t := m.deckList.Begin()
	return tea.Batch(listDecksCmd(m.ctx, m.client, t), m.spin.Tick)
}

// handleDeckList lands a deck list response, discarding superseded ones.
func (m Model) handleDeckList(msg deckListMsg) (tea.Model, tea.Cmd) {
	if !m.deckList.Finish(msg.t, msg.decks, msg.err) {
		return m, nil
	}
	if msg.err != nil {
		cmd := m.apiFail(msg.err, "Could not load your decks.")
		return m, cmd
	}
	m.home.clamp(len(msg.decks))
	return m, nil
}

// renderHome renders the deck list table.
func (m Model) renderHome() string {
	styles := m.theme.Styles()

	decks, loaded := m.deckList.Get()
	switch {
	case !loaded && m.deckList.Loading():
		return m.renderCentered(styles.InfoText.Render(m.spin.View() + " Loading decks..."))
	case !loaded && m.deckList.Err() != nil:
		return m.renderCentered(styles.DangerText.Render("Could not load your decks.") +
			"\n" + styles.FaintText.Render("r: retry"))
	case loaded && len(decks) == 0:
		return m.renderCentered(styles.MutedText.Render("No decks yet.") +
			"\n" + styles.FaintText.Render("n: start one"))
	}

	var b strings.Builder

	header := fmt.Sprintf("  %-28s %-18s %6s  %s", "NAME", "RUNES", "CARDS", "UPDATED")
	b.WriteString(styles.Label.Render(header))
	b.WriteString("\n")

	visible := m.contentHeight() - 2
	start := 0
	if m.home.selected >= visible {
		start = m.home.selected - visible + 1
	}
	for i := start; i < len(decks) && i-start < visible; i++ {
		d := decks[i]

		chips := make([]string, 0, len(d.Colors))
		for _, c := range d.Colors {
			chips = append(chips, styles.RuneChip(strings.ToLower(c)).Render(c))
		}
		runes := strings.Join(chips, " ")

		name := truncate(d.Name, 28)
		row := fmt.Sprintf("  %-28s ", name)
		meta := fmt.Sprintf(" %6d  %s", d.CardCount(), humanizeSince(d.ParsedUpdated()))

		if i == m.home.selected {
			b.WriteString(styles.Selected.Render(row) + runes + styles.Selected.Render(meta))
		} else {
			b.WriteString(styles.Text.Render(row) + runes + styles.MutedText.Render(meta))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// renderCentered places a message block in the middle of the content area.
func (m Model) renderCentered(content string) string {
	return lipglossPlaceCenter(m.width, m.contentHeight(), content, m.theme)
}

// humanizeSince formats how long ago t was, compactly.
func humanizeSince(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// Messages

type deckListMsg struct {
	t     reconcile.Ticket[struct{}]
	decks []api.Deck
	err   error
}

// Commands

func listDecksCmd(ctx context.Context, client api.Service, t reconcile.Ticket[struct{}]) tea.Cmd {
	return func() tea.Msg {
		decks, err := client.ListDecks(ctx)
		return deckListMsg{t: t, decks: decks, err: err}
	}
}
