package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"deckhand/internal/api"
	"deckhand/internal/reconcile"
)

// deckModel holds the deck screen's view-local state. code is empty for the
// blank editor shell opened with `n`.
type deckModel struct {
	code     string
	selected int
}

func newDeckModel(code string) deckModel {
	return deckModel{code: code}
}

func (d *deckModel) clamp(n int) {
	if d.selected >= n {
		d.selected = n - 1
	}
	if d.selected < 0 {
		d.selected = 0
	}
}

// handleDeckKey processes keys while a deck is open.
func (m Model) handleDeckKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	deck, loaded := m.openDeck.Get()

	switch msg.String() {
	case "j", "down":
		if loaded && len(deck.Cards) > 0 {
			m.deck.selected++
			m.deck.clamp(len(deck.Cards))
			return m, m.selectCardArtCmd()
		}
		return m, nil

	case "k", "up":
		if loaded && len(deck.Cards) > 0 {
			m.deck.selected--
			m.deck.clamp(len(deck.Cards))
			return m, m.selectCardArtCmd()
		}
		return m, nil

	case "g", "home":
		if loaded && len(deck.Cards) > 0 && m.deck.selected != 0 {
			m.deck.selected = 0
			return m, m.selectCardArtCmd()
		}
		return m, nil

	case "G", "end":
		if loaded && len(deck.Cards) > 0 {
			m.deck.selected = len(deck.Cards) - 1
			return m, m.selectCardArtCmd()
		}
		return m, nil

	case "r":
		if m.deck.code != "" {
			return m, m.loadDeckCmd()
		}
		return m, nil

	case "esc":
		cmd := m.navigate("/")
		return m, cmd
	}

	return m, nil
}

// loadDeckCmd begins a reconciled fetch of the open deck.
func (m Model) loadDeckCmd() tea.Cmd {
	t := m.openDeck.Begin()
	return tea.Batch(fetchDeckCmd(m.ctx, m.client, t, m.deck.code), m.spin.Tick)
}

// handleDeck lands a deck response and kicks off art for the first card.
func (m Model) handleDeck(msg deckMsg) (tea.Model, tea.Cmd) {
	if !m.openDeck.Finish(msg.t, msg.deck, msg.err) {
		return m, nil
	}
	if msg.err != nil {
		cmd := m.apiFail(msg.err, "Could not load that deck.")
		return m, cmd
	}
	m.deck.clamp(len(msg.deck.Cards))
	return m, m.selectCardArtCmd()
}

// selectCardArtCmd begins an art lookup for the selected card. Rapid
// selection changes supersede each other; only the newest result lands.
func (m Model) selectCardArtCmd() tea.Cmd {
	deck, ok := m.openDeck.Get()
	if !ok || len(deck.Cards) == 0 {
		return nil
	}
	variant := deck.Cards[m.deck.selected].Variant
	t := m.cardArt.Begin()
	return tea.Batch(cardArtCmd(m.ctx, m.client, t, variant), m.spin.Tick)
}

// handleCardArt lands an art lookup. Failures keep whatever art was already
// on screen; only a first-ever lookup may show the unavailable state.
func (m Model) handleCardArt(msg cardArtMsg) (tea.Model, tea.Cmd) {
	if !m.cardArt.Finish(msg.t, msg.url, msg.err) {
		return m, nil
	}
	if msg.err != nil {
		m.log.Debug("card art lookup failed", zap.Error(msg.err))
	}
	return m, nil
}

// renderDeck renders the open deck: header, card rows, art preview line.
func (m Model) renderDeck() string {
	styles := m.theme.Styles()

	if m.deck.code == "" {
		return m.renderDeckFrame(api.Deck{Name: "Untitled deck"}, true)
	}

	deck, loaded := m.openDeck.Get()
	switch {
	case !loaded && m.openDeck.Loading():
		return m.renderCentered(styles.InfoText.Render(m.spin.View() + " Loading deck..."))
	case !loaded:
		reason := "Could not load that deck."
		if err := m.openDeck.Err(); err != nil {
			reason = errText(err, reason)
		}
		return m.renderCentered(styles.DangerText.Render(reason) +
			"\n" + styles.FaintText.Render("r: retry · esc: back"))
	}

	mine := false
	if id, ok := m.session.Current(); ok {
		mine = strings.EqualFold(deck.Owner, id.Username)
	}
	return m.renderDeckFrame(deck, mine)
}

func (m Model) renderDeckFrame(deck api.Deck, mine bool) string {
	styles := m.theme.Styles()

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render(deck.Name))
	if deck.Owner != "" && !mine {
		b.WriteString("  " + styles.MutedText.Render("by "+deck.Owner))
		b.WriteString("  " + styles.WarningText.Render("read-only"))
	}
	b.WriteString("\n")

	chips := make([]string, 0, len(deck.Colors))
	for _, c := range deck.Colors {
		chips = append(chips, styles.RuneChip(strings.ToLower(c)).Render(c))
	}
	line := strings.Join(chips, " ")
	if line != "" {
		b.WriteString(line + "  ")
	}
	b.WriteString(styles.MutedText.Render(fmt.Sprintf("%d cards", deck.CardCount())))
	b.WriteString("\n\n")

	if len(deck.Cards) == 0 {
		b.WriteString(styles.MutedText.Render("No cards in this deck."))
		b.WriteString("\n")
		return b.String()
	}

	header := fmt.Sprintf("  %3s  %-10s %-30s %-12s %4s", "QTY", "VARIANT", "NAME", "TYPE", "COST")
	b.WriteString(styles.Label.Render(header))
	b.WriteString("\n")

	visible := m.contentHeight() - 6
	start := 0
	if m.deck.selected >= visible {
		start = m.deck.selected - visible + 1
	}
	for i := start; i < len(deck.Cards) && i-start < visible; i++ {
		c := deck.Cards[i]
		row := fmt.Sprintf("  %3d  %-10s %-30s %-12s %4d",
			c.Count, c.Variant, truncate(c.Name, 30), truncate(c.Type, 12), c.Cost)
		if i == m.deck.selected {
			b.WriteString(styles.Selected.Render(row))
		} else {
			b.WriteString(styles.Text.Render(row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderArtLine())
	return b.String()
}

// renderArtLine shows the art location for the selected card.
func (m Model) renderArtLine() string {
	styles := m.theme.Styles()

	url, loaded := m.cardArt.Get()
	switch {
	case loaded && url != "":
		return styles.Label.Render("ART ") + styles.InfoText.Render(truncateMiddle(url, max(m.width-8, 20)))
	case loaded:
		return styles.Label.Render("ART ") + styles.FaintText.Render("no art for this card")
	case m.cardArt.Loading():
		return styles.Label.Render("ART ") + styles.MutedText.Render(m.spin.View()+" looking up...")
	case m.cardArt.Err() != nil:
		return styles.Label.Render("ART ") + styles.FaintText.Render("art unavailable")
	default:
		return ""
	}
}

// Messages

type deckMsg struct {
	t    reconcile.Ticket[struct{}]
	deck api.Deck
	err  error
}

type cardArtMsg struct {
	t   reconcile.Ticket[struct{}]
	url string
	err error
}

// Commands

func fetchDeckCmd(ctx context.Context, client api.Service, t reconcile.Ticket[struct{}], code string) tea.Cmd {
	return func() tea.Msg {
		deck, err := client.FetchDeck(ctx, code)
		return deckMsg{t: t, deck: deck, err: err}
	}
}

func cardArtCmd(ctx context.Context, client api.Service, t reconcile.Ticket[struct{}], variant string) tea.Cmd {
	return func() tea.Msg {
		url, _, err := client.CardImage(ctx, variant)
		return cardArtMsg{t: t, url: url, err: err}
	}
}
