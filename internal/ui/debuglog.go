package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"deckhand/internal/logtail"
)

const (
	debugRefreshInterval = 2 * time.Second
	debugLineLimit       = 300
)

// debugModel drives the hidden log overlay. It re-reads the tail of the log
// file on a timer while open; the timer stops rescheduling once closed.
type debugModel struct {
	vp    viewport.Model
	ready bool
}

// openDebugLog shows the overlay and starts the refresh loop.
func (m *Model) openDebugLog() tea.Cmd {
	m.showLogs = true
	m.sizeDebugViewport()
	return tea.Batch(readDebugLogCmd(m.logPath), debugTickCmd())
}

func (m *Model) sizeDebugViewport() {
	w := max(m.width-8, 20)
	h := max(m.height-8, 5)
	if !m.debug.ready {
		m.debug.vp = viewport.New(w, h)
		m.debug.ready = true
		return
	}
	m.debug.vp.Width = w
	m.debug.vp.Height = h
}

// handleDebugKey processes keys while the overlay is open. Scroll keys go to
// the viewport; anything that closes returns to the underlying view.
func (m Model) handleDebugKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+l", "q":
		m.showLogs = false
		return m, nil
	}
	var cmd tea.Cmd
	m.debug.vp, cmd = m.debug.vp.Update(msg)
	return m, cmd
}

func (m Model) handleDebugTick() (tea.Model, tea.Cmd) {
	if !m.showLogs {
		return m, nil
	}
	return m, tea.Batch(readDebugLogCmd(m.logPath), debugTickCmd())
}

func (m Model) handleDebugLines(msg debugLinesMsg) (tea.Model, tea.Cmd) {
	if !m.showLogs || !m.debug.ready {
		return m, nil
	}
	if msg.err != nil {
		m.debug.vp.SetContent(m.theme.Styles().FaintText.Render("could not read log: " + msg.err.Error()))
		return m, nil
	}

	atBottom := m.debug.vp.AtBottom()
	rendered := make([]string, 0, len(msg.lines))
	for _, line := range msg.lines {
		rendered = append(rendered, m.renderLogLine(line))
	}
	m.debug.vp.SetContent(strings.Join(rendered, "\n"))
	if atBottom {
		m.debug.vp.GotoBottom()
	}
	return m, nil
}

// renderLogLine colorizes one structured log line, falling back to the raw
// text for anything that is not zap JSON.
func (m Model) renderLogLine(line string) string {
	styles := m.theme.Styles()

	entry, ok := logtail.ParseLine(line)
	if !ok {
		return styles.FaintText.Render(line)
	}

	levelStyle := styles.InfoText
	switch strings.ToLower(entry.Level) {
	case "debug":
		levelStyle = styles.FaintText
	case "warn":
		levelStyle = styles.WarningText
	case "error", "fatal", "panic":
		levelStyle = styles.DangerText
	}

	ts := entry.Time
	if len(ts) >= 19 {
		ts = ts[11:19] // keep the clock part of the ISO timestamp
	}

	var b strings.Builder
	b.WriteString(styles.FaintText.Render(ts))
	b.WriteString(" ")
	b.WriteString(levelStyle.Render(fmt.Sprintf("%-5s", strings.ToUpper(entry.Level))))
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(entry.Message))
	for _, f := range entry.Fields {
		b.WriteString(" ")
		b.WriteString(styles.MutedText.Render(f.Key + "=" + f.Value))
	}
	return b.String()
}

// renderDebugLog renders the overlay.
func (m Model) renderDebugLog() string {
	styles := m.theme.Styles()

	title := styles.Text.Bold(true).Render("deckhand.log")
	hint := styles.FaintText.Render("esc: close · j/k: scroll")
	content := title + "  " + hint + "\n\n" + m.debug.vp.View()

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(0, 1).
		Render(content)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

// Messages

type debugTickMsg time.Time

type debugLinesMsg struct {
	lines []string
	err   error
}

// Commands

func debugTickCmd() tea.Cmd {
	return tea.Tick(debugRefreshInterval, func(t time.Time) tea.Msg {
		return debugTickMsg(t)
	})
}

func readDebugLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, debugLineLimit)
		return debugLinesMsg{lines: lines, err: err}
	}
}
