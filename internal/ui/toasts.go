package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"deckhand/internal/toast"
)

// Toast timers run as tea.Tick commands carrying the toast id. The queue's
// boolean state transitions are the cancellation guard: a tick that fires for
// a toast that already moved on (manual dismissal, removal) is a no-op, so a
// timer never has to be torn down explicitly.

type toastExpireMsg struct {
	id string
}

type toastRemoveMsg struct {
	id string
}

// pushToast enqueues a notification and schedules its dismissal tick.
func (m *Model) pushToast(content string, level toast.Level) tea.Cmd {
	var d time.Duration
	if m.config != nil {
		d = m.config.ToastDuration
	}
	t := m.toasts.Push(content, level, d)
	return expireToastCmd(t.ID, t.Duration)
}

func expireToastCmd(id string, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return toastExpireMsg{id: id}
	})
}

func removeToastCmd(id string) tea.Cmd {
	return tea.Tick(toast.RemoveGrace, func(time.Time) tea.Msg {
		return toastRemoveMsg{id: id}
	})
}

// handleToastExpire moves a toast into its exit state when its display
// duration elapses. Returns nil when the toast was already dismissed.
func (m Model) handleToastExpire(msg toastExpireMsg) (tea.Model, tea.Cmd) {
	if m.toasts.Dismiss(msg.id) {
		return m, removeToastCmd(msg.id)
	}
	return m, nil
}

// handleToastRemove purges a toast once its exit grace period has passed.
func (m Model) handleToastRemove(msg toastRemoveMsg) (tea.Model, tea.Cmd) {
	m.toasts.Remove(msg.id)
	return m, nil
}

// dismissOldestToast is the manual early dismissal path. The expiry tick that
// is still scheduled for this toast will find it already dismissing and
// do nothing.
func (m Model) dismissOldestToast() tea.Cmd {
	for _, t := range m.toasts.Items() {
		if t.State != toast.StateVisible {
			continue
		}
		if m.toasts.Dismiss(t.ID) {
			return removeToastCmd(t.ID)
		}
	}
	return nil
}

// renderToasts renders the notification stack, oldest first.
func (m Model) renderToasts() string {
	items := m.toasts.Items()
	if len(items) == 0 {
		return ""
	}

	styles := m.theme.Styles()
	lines := make([]string, 0, len(items))
	for _, t := range items {
		var icon string
		var style = styles.Text
		switch t.Level {
		case toast.LevelSuccess:
			icon, style = "✓", styles.SuccessText
		case toast.LevelWarn:
			icon, style = "!", styles.WarningText
		case toast.LevelError:
			icon, style = "✗", styles.DangerText
		default:
			icon, style = "·", styles.InfoText
		}

		content := truncate(t.Content, max(m.width-4, 20))
		line := style.Render(icon) + " " + styles.Text.Render(content)
		if t.State == toast.StateDismissing {
			line = styles.FaintText.Render(icon + " " + content)
		}
		lines = append(lines, " "+line)
	}
	return strings.Join(lines, "\n")
}
