package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"deckhand/internal/api"
	"deckhand/internal/prefs"
	"deckhand/internal/reconcile"
	"deckhand/internal/toast"
)

// Profile focus zones, cycled with tab.
const (
	profZoneDisplayName = iota
	profZonePicker
	profZoneScreenshot
	profZoneCurrentPw
	profZoneNewPw
	profZoneConfirmPw
	profZoneCount
)

// The six rune cards double as the selectable profile art.
var pickerCards = []struct{ Variant, Name string }{
	{"OGN-007", "Fury Rune"},
	{"OGN-042", "Calm Rune"},
	{"OGN-089", "Mind Rune"},
	{"OGN-126", "Body Rune"},
	{"OGN-166", "Chaos Rune"},
	{"OGN-214", "Order Rune"},
}

// profileModel holds the profile screen's edit buffers. saved is the last
// server-confirmed preferences record; it is only ever overwritten from a
// response echo, never from the buffers.
type profileModel struct {
	zone           int
	displayName    textinput.Model
	pickerIdx      int
	screenshotMode bool
	pwInputs       [3]textinput.Model
	pwErr          string
	saved          api.Preferences
	seeded         bool
	savingPrefs    bool
	changingPw     bool
}

func newProfileModel() profileModel {
	p := profileModel{}

	p.displayName = textinput.New()
	p.displayName.Placeholder = "display name"
	p.displayName.CharLimit = 50
	p.displayName.Width = 32
	p.displayName.Focus()

	for i := range p.pwInputs {
		ti := textinput.New()
		ti.CharLimit = 100
		ti.Width = 32
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
		p.pwInputs[i] = ti
	}

	return p
}

// seed fills the edit buffers from the first loaded preferences record.
// Later refreshes update only the saved display state.
func (p *profileModel) seed(rec api.Preferences) {
	p.displayName.SetValue(rec.DisplayName)
	p.screenshotMode = rec.ScreenshotMode
	for i, c := range pickerCards {
		if c.Variant == rec.ProfileCard {
			p.pickerIdx = i
			break
		}
	}
	p.seeded = true
}

func (p *profileModel) moveZone(delta int) {
	p.blurZone()
	p.zone = (p.zone + delta + profZoneCount) % profZoneCount
	p.focusZone()
}

func (p *profileModel) blurZone() {
	p.displayName.Blur()
	for i := range p.pwInputs {
		p.pwInputs[i].Blur()
	}
}

func (p *profileModel) focusZone() {
	switch p.zone {
	case profZoneDisplayName:
		p.displayName.Focus()
	case profZoneCurrentPw, profZoneNewPw, profZoneConfirmPw:
		p.pwInputs[p.zone-profZoneCurrentPw].Focus()
	}
}

// handleProfileKey processes keys while the profile screen is active.
func (m Model) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.profile.moveZone(1)
		return m, textinput.Blink

	case "shift+tab":
		m.profile.moveZone(-1)
		return m, textinput.Blink

	case "esc":
		cmd := m.navigate("/")
		return m, cmd

	case "ctrl+s":
		return m.submitPreferences()
	}

	switch m.profile.zone {
	case profZoneDisplayName:
		if msg.String() == "enter" {
			m.profile.moveZone(1)
			return m, textinput.Blink
		}
		var cmd tea.Cmd
		m.profile.displayName, cmd = m.profile.displayName.Update(msg)
		return m, cmd

	case profZonePicker:
		switch msg.String() {
		case "j", "down", "right":
			m.profile.pickerIdx = (m.profile.pickerIdx + 1) % len(pickerCards)
		case "k", "up", "left":
			m.profile.pickerIdx = (m.profile.pickerIdx + len(pickerCards) - 1) % len(pickerCards)
		case "enter":
			m.profile.moveZone(1)
		}
		return m, nil

	case profZoneScreenshot:
		switch msg.String() {
		case " ":
			m.profile.screenshotMode = !m.profile.screenshotMode
		case "enter":
			m.profile.moveZone(1)
			return m, textinput.Blink
		}
		return m, nil

	default:
		if msg.String() == "enter" {
			if m.profile.zone == profZoneConfirmPw {
				return m.submitPasswordChange()
			}
			m.profile.moveZone(1)
			return m, textinput.Blink
		}
		idx := m.profile.zone - profZoneCurrentPw
		before := m.profile.pwInputs[idx].Value()
		var cmd tea.Cmd
		m.profile.pwInputs[idx], cmd = m.profile.pwInputs[idx].Update(msg)
		if m.profile.pwInputs[idx].Value() != before {
			m.profile.pwErr = ""
		}
		return m, cmd
	}
}

// Profile data loading

func (m Model) loadProfileCmds() tea.Cmd {
	cmds := []tea.Cmd{m.loadPrefsCmd(), m.loadInviteKeysCmd()}
	cmds = append(cmds, m.loadPickerArtCmds()...)
	cmds = append(cmds, m.spin.Tick, textinput.Blink)
	return tea.Batch(cmds...)
}

func (m Model) loadPrefsCmd() tea.Cmd {
	t := m.prefsRes.Begin()
	return fetchPrefsCmd(m.ctx, m.client, t)
}

func (m Model) loadInviteKeysCmd() tea.Cmd {
	t := m.inviteKeys.Begin()
	return fetchInviteKeysCmd(m.ctx, m.client, t)
}

// loadPickerArtCmds fans out one reconciled lookup per picker card. The keys
// are independent: a slow lookup for one card never holds up the others.
func (m Model) loadPickerArtCmds() []tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(pickerCards))
	for _, c := range pickerCards {
		t := m.pickerArt.Begin(c.Variant)
		cmds = append(cmds, pickerArtCmd(m.ctx, m.client, t, c.Variant))
	}
	return cmds
}

// Result handlers

func (m Model) handleProfilePrefs(msg profilePrefsMsg) (tea.Model, tea.Cmd) {
	if !m.prefsRes.Finish(msg.t, msg.prefs, msg.err) {
		return m, nil
	}
	if msg.err != nil {
		cmd := m.apiFail(msg.err, "Could not load preferences.")
		return m, cmd
	}
	m.profile.saved = msg.prefs
	if !m.profile.seeded {
		m.profile.seed(msg.prefs)
	}
	return m, nil
}

func (m Model) handleInviteKeys(msg inviteKeysMsg) (tea.Model, tea.Cmd) {
	if !m.inviteKeys.Finish(msg.t, msg.keys, msg.err) {
		return m, nil
	}
	if msg.err != nil {
		cmd := m.apiFail(msg.err, "Could not load invite keys.")
		return m, cmd
	}
	return m, nil
}

func (m Model) handlePickerArt(msg pickerArtMsg) (tea.Model, tea.Cmd) {
	if !m.pickerArt.Finish(msg.t, msg.url, msg.err) {
		return m, nil
	}
	if msg.err != nil {
		m.log.Debug("picker art lookup failed",
			zap.String("variant", msg.t.Key), zap.Error(msg.err))
	}
	return m, nil
}

// Write actions

func (m Model) submitPreferences() (tea.Model, tea.Cmd) {
	if m.profile.savingPrefs {
		return m, nil
	}

	name := strings.TrimSpace(m.profile.displayName.Value())
	if name == "" {
		return m, m.pushToast("Display name cannot be empty.", toast.LevelWarn)
	}

	variant := pickerCards[m.profile.pickerIdx].Variant
	theme := m.theme.Name
	screenshot := m.profile.screenshotMode
	patch := api.PreferencesPatch{
		DisplayName:    &name,
		ProfileCard:    &variant,
		Theme:          &theme,
		ScreenshotMode: &screenshot,
	}

	m.profile.savingPrefs = true
	return m, tea.Batch(savePrefsCmd(m.ctx, m.client, patch), m.spin.Tick)
}

// handlePrefsSaved overwrites the saved display state from the server's echo
// and re-mirrors the local theme from it. A failure leaves both untouched.
func (m Model) handlePrefsSaved(msg prefsSavedMsg) (tea.Model, tea.Cmd) {
	m.profile.savingPrefs = false
	if msg.err != nil {
		cmd := m.apiFail(msg.err, "Could not save preferences.")
		return m, cmd
	}

	m.profile.saved = msg.prefs
	m.log.Info("preferences saved", zap.String("displayName", msg.prefs.DisplayName))

	if name := prefs.NormalizeTheme(msg.prefs.Theme); name != m.theme.Name {
		m.theme = GetTheme(name)
		if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: name}); err != nil {
			m.log.Warn("could not persist theme", zap.Error(err))
		}
	}

	return m, m.pushToast("Preferences saved.", toast.LevelSuccess)
}

func (m Model) submitPasswordChange() (tea.Model, tea.Cmd) {
	if m.profile.changingPw {
		return m, nil
	}

	current := m.profile.pwInputs[0].Value()
	next := m.profile.pwInputs[1].Value()
	confirm := m.profile.pwInputs[2].Value()

	if current == "" || next == "" || confirm == "" {
		m.profile.pwErr = "fill in all three password fields"
		return m, nil
	}
	if err := validatePassword(next); err != nil {
		m.profile.pwErr = err.Error()
		return m, nil
	}
	if next != confirm {
		m.profile.pwErr = "new password and confirmation do not match"
		return m, nil
	}

	m.profile.changingPw = true
	m.profile.pwErr = ""
	return m, tea.Batch(changePasswordCmd(m.ctx, m.client, current, next), m.spin.Tick)
}

func (m Model) handlePasswordChanged(msg passwordChangedMsg) (tea.Model, tea.Cmd) {
	m.profile.changingPw = false
	if msg.err != nil {
		m.profile.pwErr = errText(msg.err, "Could not change password.")
		cmd := m.apiFail(msg.err, "Could not change password.")
		return m, cmd
	}

	for i := range m.profile.pwInputs {
		m.profile.pwInputs[i].SetValue("")
	}
	m.log.Info("password changed")
	return m, m.pushToast("Password updated.", toast.LevelSuccess)
}

// Rendering

func (m Model) renderProfile() string {
	var b strings.Builder

	b.WriteString(m.renderAccountLine())
	b.WriteString("\n")
	b.WriteString(m.renderPrefsSection())
	b.WriteString("\n")
	b.WriteString(m.renderSecuritySection())
	b.WriteString("\n")
	b.WriteString(m.renderKeysSection())

	return b.String()
}

func (m Model) renderAccountLine() string {
	styles := m.theme.Styles()

	username := "?"
	if id, ok := m.session.Current(); ok {
		username = id.Username
	}
	line := styles.Text.Bold(true).Render(username)
	if m.profile.saved.DisplayName != "" {
		line += styles.MutedText.Render("  shown as ") +
			styles.Text.Render(m.profile.saved.DisplayName)
	}
	if m.profile.savingPrefs {
		line += "  " + styles.InfoText.Render(m.spin.View()+" saving...")
	}
	return line + "\n"
}

func (m Model) renderPrefsSection() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(m.sectionTitle("Preferences", m.profile.zone <= profZoneScreenshot))
	b.WriteString("\n")

	b.WriteString(m.fieldLabel("Display name", m.profile.zone == profZoneDisplayName))
	b.WriteString("\n")
	b.WriteString(m.profile.displayName.View())
	b.WriteString("\n\n")

	b.WriteString(m.fieldLabel("Profile card", m.profile.zone == profZonePicker))
	b.WriteString("\n")
	for i, c := range pickerCards {
		marker := "  "
		if i == m.profile.pickerIdx {
			marker = "> "
		}
		row := fmt.Sprintf("%s%-10s %-12s %s", marker, c.Variant, c.Name, m.pickerArtStatus(c.Variant))
		if i == m.profile.pickerIdx && m.profile.zone == profZonePicker {
			b.WriteString(styles.Selected.Render(row))
		} else if i == m.profile.pickerIdx {
			b.WriteString(styles.AccentText.Render(row))
		} else {
			b.WriteString(styles.Text.Render(row))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	check := "[ ]"
	if m.profile.screenshotMode {
		check = "[x]"
	}
	b.WriteString(m.fieldLabel("Screenshot mode", m.profile.zone == profZoneScreenshot))
	b.WriteString(" " + styles.Text.Render(check))
	b.WriteString("   ")
	b.WriteString(styles.MutedText.Render("theme: ") + styles.Text.Render(m.theme.Name))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("ctrl+s: save preferences"))
	b.WriteString("\n")

	return b.String()
}

// pickerArtStatus summarizes the reconciled art lookup for one card.
func (m Model) pickerArtStatus(variant string) string {
	styles := m.theme.Styles()

	if url, ok := m.pickerArt.Get(variant); ok {
		if url == "" {
			return styles.FaintText.Render("no art")
		}
		return styles.InfoText.Render(truncateMiddle(url, 40))
	}
	if m.pickerArt.Loading(variant) {
		return styles.MutedText.Render("...")
	}
	if m.pickerArt.Err(variant) != nil {
		return styles.FaintText.Render("unavailable")
	}
	return ""
}

func (m Model) renderSecuritySection() string {
	styles := m.theme.Styles()
	labels := []string{"Current password", "New password", "Confirm new password"}

	var b strings.Builder
	b.WriteString(m.sectionTitle("Change password", m.profile.zone >= profZoneCurrentPw))
	b.WriteString("\n")

	for i, label := range labels {
		b.WriteString(m.fieldLabel(label, m.profile.zone == profZoneCurrentPw+i))
		b.WriteString("\n")
		b.WriteString(m.profile.pwInputs[i].View())
		b.WriteString("\n")
	}

	switch {
	case m.profile.changingPw:
		b.WriteString(styles.InfoText.Render(m.spin.View() + " changing password..."))
	case m.profile.pwErr != "":
		b.WriteString(styles.DangerText.Render(m.profile.pwErr))
	default:
		b.WriteString(styles.FaintText.Render("enter on the confirm field submits"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderKeysSection() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(m.sectionTitle("Invite keys", false))
	b.WriteString("\n")

	keys, loaded := m.inviteKeys.Get()
	switch {
	case !loaded && m.inviteKeys.Loading():
		b.WriteString(styles.MutedText.Render(m.spin.View() + " loading..."))
		b.WriteString("\n")
	case !loaded && m.inviteKeys.Err() != nil:
		b.WriteString(styles.FaintText.Render("could not load invite keys"))
		b.WriteString("\n")
	case len(keys) == 0:
		b.WriteString(styles.MutedText.Render("no invite keys on this account"))
		b.WriteString("\n")
	default:
		for _, k := range keys {
			line := fmt.Sprintf("  %-12s %d/%d", k.Key, k.UsedCount, k.MaxUses)
			b.WriteString(styles.Text.Render(line))
			if k.FullyClaimed {
				b.WriteString("  " + styles.WarningText.Render("fully claimed"))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) sectionTitle(title string, active bool) string {
	styles := m.theme.Styles()
	if active {
		return styles.AccentText.Bold(true).Render("▌ " + title)
	}
	return styles.Label.Render("▌ " + title)
}

func (m Model) fieldLabel(label string, focused bool) string {
	styles := m.theme.Styles()
	if focused {
		return styles.AccentText.Bold(true).Render(label)
	}
	return styles.Label.Render(label)
}

// Messages

type profilePrefsMsg struct {
	t     reconcile.Ticket[struct{}]
	prefs api.Preferences
	err   error
}

type inviteKeysMsg struct {
	t    reconcile.Ticket[struct{}]
	keys []api.InviteKey
	err  error
}

type pickerArtMsg struct {
	t   reconcile.Ticket[string]
	url string
	err error
}

type prefsSavedMsg struct {
	prefs api.Preferences
	err   error
}

type passwordChangedMsg struct {
	err error
}

// Commands

func fetchPrefsCmd(ctx context.Context, client api.Service, t reconcile.Ticket[struct{}]) tea.Cmd {
	return func() tea.Msg {
		p, err := client.Preferences(ctx)
		return profilePrefsMsg{t: t, prefs: p, err: err}
	}
}

func fetchInviteKeysCmd(ctx context.Context, client api.Service, t reconcile.Ticket[struct{}]) tea.Cmd {
	return func() tea.Msg {
		keys, err := client.InviteKeys(ctx)
		return inviteKeysMsg{t: t, keys: keys, err: err}
	}
}

func pickerArtCmd(ctx context.Context, client api.Service, t reconcile.Ticket[string], variant string) tea.Cmd {
	return func() tea.Msg {
		url, _, err := client.CardImage(ctx, variant)
		return pickerArtMsg{t: t, url: url, err: err}
	}
}

func savePrefsCmd(ctx context.Context, client api.Service, patch api.PreferencesPatch) tea.Cmd {
	return func() tea.Msg {
		p, err := client.UpdatePreferences(ctx, patch)
		return prefsSavedMsg{prefs: p, err: err}
	}
}

func changePasswordCmd(ctx context.Context, client api.Service, current, next string) tea.Cmd {
	return func() tea.Msg {
		return passwordChangedMsg{err: client.ChangePassword(ctx, current, next)}
	}
}
