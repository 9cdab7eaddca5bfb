package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"deckhand/internal/api"
	"deckhand/internal/session"
	"deckhand/internal/toast"
)

// Login form field indices.
const (
	loginFieldUsername = iota
	loginFieldPassword
)

// Register form field indices.
const (
	regFieldUsername = iota
	regFieldEmail
	regFieldPassword
	regFieldConfirm
	regFieldInvite
)

var (
	loginLabels    = []string{"Username", "Password"}
	registerLabels = []string{"Username", "Email", "Password", "Confirm password", "Invite code"}
)

// loginModel holds the login/register screen's edit buffers. An invite code
// carried in from a registration link pre-fills the register form.
type loginModel struct {
	register   bool
	inputs     []textinput.Model
	focus      int
	errMsg     string
	busy       bool
	inviteCode string
	logo       string
}

func newLoginModel(inviteCode string) loginModel {
	l := loginModel{
		register:   inviteCode != "",
		inviteCode: inviteCode,
		logo:       banner(),
	}
	l.buildInputs()
	return l
}

func (l *loginModel) buildInputs() {
	newInput := func(placeholder string, secret bool) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 100
		ti.Width = 32
		if secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		return ti
	}

	if l.register {
		l.inputs = []textinput.Model{
			newInput("rifthunter", false),
			newInput("you@example.com", false),
			newInput("", true),
			newInput("", true),
			newInput("ABC123", false),
		}
		l.inputs[regFieldInvite].SetValue(l.inviteCode)
	} else {
		l.inputs = []textinput.Model{
			newInput("rifthunter", false),
			newInput("", true),
		}
	}
	l.focus = 0
	l.inputs[0].Focus()
}

// switchMode toggles between login and register, keeping the typed username
// and the invite code.
func (l *loginModel) switchMode() {
	username := l.inputs[loginFieldUsername].Value()
	l.register = !l.register
	l.errMsg = ""
	l.buildInputs()
	l.inputs[loginFieldUsername].SetValue(username)
}

func (l *loginModel) moveFocus(delta int) {
	l.inputs[l.focus].Blur()
	l.focus = (l.focus + delta + len(l.inputs)) % len(l.inputs)
	l.inputs[l.focus].Focus()
}

// handleLoginKey processes keys while the login screen is active.
func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+r":
		m.login.switchMode()
		return m, textinput.Blink

	case "tab", "down":
		m.login.moveFocus(1)
		return m, textinput.Blink

	case "shift+tab", "up":
		m.login.moveFocus(-1)
		return m, textinput.Blink

	case "esc":
		m.login.errMsg = ""
		return m, nil

	case "enter":
		if m.login.focus < len(m.login.inputs)-1 {
			m.login.moveFocus(1)
			return m, textinput.Blink
		}
		return m.submitAuth()
	}

	m.login.errMsg = ""
	var cmd tea.Cmd
	m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
	return m, cmd
}

// submitAuth validates the active form and fires the auth request.
func (m Model) submitAuth() (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}
	if m.login.register {
		return m.submitRegister()
	}
	return m.submitLogin()
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(m.login.inputs[loginFieldUsername].Value())
	password := m.login.inputs[loginFieldPassword].Value()
	if username == "" || password == "" {
		m.login.errMsg = "enter a username and password"
		return m, nil
	}

	m.login.busy = true
	m.login.errMsg = ""
	return m, tea.Batch(loginCmd(m.ctx, m.client, username, password), m.spin.Tick)
}

func (m Model) submitRegister() (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(m.login.inputs[regFieldUsername].Value())
	email := strings.TrimSpace(m.login.inputs[regFieldEmail].Value())
	password := m.login.inputs[regFieldPassword].Value()
	confirm := m.login.inputs[regFieldConfirm].Value()
	invite := strings.TrimSpace(m.login.inputs[regFieldInvite].Value())

	if err := validateUsername(username); err != nil {
		m.login.errMsg = err.Error()
		return m, nil
	}
	if err := validateEmail(email); err != nil {
		m.login.errMsg = err.Error()
		return m, nil
	}
	if err := validatePassword(password); err != nil {
		m.login.errMsg = err.Error()
		return m, nil
	}
	if password != confirm {
		m.login.errMsg = "password and confirmation do not match"
		return m, nil
	}
	if invite == "" {
		m.login.errMsg = "an invite code is required"
		return m, nil
	}

	m.login.busy = true
	m.login.errMsg = ""
	req := api.RegisterRequest{
		Username:   username,
		Email:      email,
		Password:   password,
		InviteCode: invite,
	}
	return m, tea.Batch(registerCmd(m.ctx, m.client, req), m.spin.Tick)
}

// handleAuthResult lands a login or registration response.
func (m Model) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	if msg.err != nil {
		reason := errText(msg.err, "Could not reach the server.")
		m.login.errMsg = reason
		m.log.Warn("authentication failed",
			zap.Bool("register", msg.register), zap.Error(msg.err))
		return m, m.pushToast(reason, toast.LevelError)
	}

	m.session.Set(session.Identity{
		Username: msg.resp.User.Username,
		Token:    msg.resp.Token,
	})
	m.log.Info("signed in", zap.String("username", msg.resp.User.Username))

	greeting := "Welcome back, " + msg.resp.User.Username + "."
	if msg.register {
		greeting = "Account created. Welcome, " + msg.resp.User.Username + "."
	}
	toastCmd := m.pushToast(greeting, toast.LevelSuccess)
	navCmd := m.navigate(m.location)
	return m, tea.Batch(toastCmd, navCmd)
}

// renderLogin renders the centered login/register card.
func (m Model) renderLogin() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Logo.Render(m.login.logo))
	b.WriteString("\n\n")

	title := "Sign in"
	labels := loginLabels
	if m.login.register {
		title = "Create account"
		labels = registerLabels
	}
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n\n")

	for i, input := range m.login.inputs {
		labelStyle := styles.Label
		if i == m.login.focus {
			labelStyle = styles.AccentText.Bold(true)
		}
		b.WriteString(labelStyle.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.login.busy:
		b.WriteString(styles.InfoText.Render(m.spin.View() + " contacting server..."))
	case m.login.errMsg != "":
		b.WriteString(styles.DangerText.Render(m.login.errMsg))
	default:
		b.WriteString(" ")
	}

	hint := "enter: submit · ctrl+r: create account"
	if m.login.register {
		hint = "enter: submit · ctrl+r: back to sign in"
	}
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render(hint))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Padding(1, 3).
		Render(b.String())

	return lipgloss.Place(
		m.width,
		m.contentHeight(),
		lipgloss.Center,
		lipgloss.Center,
		card,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

// Messages

type authResultMsg struct {
	register bool
	resp     api.AuthResponse
	err      error
}

// Commands

func loginCmd(ctx context.Context, client api.Service, username, password string) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.Login(ctx, username, password)
		return authResultMsg{resp: resp, err: err}
	}
}

func registerCmd(ctx context.Context, client api.Service, req api.RegisterRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.Register(ctx, req)
		return authResultMsg{register: true, resp: resp, err: err}
	}
}
