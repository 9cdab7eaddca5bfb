package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"deckhand/internal/api"
	"deckhand/internal/config"
	"deckhand/internal/prefs"
	"deckhand/internal/reconcile"
	"deckhand/internal/route"
	"deckhand/internal/session"
	"deckhand/internal/toast"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    api.Service
	Session   *session.Store
	Config    *config.Config
	Toasts    *toast.Queue
	Logger    *zap.Logger
	ThemeName string
	PrefsPath string
	LogPath   string
	Location  string // initial location path, e.g. "/deck/QK2M9F31"
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	client    api.Service
	session   *session.Store
	config    *config.Config
	log       *zap.Logger
	prefsPath string
	logPath   string

	// Routing
	location   string
	resolution route.Resolution

	// UI state
	theme  Theme
	keys   keyMap
	width  int
	height int
	ready  bool
	spin   spinner.Model

	// Views
	login   loginModel
	home    homeModel
	deck    deckModel
	profile profileModel

	// Reconciled resources. These outlive view switches so that a result
	// from a superseded visit can never repaint a newer one.
	deckList   *reconcile.Slot[[]api.Deck]
	openDeck   *reconcile.Slot[api.Deck]
	cardArt    *reconcile.Slot[string]
	prefsRes   *reconcile.Slot[api.Preferences]
	inviteKeys *reconcile.Slot[[]api.InviteKey]
	pickerArt  *reconcile.Map[string, string]

	// Notifications
	toasts *toast.Queue

	// Overlays
	showHelp bool
	showLogs bool
	debug    debugModel

	// Command produced by resolving the initial location, fired from Init.
	initCmd tea.Cmd
}

// New creates the root model and resolves the initial location.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	queue := opts.Toasts
	if queue == nil {
		queue = toast.NewQueue()
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	location := opts.Location
	if location == "" {
		location = "/"
	}

	m := Model{
		ctx:       ctx,
		client:    opts.Client,
		session:   opts.Session,
		config:    opts.Config,
		log:       logger,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		theme:     GetTheme(prefs.NormalizeTheme(opts.ThemeName)),
		keys:      DefaultKeyMap(),
		spin:      spinner.New(spinner.WithSpinner(spinner.MiniDot)),

		deckList:   reconcile.NewSlot[[]api.Deck](),
		openDeck:   reconcile.NewSlot[api.Deck](),
		cardArt:    reconcile.NewSlot[string](),
		prefsRes:   reconcile.NewSlot[api.Preferences](),
		inviteKeys: reconcile.NewSlot[[]api.InviteKey](),
		pickerArt:  reconcile.NewMap[string, string](),

		toasts: queue,
	}

	m.initCmd = m.navigate(location)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, textinput.Blink, m.initCmd)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		if m.showLogs {
			m.sizeDebugViewport()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.anyLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case sessionChangedMsg:
		return m.handleSessionChanged()

	case sessionExpiredMsg:
		return m.handleSessionExpired()

	case navigateMsg:
		cmd := m.navigate(msg.location)
		return m, cmd

	case authResultMsg:
		return m.handleAuthResult(msg)

	case deckListMsg:
		return m.handleDeckList(msg)

	case deckMsg:
		return m.handleDeck(msg)

	case cardArtMsg:
		return m.handleCardArt(msg)

	case profilePrefsMsg:
		return m.handleProfilePrefs(msg)

	case inviteKeysMsg:
		return m.handleInviteKeys(msg)

	case pickerArtMsg:
		return m.handlePickerArt(msg)

	case prefsSavedMsg:
		return m.handlePrefsSaved(msg)

	case passwordChangedMsg:
		return m.handlePasswordChanged(msg)

	case toastExpireMsg:
		return m.handleToastExpire(msg)

	case toastRemoveMsg:
		return m.handleToastRemove(msg)

	case debugTickMsg:
		return m.handleDebugTick()

	case debugLinesMsg:
		return m.handleDebugLines(msg)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showLogs {
		return m.renderDebugLog()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.showLogs {
		return m.handleDebugKey(msg)
	}

	// Keys that stay live while a text field has focus.
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+l":
		cmd := m.openDebugLog()
		return m, cmd

	case "ctrl+t":
		cmd := m.toggleTheme()
		return m, cmd

	case "ctrl+x":
		if m.session.Authed() {
			return m.signOut()
		}
		return m, nil
	}

	if m.editing() {
		return m.handleViewKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Theme):
		cmd := m.toggleTheme()
		return m, cmd

	case key.Matches(msg, m.keys.DismissToast):
		return m, m.dismissOldestToast()

	case key.Matches(msg, m.keys.Profile):
		if m.session.Authed() && m.resolution.View != route.ViewProfile {
			cmd := m.navigate("/profile")
			return m, cmd
		}
		return m, nil
	}

	return m.handleViewKey(msg)
}

// editing reports whether the active view owns the printable keys.
func (m Model) editing() bool {
	switch m.resolution.View {
	case route.ViewLogin, route.ViewProfile:
		return true
	default:
		return false
	}
}

func (m Model) handleViewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.resolution.View {
	case route.ViewLogin:
		return m.handleLoginKey(msg)
	case route.ViewHome:
		return m.handleHomeKey(msg)
	case route.ViewDeck:
		return m.handleDeckKey(msg)
	case route.ViewProfile:
		return m.handleProfileKey(msg)
	}
	return m, nil
}

// navigate resolves location against the current session and switches views.
// The stored location always ends at the resolver's fixed point, so a
// redirect is applied exactly once.
func (m *Model) navigate(location string) tea.Cmd {
	res := route.Resolve(location, m.session.Authed())
	if res.Redirected() {
		m.log.Debug("redirect",
			zap.String("from", location), zap.String("to", res.RedirectTo))
	}
	return m.applyRoute(res)
}

func (m *Model) applyRoute(res route.Resolution) tea.Cmd {
	m.resolution = res
	m.location = res.Path
	m.log.Debug("view resolved",
		zap.String("view", res.View.String()), zap.String("location", m.location))

	switch res.View {
	case route.ViewLogin:
		m.login = newLoginModel(res.InviteCode)
		return textinput.Blink

	case route.ViewHome:
		m.home = newHomeModel()
		return m.loadDecksCmd()

	case route.ViewDeck:
		m.deck = newDeckModel(res.DeckCode)
		// A different deck is a different logical resource; drop the old
		// one so it cannot show under the new code.
		m.openDeck.Reset()
		m.cardArt.Reset()
		if res.DeckCode == "" {
			return nil
		}
		return m.loadDeckCmd()

	case route.ViewProfile:
		m.profile = newProfileModel()
		if rec, ok := m.prefsRes.Get(); ok {
			m.profile.saved = rec
			m.profile.seed(rec)
		}
		return m.loadProfileCmds()
	}
	return nil
}

// handleSessionChanged re-resolves the current location after the session
// store changed outside this update loop.
func (m Model) handleSessionChanged() (tea.Model, tea.Cmd) {
	res := route.Resolve(m.location, m.session.Authed())
	if res.Path == m.location && res.View == m.resolution.View {
		return m, nil
	}
	cmd := m.applyRoute(res)
	return m, cmd
}

func (m Model) handleSessionExpired() (tea.Model, tea.Cmd) {
	toastCmd := m.pushToast("Session expired. Sign in again.", toast.LevelWarn)
	navCmd := m.navigate(m.location)
	return m, tea.Batch(toastCmd, navCmd)
}

// signOut clears the session and lands wherever the resolver sends a
// signed-out visitor from the current location.
func (m Model) signOut() (tea.Model, tea.Cmd) {
	m.session.Clear()
	m.log.Info("signed out")
	toastCmd := m.pushToast("Signed out.", toast.LevelInfo)
	navCmd := m.navigate(m.location)
	return m, tea.Batch(toastCmd, navCmd)
}

// toggleTheme restyles immediately and persists the choice locally; the
// server-side copy follows on the next preferences save.
func (m *Model) toggleTheme() tea.Cmd {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
		m.log.Warn("could not persist theme", zap.Error(err))
	}
	return nil
}

// apiFail is the shared failure path for service calls: a 401 means the
// session is gone, anything else surfaces the server's message.
func (m *Model) apiFail(err error, fallback string) tea.Cmd {
	if api.IsUnauthorized(err) && m.session.Authed() {
		m.session.Clear()
		m.log.Warn("session rejected", zap.Error(err))
		toastCmd := m.pushToast("Session expired. Sign in again.", toast.LevelWarn)
		navCmd := m.navigate(m.location)
		return tea.Batch(toastCmd, navCmd)
	}
	m.log.Warn("request failed", zap.Error(err))
	return m.pushToast(errText(err, fallback), toast.LevelError)
}

// errText returns the server's message when err carries one, else fallback.
func errText(err error, fallback string) string {
	if msg := api.Message(err); msg != "" {
		return msg
	}
	return fallback
}

// anyLoading reports whether any fetch or submit is in flight.
func (m Model) anyLoading() bool {
	return m.deckList.Loading() || m.openDeck.Loading() || m.cardArt.Loading() ||
		m.prefsRes.Loading() || m.inviteKeys.Loading() || !m.pickerArt.Idle() ||
		m.login.busy || m.profile.savingPrefs || m.profile.changingPw
}

// renderMain renders the full UI: header, command bar, content, toasts.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())

	if t := m.renderToasts(); t != "" {
		b.WriteString("\n")
		b.WriteString(t)
	}

	return b.String()
}

func (m Model) renderContent() string {
	switch m.resolution.View {
	case route.ViewLogin:
		return m.renderLogin()
	case route.ViewHome:
		return m.renderHome()
	case route.ViewDeck:
		return m.renderDeck()
	case route.ViewProfile:
		return m.renderProfile()
	default:
		return ""
	}
}

// contentHeight is the height left for the view under the two header rows
// and above the toast stack.
func (m Model) contentHeight() int {
	return max(m.height-2-m.toasts.Len(), 3)
}

func lipglossPlaceCenter(width, height int, content string, theme Theme) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)))
}

// Messages

// navigateMsg asks the root model to resolve a new location. External
// goroutines deliver it through Program.Send.
type navigateMsg struct {
	location string
}

// sessionChangedMsg reports that the session store changed outside Update.
type sessionChangedMsg struct{}

// sessionExpiredMsg reports that the stored token passed its deadline.
type sessionExpiredMsg struct{}

// Navigate builds the message that moves the UI to location.
func Navigate(location string) tea.Msg {
	return navigateMsg{location: location}
}

// SessionExpired builds the message the expiry watcher sends after clearing
// the session.
func SessionExpired() tea.Msg {
	return sessionExpiredMsg{}
}

// NewProgram builds the Bubble Tea program wired to the session store, so
// that session changes made outside the update loop re-resolve the view.
func NewProgram(opts Options) *tea.Program {
	m := New(opts)

	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, progOpts...)

	if opts.Session != nil {
		opts.Session.Subscribe(func() {
			p.Send(sessionChangedMsg{})
		})
	}
	return p
}

// Run starts the Bubble Tea program and blocks until exit.
func Run(opts Options) error {
	_, err := NewProgram(opts).Run()
	return err
}
