package app

import (
	"context"
	"fmt"

	"deckhand/internal/api"
	"deckhand/internal/config"
	"deckhand/internal/logging"
	"deckhand/internal/prefs"
	"deckhand/internal/session"
	"deckhand/internal/ui"
)

// Options configure the deckhand application.
type Options struct {
	ConfigPath string
	ServerURL  string // overrides the configured backend URL when set
	PrefsPath  string // empty uses default ~/.config/deckhand/prefs.toml
	Location   string // location to open at launch, e.g. /deck/PX4QJT
}

// Run boots the deckhand TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.ServerURL != "" {
		cfg.ServerURL = opts.ServerURL
	}

	logger, err := logging.Open(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := prefs.Load(prefsPath)

	store := session.Open(cfg.SessionDBPath(), logger)
	defer func() { _ = store.Close() }()
	store.Restore()

	client, err := api.NewClient(cfg.ServerURL, func() string {
		if id, ok := store.Current(); ok {
			return id.Token
		}
		return ""
	})
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	uiOpts := ui.Options{
		Context:   ctx,
		Client:    client,
		Session:   store,
		Config:    &cfg,
		Logger:    logger,
		ThemeName: userPrefs.Theme,
		PrefsPath: prefsPath,
		LogPath:   cfg.LogPath(),
		Location:  opts.Location,
	}
	p := ui.NewProgram(uiOpts)

	// Sign the user out in-app the moment the stored token lapses.
	StartExpiryWatch(ctx, store, 0, func() {
		p.Send(ui.SessionExpired())
	})

	_, err = p.Run()
	return err
}
