// internal/app/app.go
package app

import (
	"context"
	"fmt"

	"github.com/bethropolis/tidemark/internal/clipboard"
	"github.com/bethropolis/tidemark/internal/config"
	"github.com/bethropolis/tidemark/internal/event"
	"github.com/bethropolis/tidemark/internal/highlight"
	"github.com/bethropolis/tidemark/internal/input"
	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/bethropolis/tidemark/internal/modehandler"
	"github.com/bethropolis/tidemark/internal/persist"
	"github.com/bethropolis/tidemark/internal/plugin"
	"github.com/bethropolis/tidemark/internal/session"
	"github.com/bethropolis/tidemark/internal/statusbar"
	"github.com/bethropolis/tidemark/internal/theme"
	"github.com/bethropolis/tidemark/internal/tui"
	"github.com/gdamore/tcell/v2"
)

// App encapsulates the core components and main loop of the editor.
type App struct {
	cfg           *config.Config
	tuiManager    *tui.TUI
	view          *tui.View
	session       *session.Session
	statusBar     *statusbar.StatusBar
	eventManager  *event.Manager
	pluginManager *plugin.Manager
	modeHandler   *modehandler.ModeHandler
	editorAPI     plugin.EditorAPI
	themeManager  *theme.Manager
	highlights    *highlight.Manager // nil when the code language is unsupported
	closeStore    func() error
	loadErr       error

	// Channels managed by the App
	quit          chan struct{}
	redrawRequest chan struct{}
}

// Option customizes NewApp.
type Option func(*options)

type options struct {
	screen  tcell.Screen
	adapter *persist.Adapter
}

// WithScreen draws on screen instead of the terminal.
func WithScreen(s tcell.Screen) Option {
	return func(o *options) { o.screen = s }
}

// WithAdapter uses adapter instead of opening the configured store.
func WithAdapter(a *persist.Adapter) Option {
	return func(o *options) { o.adapter = a }
}

// NewApp creates and initializes a new application instance and loads the
// configured slot.
func NewApp(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// --- Themes ---
	themeManager, err := theme.NewManager(cfg.Editor.ThemesDir)
	if err != nil {
		logger.Warnf("App: failed to load themes from '%s': %v", cfg.Editor.ThemesDir, err)
	}
	if cfg.Editor.Theme != "" {
		if err := themeManager.SetTheme(cfg.Editor.Theme); err != nil {
			logger.Warnf("App: %v, using %s", err, themeManager.Current().Name)
		}
	}

	// --- Storage ---
	closeStore := func() error { return nil }
	adapter := o.adapter
	if adapter == nil {
		adapter, closeStore, err = NewAdapter(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("storage initialization failed: %w", err)
		}
	}

	// --- Screen ---
	var tuiManager *tui.TUI
	if o.screen != nil {
		tuiManager, err = tui.NewWithScreen(o.screen, themeManager.Current())
	} else {
		tuiManager, err = tui.New(themeManager.Current())
	}
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("TUI initialization failed: %w", err)
	}

	// --- Core Components ---
	eventManager := event.NewManager()
	sess := session.New(adapter,
		session.WithEvents(eventManager),
		session.WithHistoryLimits(cfg.Editor.MaxHistory, cfg.Editor.CoalesceMaxRun),
	)
	statusBar := statusbar.New(statusbar.ConfigFromTheme(themeManager.Current()))
	quitChan := make(chan struct{})

	a := &App{
		cfg:           cfg,
		tuiManager:    tuiManager,
		view:          &tui.View{ScrollOff: cfg.Editor.ScrollOff, TabWidth: cfg.Editor.TabWidth},
		session:       sess,
		statusBar:     statusBar,
		eventManager:  eventManager,
		pluginManager: plugin.NewManager(),
		themeManager:  themeManager,
		closeStore:    closeStore,
		quit:          quitChan,
		redrawRequest: make(chan struct{}, 1),
	}

	a.modeHandler = modehandler.New(modehandler.Config{
		Session:        sess,
		Clipboard:      clipboard.New(cfg.Editor.SystemClipboard),
		InputProcessor: input.NewInputProcessor(),
		StatusBar:      statusBar,
		QuitSignal:     quitChan,
	})

	// --- Syntax Highlighting ---
	if h, err := highlight.New(cfg.Editor.CodeLanguage); err != nil {
		logger.Warnf("App: code blocks will not be highlighted: %v", err)
	} else {
		a.highlights = highlight.NewManager(h, a.requestRedraw)
	}

	// --- Editor API, commands and plugins ---
	a.editorAPI = newEditorAPI(a)
	registerAppCommands(a)
	if err := registerPlugins(a.pluginManager); err != nil {
		logger.Warnf("App: %v", err)
	}

	// --- Subscribe Core Components ---
	a.subscribeEvents()

	a.pluginManager.InitializePlugins(a.editorAPI)

	// --- Initial Load ---
	if err := sess.Load(ctx); err != nil {
		a.loadErr = err
		statusBar.SetErrorMessage("Could not load slot %s: %v", sess.Slot(), err)
	}

	return a, nil
}

// Run starts the application's main event and drawing loops.
func (a *App) Run() error {
	defer a.closeStore()
	defer a.tuiManager.Close()
	defer a.pluginManager.ShutdownPlugins()
	defer a.shutdownHighlighting()

	go a.eventLoop()

	a.eventManager.Dispatch(event.TypeAppReady, nil)
	if a.loadErr == nil {
		a.statusBar.SetTemporaryMessage("Tidemark - Ctrl+S Save | Ctrl+G Command | Ctrl+Q Quit")
	}
	a.requestRedraw()

	// --- Main Drawing Loop ---
	for {
		select {
		case <-a.quit:
			a.eventManager.Dispatch(event.TypeAppQuit, nil)
			if a.session.Modified() {
				logger.Warnf("App: exited with unsaved changes")
			}
			logger.Infof("App: exiting")
			return nil
		case <-a.redrawRequest:
			a.drawEditor()
		}
	}
}

func (a *App) shutdownHighlighting() {
	if a.highlights != nil {
		a.highlights.Shutdown()
	}
}

// eventLoop handles TUI events, delegating key events to ModeHandler.
func (a *App) eventLoop() {
	for {
		ev := a.tuiManager.PollEvent()
		if ev == nil {
			return
		}

		needsRedraw := false
		switch eventData := ev.(type) {
		case *tcell.EventResize:
			a.tuiManager.GetScreen().Sync()
			needsRedraw = true
		case *tcell.EventKey:
			needsRedraw = a.modeHandler.HandleKeyEvent(eventData)
		}

		if needsRedraw {
			a.requestRedraw()
		}
	}
}

// GetModeHandler allows the API adapter to access the mode handler for command registration.
func (a *App) GetModeHandler() *modehandler.ModeHandler {
	return a.modeHandler
}

// GetTheme returns the app's active theme.
func (a *App) GetTheme() *theme.Theme {
	return a.themeManager.Current()
}

// SetTheme switches the active theme by name and redraws.
func (a *App) SetTheme(name string) error {
	if err := a.themeManager.SetTheme(name); err != nil {
		return err
	}
	current := a.themeManager.Current()
	a.tuiManager.SetTheme(current)
	a.statusBar.SetConfig(statusbar.ConfigFromTheme(current))
	a.requestRedraw()
	return nil
}

// Session returns the editing session.
func (a *App) Session() *session.Session { return a.session }
