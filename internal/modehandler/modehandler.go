// internal/modehandler/modehandler.go
package modehandler

import (
	"regexp"
	"time"

	"github.com/bethropolis/tidemark/internal/clipboard"
	"github.com/bethropolis/tidemark/internal/input"
	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/bethropolis/tidemark/internal/plugin"
	"github.com/bethropolis/tidemark/internal/session"
	"github.com/bethropolis/tidemark/internal/statusbar"
	"github.com/gdamore/tcell/v2"
)

// InputMode defines the different states for user input.
type InputMode int

const (
	ModeNormal InputMode = iota
	ModeCommand
)

func (m InputMode) String() string {
	if m == ModeCommand {
		return "COMMAND"
	}
	return "NORMAL"
}

// DefaultSaveTimeout bounds a save started from the keyboard.
const DefaultSaveTimeout = 10 * time.Second

// ModeHandler turns key events into session edits and runs the command
// prompt.
type ModeHandler struct {
	session        *session.Session
	clipboard      *clipboard.Clipboard
	inputProcessor *input.InputProcessor
	statusBar      *statusbar.StatusBar
	quitSignal     chan<- struct{}
	saveTimeout    time.Duration

	currentMode      InputMode
	cmdBuffer        []rune
	commands         map[string]plugin.CommandFunc
	forceQuitPending bool
	quitting         bool
	lastSearch       *regexp.Regexp
}

// Config holds dependencies for the ModeHandler.
type Config struct {
	Session        *session.Session
	Clipboard      *clipboard.Clipboard
	InputProcessor *input.InputProcessor
	StatusBar      *statusbar.StatusBar
	QuitSignal     chan<- struct{} // Closed once to signal quit
	SaveTimeout    time.Duration
}

// New creates a new ModeHandler.
func New(cfg Config) *ModeHandler {
	if cfg.Session == nil || cfg.InputProcessor == nil || cfg.StatusBar == nil || cfg.QuitSignal == nil {
		panic("modehandler.New: Missing required dependencies in Config")
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = clipboard.New(false)
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = DefaultSaveTimeout
	}
	mh := &ModeHandler{
		session:        cfg.Session,
		clipboard:      cfg.Clipboard,
		inputProcessor: cfg.InputProcessor,
		statusBar:      cfg.StatusBar,
		quitSignal:     cfg.QuitSignal,
		saveTimeout:    cfg.SaveTimeout,
		currentMode:    ModeNormal,
		commands:       make(map[string]plugin.CommandFunc),
	}
	mh.registerBuiltins()
	return mh
}

// HandleKeyEvent decides what to do based on current mode and key event.
// Returns true if the event resulted in an action requiring redraw.
func (mh *ModeHandler) HandleKeyEvent(ev *tcell.EventKey) bool {
	actionEvent := mh.inputProcessor.ProcessEvent(ev)

	switch mh.currentMode {
	case ModeNormal:
		return mh.handleActionNormal(actionEvent, ev.Modifiers()&tcell.ModShift != 0)
	case ModeCommand:
		return mh.handleActionCommand(actionEvent)
	default:
		logger.Warnf("ModeHandler: unknown input mode: %v", mh.currentMode)
		return false
	}
}

// GetCurrentMode returns the current input mode.
func (mh *ModeHandler) GetCurrentMode() InputMode {
	return mh.currentMode
}

// GetCommandBuffer returns the command being typed, or "" outside
// command mode.
func (mh *ModeHandler) GetCommandBuffer() string {
	if mh.currentMode == ModeCommand {
		return string(mh.cmdBuffer)
	}
	return ""
}

// quit closes the quit signal once.
func (mh *ModeHandler) quit() {
	if mh.quitting {
		return
	}
	mh.quitting = true
	close(mh.quitSignal)
}
