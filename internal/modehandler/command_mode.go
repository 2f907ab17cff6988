package modehandler

import (
	"fmt"
	"strings"

	"github.com/bethropolis/tidemark/internal/input"
	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/bethropolis/tidemark/internal/plugin"
)

// handleActionCommand handles actions when in ModeCommand.
func (mh *ModeHandler) handleActionCommand(actionEvent input.ActionEvent) bool {
	switch actionEvent.Action {
	case input.ActionInsertRune:
		mh.cmdBuffer = append(mh.cmdBuffer, actionEvent.Rune)

	case input.ActionDeleteCharBackward:
		if len(mh.cmdBuffer) == 0 {
			mh.leaveCommandMode()
			logger.Debugf("ModeHandler: Exiting Command Mode via Backspace")
			return true
		}
		mh.cmdBuffer = mh.cmdBuffer[:len(mh.cmdBuffer)-1]

	case input.ActionInsertNewLine:
		cmdStr := string(mh.cmdBuffer)
		mh.leaveCommandMode()
		mh.executeCommand(cmdStr)
		return true

	case input.ActionCancel:
		mh.leaveCommandMode()
		logger.Debugf("ModeHandler: Canceled Command Mode via Escape")
		return true

	default:
		return false
	}

	mh.statusBar.SetPrompt(":"+string(mh.cmdBuffer), true)
	return true
}

func (mh *ModeHandler) leaveCommandMode() {
	mh.currentMode = ModeNormal
	mh.cmdBuffer = mh.cmdBuffer[:0]
	mh.statusBar.SetPrompt("", false)
}

// executeCommand runs a registered command, or else a document command
// such as "bold" or "code-block".
func (mh *ModeHandler) executeCommand(cmdStr string) {
	parts := strings.Fields(cmdStr)
	if len(parts) == 0 {
		return
	}
	cmdName, args := parts[0], parts[1:]

	if cmdFunc, exists := mh.commands[cmdName]; exists {
		logger.Debugf("ModeHandler: Executing command ':%s' with args %v", cmdName, args)
		if err := cmdFunc(args); err != nil {
			mh.statusBar.SetErrorMessage("Error executing command '%s': %v", cmdName, err)
		}
		return
	}

	ok, err := mh.session.Command(cmdName)
	switch {
	case err != nil:
		mh.report(cmdName, err)
	case !ok:
		mh.statusBar.SetErrorMessage("Unknown command: %s", cmdName)
	}
}

// RegisterCommand adds a command to the registry. Called via EditorAPI.
func (mh *ModeHandler) RegisterCommand(name string, cmdFunc plugin.CommandFunc) error {
	if name == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if _, exists := mh.commands[name]; exists {
		return fmt.Errorf("command '%s' already registered", name)
	}
	mh.commands[name] = cmdFunc
	logger.Debugf("ModeHandler: Registered command ':%s'", name)
	return nil
}

func (mh *ModeHandler) registerBuiltins() {
	save := func([]string) error { mh.save(); return nil }
	quit := func([]string) error {
		if mh.session.Modified() {
			return fmt.Errorf("unsaved changes, use q! to discard")
		}
		mh.quit()
		return nil
	}
	forceQuit := func([]string) error { mh.quit(); return nil }
	undo := func([]string) error {
		if !mh.session.Undo() {
			mh.statusBar.SetTemporaryMessage("Nothing to undo")
		}
		return nil
	}
	redo := func([]string) error {
		if !mh.session.Redo() {
			mh.statusBar.SetTemporaryMessage("Nothing to redo")
		}
		return nil
	}
	for name, fn := range map[string]plugin.CommandFunc{
		"w": save, "save": save,
		"q": quit, "quit": quit, "q!": forceQuit,
		"undo": undo, "redo": redo,
		"find": mh.findCommand(true), "rfind": mh.findCommand(false),
	} {
		_ = mh.RegisterCommand(name, fn)
	}
}
