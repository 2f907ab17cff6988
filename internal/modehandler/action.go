package modehandler

import (
	"context"
	"errors"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/input"
	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/bethropolis/tidemark/internal/selection"
	"github.com/bethropolis/tidemark/internal/session"
)

var movements = map[input.Action]selection.Direction{
	input.ActionMoveUp:    selection.Up,
	input.ActionMoveDown:  selection.Down,
	input.ActionMoveLeft:  selection.Left,
	input.ActionMoveRight: selection.Right,
	input.ActionMoveHome:  selection.Home,
	input.ActionMoveEnd:   selection.End,
}

// handleActionNormal runs an action against the session.
func (mh *ModeHandler) handleActionNormal(actionEvent input.ActionEvent, isShift bool) bool {
	actionProcessed := true
	var err error

	if dir, ok := movements[actionEvent.Action]; ok {
		if isShift {
			err = mh.extendSelection(dir)
		} else {
			err = mh.session.Move(dir)
		}
		mh.forceQuitPending = false
		mh.report("Move", err)
		return err == nil
	}

	switch actionEvent.Action {
	case input.ActionEnterCommandMode:
		mh.currentMode = ModeCommand
		mh.cmdBuffer = mh.cmdBuffer[:0]
		mh.statusBar.SetPrompt(":", true)
		logger.Debugf("ModeHandler: Entering Command Mode")

	case input.ActionQuit:
		if mh.session.Modified() && !mh.forceQuitPending {
			mh.statusBar.SetTemporaryMessage("Unsaved changes! Press Ctrl+Q again or Ctrl+C to force quit.")
			mh.forceQuitPending = true
			return true
		}
		mh.quit()
		return false
	case input.ActionForceQuit:
		mh.quit()
		return false

	case input.ActionCancel:
		mh.statusBar.ResetTemporaryMessage()

	case input.ActionSave:
		mh.save()

	case input.ActionUndo:
		if !mh.session.Undo() {
			mh.statusBar.SetTemporaryMessage("Nothing to undo")
		}
	case input.ActionRedo:
		if !mh.session.Redo() {
			mh.statusBar.SetTemporaryMessage("Nothing to redo")
		}

	case input.ActionCopy:
		text := mh.session.SelectedText()
		mh.clipboard.Copy(text)
		mh.statusBar.SetTemporaryMessage("Copied %d characters", len([]rune(text)))
	case input.ActionPaste:
		text := mh.clipboard.Paste()
		if text == "" {
			mh.statusBar.SetTemporaryMessage("Clipboard empty")
			actionProcessed = false
			break
		}
		err = mh.session.Paste(text)

	case input.ActionInsertRune:
		err = mh.session.TypeChar(actionEvent.Rune)
	case input.ActionInsertNewLine:
		err = mh.session.Return()
	case input.ActionDeleteCharBackward:
		err = mh.session.Backspace()

	case input.ActionFindNext:
		err = mh.findNext(true)

	case input.ActionCommand:
		var ok bool
		ok, err = mh.session.Command(actionEvent.Command)
		if err == nil && !ok {
			mh.statusBar.SetTemporaryMessage("Cannot apply %s here", actionEvent.Command)
		}

	default:
		actionProcessed = false
	}

	if err != nil {
		mh.report(actionName(actionEvent), err)
		actionProcessed = true
	}
	if actionProcessed && actionEvent.Action != input.ActionQuit {
		mh.forceQuitPending = false
	}
	return actionProcessed
}

// extendSelection moves the focus and keeps the anchor. Selections do not
// cross blocks; leaving the block collapses to the new caret.
func (mh *ModeHandler) extendSelection(dir selection.Direction) error {
	st := mh.session.Snapshot()
	caret, err := selection.Move(st.Doc, st.Sel.Caret(), dir)
	if err != nil {
		return err
	}
	if caret.BlockKey != st.Sel.BlockKey {
		return mh.session.Select(selection.Raw{BlockKey: caret.BlockKey, Anchor: caret.Focus, Focus: caret.Focus})
	}
	return mh.session.Select(selection.Raw{BlockKey: caret.BlockKey, Anchor: st.Sel.Anchor, Focus: caret.Focus})
}

func (mh *ModeHandler) save() {
	ctx, cancel := context.WithTimeout(context.Background(), mh.saveTimeout)
	defer cancel()
	if err := mh.session.Save(ctx); err != nil {
		if errors.Is(err, session.ErrNoStorage) {
			mh.statusBar.SetErrorMessage("No storage configured")
			return
		}
		mh.statusBar.SetErrorMessage("Save FAILED: %v", err)
		return
	}
	mh.statusBar.SetTemporaryMessage("Saved to slot %s", mh.session.Slot())
}

// report shows an edit error. Rejected edits leave the session unchanged.
func (mh *ModeHandler) report(what string, err error) {
	if err == nil {
		return
	}
	logger.Debugf("ModeHandler: %s failed: %v", what, err)
	if errors.Is(err, document.ErrInvariant) {
		mh.statusBar.SetErrorMessage("%s rejected: %v", what, err)
		return
	}
	mh.statusBar.SetErrorMessage("%s failed: %v", what, err)
}

func actionName(ae input.ActionEvent) string {
	switch ae.Action {
	case input.ActionInsertRune:
		return "Insert"
	case input.ActionInsertNewLine:
		return "Return"
	case input.ActionDeleteCharBackward:
		return "Backspace"
	case input.ActionPaste:
		return "Paste"
	case input.ActionCommand:
		return ae.Command
	case input.ActionFindNext:
		return "Find"
	}
	return "Action"
}
