// internal/input/action.go
package input

// Action represents a command or operation to be performed by the editor.
type Action int

// Define the set of possible editor actions.
const (
	// --- Meta Actions ---
	ActionUnknown Action = iota // Default/invalid action
	ActionQuit
	ActionForceQuit // Quit without checking modified status
	ActionSave
	ActionCancel // Escape

	// --- Caret Movement ---
	ActionMoveUp
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionMoveHome // Beginning of block
	ActionMoveEnd  // End of block

	// --- Text Manipulation ---
	ActionInsertRune    // Requires Rune argument
	ActionInsertNewLine // Return
	ActionDeleteCharBackward
	ActionUndo
	ActionRedo
	ActionCopy
	ActionPaste

	// --- Styling ---
	ActionCommand // Requires Command argument

	// --- Search ---
	ActionFindNext // Repeat the last :find

	// --- Editor Mode ---
	ActionEnterCommandMode
)

// ActionEvent represents a decoded input event resulting in an action.
type ActionEvent struct {
	Action  Action
	Rune    rune   // Used for ActionInsertRune
	Command string // Used for ActionCommand
}
