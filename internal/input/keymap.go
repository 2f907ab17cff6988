// internal/input/keymap.go
package input

import (
	"github.com/gdamore/tcell/v2"
)

// Keymap maps specific key events to editor actions.
type Keymap map[tcell.Key]ActionEvent   // For special keys (Enter, Arrows, etc.)
type ModKeymap map[tcell.ModMask]Keymap // For keys combined with modifiers (Ctrl, Alt, Shift)

// InputProcessor translates tcell events into ActionEvents.
type InputProcessor struct {
	keymap    Keymap
	modKeymap ModKeymap
}

// NewInputProcessor creates a processor with default keybindings.
func NewInputProcessor() *InputProcessor {
	p := &InputProcessor{
		keymap:    make(Keymap),
		modKeymap: make(ModKeymap),
	}
	p.loadDefaultBindings()
	return p
}

func act(a Action) ActionEvent { return ActionEvent{Action: a} }

func command(name string) ActionEvent { return ActionEvent{Action: ActionCommand, Command: name} }

// loadDefaultBindings sets up the initial key mappings.
func (p *InputProcessor) loadDefaultBindings() {
	// --- Simple Keys ---
	p.keymap[tcell.KeyUp] = act(ActionMoveUp)
	p.keymap[tcell.KeyDown] = act(ActionMoveDown)
	p.keymap[tcell.KeyLeft] = act(ActionMoveLeft)
	p.keymap[tcell.KeyRight] = act(ActionMoveRight)
	p.keymap[tcell.KeyHome] = act(ActionMoveHome)
	p.keymap[tcell.KeyEnd] = act(ActionMoveEnd)
	p.keymap[tcell.KeyEnter] = act(ActionInsertNewLine)
	p.keymap[tcell.KeyBackspace] = act(ActionDeleteCharBackward)
	p.keymap[tcell.KeyBackspace2] = act(ActionDeleteCharBackward) // Often used for Backspace
	p.keymap[tcell.KeyEscape] = act(ActionCancel)
	p.keymap[tcell.KeyTab] = ActionEvent{Action: ActionInsertRune, Rune: '\t'}

	// --- Ctrl bindings ---
	// tcell reports Ctrl+letter as its own key with ModCtrl set.
	ctrlMap := make(Keymap)
	ctrlMap[tcell.KeyCtrlS] = act(ActionSave)
	ctrlMap[tcell.KeyCtrlQ] = act(ActionQuit)
	ctrlMap[tcell.KeyCtrlC] = act(ActionForceQuit)
	ctrlMap[tcell.KeyCtrlZ] = act(ActionUndo)
	ctrlMap[tcell.KeyCtrlY] = act(ActionRedo)
	ctrlMap[tcell.KeyCtrlW] = act(ActionCopy)
	ctrlMap[tcell.KeyCtrlV] = act(ActionPaste)
	ctrlMap[tcell.KeyCtrlG] = act(ActionEnterCommandMode)
	ctrlMap[tcell.KeyCtrlN] = act(ActionFindNext)
	ctrlMap[tcell.KeyCtrlB] = command("bold")
	ctrlMap[tcell.KeyCtrlR] = command("redline")
	ctrlMap[tcell.KeyCtrlU] = command("underline")
	ctrlMap[tcell.KeyCtrlE] = command("code")
	ctrlMap[tcell.KeyCtrlT] = command("header-one")
	ctrlMap[tcell.KeyCtrlK] = command("code-block")

	p.modKeymap[tcell.ModCtrl] = ctrlMap
}

// ProcessEvent takes a tcell key event and returns the corresponding ActionEvent.
// The mode handler decides what the action means in the current mode.
func (p *InputProcessor) ProcessEvent(ev *tcell.EventKey) ActionEvent {
	key := ev.Key()
	mod := ev.Modifiers()

	// 1. Modifier + Key combinations
	if modKeyMap, ok := p.modKeymap[mod]; ok {
		if ae, ok := modKeyMap[key]; ok {
			return ae
		}
	}
	// Some terminals report Ctrl+letter without the modifier.
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		if ae, ok := p.modKeymap[tcell.ModCtrl][key]; ok {
			return ae
		}
	}

	// 2. Simple keys; Shift is allowed with arrows etc.
	if mod == tcell.ModNone || mod == tcell.ModShift {
		if ae, ok := p.keymap[key]; ok {
			return ae
		}
	}

	// 3. Plain runes are insert requests.
	if key == tcell.KeyRune && mod&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) == 0 {
		return ActionEvent{Action: ActionInsertRune, Rune: ev.Rune()}
	}

	return ActionEvent{Action: ActionUnknown}
}
