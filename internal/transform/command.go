package transform

import (
	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/history"
	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/bethropolis/tidemark/internal/selection"
)

// Command identifies a keyboard-shortcut style or block toggle.
type Command string

const (
	CmdBold      Command = "bold"
	CmdRedLine   Command = "redline"
	CmdUnderline Command = "underline"
	CmdCode      Command = "code"
	CmdHeaderOne Command = "header-one"
	CmdCodeBlock Command = "code-block"
)

var inlineCommands = map[Command]document.Style{
	CmdBold:      document.Bold,
	CmdRedLine:   document.RedLine,
	CmdUnderline: document.Underline,
	CmdCode:      document.CodeBlock,
}

var blockCommands = map[Command]document.BlockType{
	CmdHeaderOne: document.Heading,
	CmdCodeBlock: document.Code,
}

// ParseCommand maps a command name to a Command.
func ParseCommand(name string) (Command, bool) {
	c := Command(name)
	if _, ok := inlineCommands[c]; ok {
		return c, true
	}
	if _, ok := blockCommands[c]; ok {
		return c, true
	}
	return "", false
}

// Command applies cmd. Inline commands toggle the caret mode on a caret,
// or the style over a range selection. Block commands switch the caret's
// block between the given type and body. Unknown commands are not handled.
func (e *Engine) Command(st State, cmd Command) (Result, error) {
	b, err := selection.Validate(st.Doc, st.Sel)
	if err != nil {
		return Result{}, err
	}

	if style, ok := inlineCommands[cmd]; ok {
		if st.Sel.IsCollapsed() {
			next := st
			next.Mode = toggleMode(st.Mode, document.ModeFor(style))
			logger.DebugTagf("command", "Engine: %s, mode %v -> %v", cmd, st.Mode, next.Mode)
			return handled(next, history.KindStructural), nil
		}
		doc, err := st.Doc.ToggleStyle(st.Sel.BlockKey, st.Sel.Start(), st.Sel.End(), style)
		if err != nil {
			return Result{}, err
		}
		logger.DebugTagf("command", "Engine: %s over %s", cmd, st.Sel)
		return handled(State{Doc: doc, Sel: st.Sel, Mode: st.Mode}, history.KindStructural), nil
	}

	if typ, ok := blockCommands[cmd]; ok {
		if b.Type == typ {
			typ = document.Body
		}
		doc, err := st.Doc.SetBlockType(st.Sel.BlockKey, typ)
		if err != nil {
			return Result{}, err
		}
		logger.DebugTagf("command", "Engine: %s, block %s is now %v", cmd, b.Key, typ)
		return handled(State{Doc: doc, Sel: st.Sel, Mode: st.Mode}, history.KindStructural), nil
	}

	logger.DebugTagf("command", "Engine: unknown command %q", cmd)
	return Result{}, nil
}
