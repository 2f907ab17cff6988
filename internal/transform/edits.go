package transform

import (
	"strings"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/history"
	"github.com/bethropolis/tidemark/internal/selection"
)

// InsertChar types c at the caret with the active mode's style. A range
// selection is replaced. A newline splits the block.
func (e *Engine) InsertChar(st State, c rune) (Result, error) {
	if c == '\n' {
		return e.SplitLine(st)
	}
	replaced := !st.Sel.IsCollapsed()
	st, err := e.deleteSelection(st)
	if err != nil {
		return Result{}, err
	}
	key, at := st.Sel.BlockKey, st.Sel.Focus
	doc, err := st.Doc.InsertText(key, at, string(c), st.Mode.Styles())
	if err != nil {
		return Result{}, err
	}
	kind := history.KindInsertChar
	if replaced {
		kind = history.KindStructural
	}
	return handled(State{Doc: doc, Sel: selection.Collapsed(key, at+1), Mode: st.Mode}, kind), nil
}

// InsertText pastes s at the caret. Each line break starts a new block of
// the current block's type. Pasted text takes the active mode's style.
func (e *Engine) InsertText(st State, s string) (Result, error) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if s == "" {
		return Result{}, nil
	}
	st, err := e.deleteSelection(st)
	if err != nil {
		return Result{}, err
	}
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			if st, err = e.split(st); err != nil {
				return Result{}, err
			}
		}
		key, at := st.Sel.BlockKey, st.Sel.Focus
		doc, err := st.Doc.InsertText(key, at, line, st.Mode.Styles())
		if err != nil {
			return Result{}, err
		}
		st = State{Doc: doc, Sel: selection.Collapsed(key, at+len([]rune(line))), Mode: st.Mode}
	}
	return handled(st, history.KindStructural), nil
}

// SplitLine is the plain return key: the block is cut at the caret and the
// new block keeps its type. The mode carries over.
func (e *Engine) SplitLine(st State) (Result, error) {
	st, err := e.deleteSelection(st)
	if err != nil {
		return Result{}, err
	}
	next, err := e.split(st)
	if err != nil {
		return Result{}, err
	}
	return handled(next, history.KindStructural), nil
}

// DeleteBackward is the backspace key. A range selection is removed;
// otherwise one grapheme cluster before the caret goes. At the start of a
// heading or code block the block is demoted to body, and at the start of
// a body block it is merged into the previous block. Backspace at the very
// start of the document is not handled.
func (e *Engine) DeleteBackward(st State) (Result, error) {
	b, err := selection.Validate(st.Doc, st.Sel)
	if err != nil {
		return Result{}, err
	}
	if !st.Sel.IsCollapsed() {
		next, err := e.deleteSelection(st)
		if err != nil {
			return Result{}, err
		}
		return handled(next, history.KindStructural), nil
	}

	key, at := st.Sel.BlockKey, st.Sel.Focus
	if at > 0 {
		from := selection.PrevBoundary(b.Text, at)
		doc, err := st.Doc.DeleteRange(key, from, at)
		if err != nil {
			return Result{}, err
		}
		return handled(State{Doc: doc, Sel: selection.Collapsed(key, from), Mode: st.Mode}, history.KindDeleteChar), nil
	}

	if b.Type != document.Body {
		doc, err := st.Doc.SetBlockType(key, document.Body)
		if err != nil {
			return Result{}, err
		}
		return handled(State{Doc: doc, Sel: st.Sel, Mode: st.Mode}, history.KindStructural), nil
	}
	if _, i, _ := st.Doc.BlockByKey(key); i == 0 {
		return Result{}, nil
	}
	doc, prevKey, join, err := st.Doc.MergeWithPrevious(key)
	if err != nil {
		return Result{}, err
	}
	return handled(State{Doc: doc, Sel: selection.Collapsed(prevKey, join), Mode: st.Mode}, history.KindStructural), nil
}
