// Package transform is the editing engine. Every operation takes the
// current State and returns a Result holding the next State; nothing is
// mutated, so callers can keep old states for undo.
package transform

import (
	"fmt"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/history"
	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/bethropolis/tidemark/internal/selection"
	"github.com/bethropolis/tidemark/internal/trigger"
)

// State is what an edit reads and produces.
type State struct {
	Doc  *document.Document
	Sel  selection.Selection
	Mode document.Mode
}

// Result reports whether the engine took the event. When Handled is false
// the caller runs its default path and State is the zero value.
type Result struct {
	Handled bool
	State   State
	Kind    history.ChangeKind
	Trigger trigger.Kind
}

func handled(st State, kind history.ChangeKind) Result {
	return Result{Handled: true, State: st, Kind: kind}
}

// Engine applies triggers, return-key transforms, commands and default edits.
type Engine struct {
	recognizer *trigger.Recognizer
	newKey     func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecognizer replaces the default trigger table.
func WithRecognizer(r *trigger.Recognizer) Option {
	return func(e *Engine) { e.recognizer = r }
}

// WithKeyFunc sets the generator for keys of blocks created by splits.
func WithKeyFunc(f func() string) Option {
	return func(e *Engine) { e.newKey = f }
}

// New returns an engine with the default trigger table.
func New(opts ...Option) *Engine {
	e := &Engine{
		recognizer: trigger.Default(),
		newKey:     document.NewKey,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BeforeInsertChar runs the trigger recognizer for c. On a match the trigger
// text is removed and the block type or inline mode changes in one step.
func (e *Engine) BeforeInsertChar(st State, c rune) (Result, error) {
	m, err := e.recognizer.Recognize(st.Doc, st.Sel, c)
	if err != nil {
		return Result{}, err
	}
	if m.Kind == trigger.KindNone {
		return Result{}, nil
	}

	key := st.Sel.BlockKey
	doc, err := st.Doc.DeleteRange(key, m.Start, m.Start+m.Length)
	if err != nil {
		return Result{}, fmt.Errorf("remove %v trigger: %w", m.Kind, err)
	}
	next := State{Doc: doc, Sel: selection.Collapsed(key, m.Start), Mode: st.Mode}

	if m.Kind == trigger.KindHeading {
		if next.Doc, err = doc.SetBlockType(key, document.Heading); err != nil {
			return Result{}, err
		}
	} else {
		next.Mode = toggleMode(st.Mode, m.Kind.Mode())
	}
	logger.DebugTagf("trigger", "Engine: %v trigger fired in %s, mode %v -> %v", m.Kind, key, st.Mode, next.Mode)

	r := handled(next, history.KindStructural)
	r.Trigger = m.Kind
	return r, nil
}

// toggleMode switches to want, or back to ModeNone if want is already on.
// Modes replace each other, so at most one is ever active.
func toggleMode(cur, want document.Mode) document.Mode {
	if cur == want {
		return document.ModeNone
	}
	return want
}

// Return handles the return key. A heading is split and the new line
// demoted to body text; with an inline mode active the block is split and
// the new line starts with no mode. Otherwise the key is not handled.
func (e *Engine) Return(st State) (Result, error) {
	b, err := selection.Validate(st.Doc, st.Sel)
	if err != nil {
		return Result{}, err
	}
	if b.Type != document.Heading && st.Mode == document.ModeNone {
		return Result{}, nil
	}

	st, err = e.deleteSelection(st)
	if err != nil {
		return Result{}, err
	}
	split, err := e.split(st)
	if err != nil {
		return Result{}, err
	}
	if b.Type == document.Heading {
		if split.Doc, err = split.Doc.SetBlockType(split.Sel.BlockKey, document.Body); err != nil {
			return Result{}, err
		}
	}
	split.Mode = document.ModeNone
	logger.DebugTagf("trigger", "Engine: return in %v block with mode %v", b.Type, st.Mode)
	return handled(split, history.KindStructural), nil
}

// split cuts the caret's block at the caret and moves the caret to the
// start of the new block, which keeps the original type.
func (e *Engine) split(st State) (State, error) {
	newKey := e.newKey()
	doc, err := st.Doc.SplitBlock(st.Sel.BlockKey, st.Sel.Focus, newKey)
	if err != nil {
		return State{}, err
	}
	return State{Doc: doc, Sel: selection.Collapsed(newKey, 0), Mode: st.Mode}, nil
}

// deleteSelection removes the selected text of a range selection and
// collapses it. A caret is returned unchanged.
func (e *Engine) deleteSelection(st State) (State, error) {
	if _, err := selection.Validate(st.Doc, st.Sel); err != nil {
		return State{}, err
	}
	if st.Sel.IsCollapsed() {
		return st, nil
	}
	doc, err := st.Doc.DeleteRange(st.Sel.BlockKey, st.Sel.Start(), st.Sel.End())
	if err != nil {
		return State{}, err
	}
	return State{Doc: doc, Sel: selection.Collapsed(st.Sel.BlockKey, st.Sel.Start()), Mode: st.Mode}, nil
}

// CaretMode derives the mode for a caret placed at sel from the style of the
// character before it. It is used when the caret moves onto existing text.
func CaretMode(doc *document.Document, sel selection.Selection) (document.Mode, error) {
	b, err := selection.Validate(doc, sel)
	if err != nil {
		return document.ModeNone, err
	}
	if sel.Focus == 0 {
		return document.ModeNone, nil
	}
	return document.ModeOf(b.StylesAt(sel.Focus - 1)), nil
}
