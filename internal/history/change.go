// Package history provides undo/redo over document snapshots.
package history

import (
	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/selection"
)

// ChangeKind classifies the edit that produced an entry.
type ChangeKind int

const (
	// KindInsertChar is plain typing; adjacent entries coalesce.
	KindInsertChar ChangeKind = iota
	// KindDeleteChar is a single backspace; adjacent entries coalesce.
	KindDeleteChar
	// KindStructural is a transform, split, paste or style change. Always
	// its own undo step.
	KindStructural
)

func (k ChangeKind) String() string {
	switch k {
	case KindInsertChar:
		return "insert-char"
	case KindDeleteChar:
		return "delete-char"
	case KindStructural:
		return "structural"
	}
	return "unknown"
}

// Entry is one point in the history: the state after an edit.
type Entry struct {
	Doc  *document.Document
	Sel  selection.Selection
	Mode document.Mode
	Kind ChangeKind
}
