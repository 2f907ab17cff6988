// internal/event/event.go
package event

import (
	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/history"
	"github.com/bethropolis/tidemark/internal/selection"
	"github.com/bethropolis/tidemark/internal/trigger"
)

// Type identifies the kind of event.
type Type int

const (
	TypeUnknown Type = iota

	// Session events
	TypeDocumentChanged  // Fired after every accepted edit, undo or redo
	TypeTriggerFired     // Fired when a typed trigger converted text
	TypeModeChanged      // Fired when the caret mode changes without an edit
	TypeSelectionChanged // Fired when the caret or selection moved
	TypeDocumentLoaded   // Fired after the slot has been read
	TypeDocumentSaved    // Fired after a successful save
	TypeSaveFailed       // Fired when a save returned an error

	// Slot events (server side)
	TypeSlotUpdated // Fired when a slot was written or deleted

	// Application lifecycle
	TypeAppReady
	TypeAppQuit
)

func (t Type) String() string {
	switch t {
	case TypeDocumentChanged:
		return "document-changed"
	case TypeTriggerFired:
		return "trigger-fired"
	case TypeModeChanged:
		return "mode-changed"
	case TypeSelectionChanged:
		return "selection-changed"
	case TypeDocumentLoaded:
		return "document-loaded"
	case TypeDocumentSaved:
		return "document-saved"
	case TypeSaveFailed:
		return "save-failed"
	case TypeSlotUpdated:
		return "slot-updated"
	case TypeAppReady:
		return "app-ready"
	case TypeAppQuit:
		return "app-quit"
	}
	return "unknown"
}

// Event is the structure passed through the event bus.
type Event struct {
	Type Type
	Data interface{}
}

// DocumentChangedData carries the snapshot to render.
type DocumentChangedData struct {
	Doc  *document.Document
	Sel  selection.Selection
	Mode document.Mode
	Kind history.ChangeKind
}

// TriggerFiredData names the trigger and the block it fired in.
type TriggerFiredData struct {
	Kind     trigger.Kind
	BlockKey string
}

// ModeChangedData carries the new caret mode.
type ModeChangedData struct {
	Mode document.Mode
}

// SelectionChangedData carries the new selection and the caret mode it
// implies.
type SelectionChangedData struct {
	Sel  selection.Selection
	Mode document.Mode
}

// DocumentLoadedData reports a load. Err is set when the slot could not be
// read and the session fell back to an empty document.
type DocumentLoadedData struct {
	Slot string
	Err  error
}

// DocumentSavedData reports a successful save.
type DocumentSavedData struct {
	Slot string
}

// SaveFailedData reports a failed save. The caller decides whether to retry.
type SaveFailedData struct {
	Slot string
	Err  error
}

// SlotUpdatedData carries the new slot content. Deleted is set when the
// slot was removed.
type SlotUpdatedData struct {
	Slot    string
	Content string
	Deleted bool
}
