package app

import (
	"github.com/bethropolis/tidemark/internal/event"
	"github.com/bethropolis/tidemark/internal/logger"
)

// subscribeEvents wires session events to highlighting and redraws.
func (a *App) subscribeEvents() {
	a.eventManager.Subscribe(event.TypeDocumentChanged, a.handleDocumentChangedForHighlighting)
	for _, t := range []event.Type{
		event.TypeDocumentChanged,
		event.TypeSelectionChanged,
		event.TypeModeChanged,
		event.TypeDocumentSaved,
		event.TypeSaveFailed,
		event.TypeDocumentLoaded,
	} {
		a.eventManager.Subscribe(t, a.handleRedraw)
	}
	a.eventManager.Subscribe(event.TypeTriggerFired, a.handleTriggerFired)
}

// handleDocumentChangedForHighlighting queues a highlight pass for the new
// document.
func (a *App) handleDocumentChangedForHighlighting(e event.Event) bool {
	data, ok := e.Data.(event.DocumentChangedData)
	if !ok {
		logger.Warnf("App: Received DocumentChanged event with unexpected data type: %T", e.Data)
		return false
	}
	if a.highlights != nil {
		a.highlights.Schedule(data.Doc)
	}
	return false // Allow other handlers to run
}

func (a *App) handleRedraw(event.Event) bool {
	a.requestRedraw()
	return false
}

func (a *App) handleTriggerFired(e event.Event) bool {
	if data, ok := e.Data.(event.TriggerFiredData); ok {
		logger.DebugTagf("trigger", "App: %v trigger fired in block %s", data.Kind, data.BlockKey)
	}
	return false
}
