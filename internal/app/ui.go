package app

import (
	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/highlight"
	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/bethropolis/tidemark/internal/tui"
)

// drawEditor clears screen and redraws all components.
func (a *App) drawEditor() {
	st := a.session.Snapshot()
	a.updateStatusBarContent()

	activeTheme := a.themeManager.Current()
	screen := a.tuiManager.GetScreen()
	width, height := a.tuiManager.Size()
	viewHeight := height - tui.StatusBarHeight

	logger.DebugTagf("draw", "drawEditor: Screen Size (%d x %d), ViewHeight: %d", width, height, viewHeight)

	a.view.ScrollToCaret(st, width, viewHeight)
	a.tuiManager.Clear()
	tui.DrawDocument(a.tuiManager, a.view, st, activeTheme, a.spans)
	a.statusBar.Draw(screen, width, height)
	tui.DrawCursor(a.tuiManager, a.view, st)
	a.tuiManager.Show()
}

func (a *App) spans(key string) []highlight.Span {
	if a.highlights == nil {
		return nil
	}
	return a.highlights.Spans(key)
}

// updateStatusBarContent pushes current session state to the status bar.
func (a *App) updateStatusBarContent() {
	st := a.session.Snapshot()
	a.statusBar.SetDocumentInfo(a.session.Slot(), a.session.Modified())

	b, idx, err := st.Doc.BlockByKey(st.Sel.BlockKey)
	if err == nil {
		a.statusBar.SetCaretInfo(b.Type.String(), idx, st.Doc.Len(), st.Sel.Focus)
	}

	mode := ""
	if st.Mode != document.ModeNone {
		mode = st.Mode.String()
	}
	a.statusBar.SetMode(mode)
}

// requestRedraw sends a redraw signal non-blockingly.
func (a *App) requestRedraw() {
	select {
	case a.redrawRequest <- struct{}{}:
	default: // Don't block if a redraw is already pending
	}
}
