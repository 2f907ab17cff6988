// internal/tui/drawing.go
package tui

import (
	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/highlight"
	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/bethropolis/tidemark/internal/theme"
	"github.com/bethropolis/tidemark/internal/transform"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

const (
	// DefaultTabWidth is used when a View has no tab width.
	DefaultTabWidth = 4
	// StatusBarHeight is the number of rows below the document area.
	StatusBarHeight = 1

	gutterWidth = 2 // block marker and a space
)

// View is the scroll position of the document area: the first visible
// block and the first visible column.
type View struct {
	Y, X      int
	ScrollOff int
	TabWidth  int
}

func (v *View) tabWidth() int {
	if v.TabWidth <= 0 {
		return DefaultTabWidth
	}
	return v.TabWidth
}

// SpanSource returns the syntax spans of a code block, sorted by Start.
type SpanSource func(key string) []highlight.Span

// cellWidth is the number of screen cells a grapheme cluster occupies when
// it starts at visual column visualX.
func cellWidth(runes []rune, width, visualX, tabWidth int) int {
	if runes[0] == '\t' {
		return tabWidth - visualX%tabWidth
	}
	return width
}

// VisualColumn returns the screen column of rune offset runeIndex in text.
func VisualColumn(text string, runeIndex, tabWidth int) int {
	if runeIndex <= 0 {
		return 0
	}
	visualWidth := 0
	currentRuneIndex := 0

	gr := uniseg.NewGraphemes(text)
	for currentRuneIndex < runeIndex && gr.Next() {
		runes := gr.Runes()
		visualWidth += cellWidth(runes, gr.Width(), visualWidth, tabWidth)
		currentRuneIndex += len(runes)
	}
	return visualWidth
}

// ScrollToCaret adjusts the view so the caret is visible in a document
// area of width by height cells.
func (v *View) ScrollToCaret(st transform.State, width, height int) {
	if height <= 0 {
		return
	}
	b, idx, err := st.Doc.BlockByKey(st.Sel.BlockKey)
	if err != nil {
		logger.Warnf("ScrollToCaret: %v", err)
		return
	}

	off := min(v.ScrollOff, (height-1)/2)
	if idx < v.Y+off {
		v.Y = max(0, idx-off)
	}
	if idx >= v.Y+height-off {
		v.Y = idx - height + off + 1
	}

	textWidth := width - gutterWidth
	col := VisualColumn(b.Text, st.Sel.Focus, v.tabWidth())
	if col < v.X {
		v.X = col
	}
	if textWidth > 0 && col >= v.X+textWidth {
		v.X = col - textWidth + 1
	}
}

// blockStyle is the style of unstyled text in a block.
func blockStyle(th *theme.Theme, t document.BlockType) tcell.Style {
	switch t {
	case document.Heading:
		return th.GetStyle("Heading")
	case document.Code:
		return th.GetStyle("CodeBlock")
	}
	return th.GetStyle("Default")
}

func gutterMarker(t document.BlockType) rune {
	switch t {
	case document.Heading:
		return '#'
	case document.Code:
		return '│'
	}
	return ' '
}

// inlineStyle layers the inline styles of set over base.
func inlineStyle(th *theme.Theme, base tcell.Style, set document.StyleSet) tcell.Style {
	style := base
	if set.Has(document.CodeBlock) {
		style = th.GetStyle("InlineCode")
	}
	if set.Has(document.RedLine) {
		fg, bg, _ := style.Decompose()
		style = th.GetStyle("RedLine").Foreground(fg).Background(bg)
	}
	if set.Has(document.Bold) {
		style = style.Bold(true)
	}
	if set.Has(document.Underline) && !set.Has(document.RedLine) {
		style = style.Underline(true)
	}
	return style
}

// DrawDocument draws the visible blocks of st above the status bar. Style
// precedence is selection, then syntax, then inline styles, then the
// block style.
func DrawDocument(tuiManager *TUI, v *View, st transform.State, activeTheme *theme.Theme, spans SpanSource) {
	if activeTheme == nil {
		logger.Warnf("DrawDocument called with nil theme, using the default theme.")
		activeTheme = &theme.TidemarkDark
	}

	defaultStyle := activeTheme.GetStyle("Default")
	gutterStyle := activeTheme.GetStyle("Gutter")
	selectionStyle := activeTheme.GetStyle("Selection")

	width, height := tuiManager.Size()
	viewHeight := height - StatusBarHeight
	if viewHeight <= 0 || width <= 0 {
		return
	}
	gutter := gutterWidth
	if gutter >= width {
		gutter = 0
	}
	textAreaWidth := width - gutter
	tabWidth := v.tabWidth()
	screen := tuiManager.screen

	for screenY := 0; screenY < viewHeight; screenY++ {
		blockIdx := screenY + v.Y

		for fillX := 0; fillX < width; fillX++ {
			screen.SetContent(fillX, screenY, ' ', nil, defaultStyle)
		}
		if blockIdx < 0 || blockIdx >= st.Doc.Len() {
			if gutter > 0 {
				screen.SetContent(0, screenY, '~', nil, gutterStyle)
			}
			continue
		}

		b := st.Doc.BlockAt(blockIdx)
		base := blockStyle(activeTheme, b.Type)
		if gutter > 0 {
			screen.SetContent(0, screenY, gutterMarker(b.Type), nil, gutterStyle)
		}
		if b.Type == document.Code {
			for fillX := gutter; fillX < width; fillX++ {
				screen.SetContent(fillX, screenY, ' ', nil, base)
			}
		}

		var blockSpans []highlight.Span
		if b.Type == document.Code && spans != nil {
			blockSpans = spans(b.Key)
		}
		selected := b.Key == st.Sel.BlockKey && !st.Sel.IsCollapsed()

		gr := uniseg.NewGraphemes(b.Text)
		currentVisualX := 0
		currentRuneIndex := 0
		for gr.Next() {
			clusterRunes := gr.Runes()
			clusterWidth := cellWidth(clusterRunes, gr.Width(), currentVisualX, tabWidth)
			clusterVisualStart := currentVisualX
			clusterVisualEnd := currentVisualX + clusterWidth
			screenX := clusterVisualStart - v.X + gutter

			if clusterVisualEnd > v.X && clusterVisualStart < v.X+textAreaWidth {
				currentStyle := inlineStyle(activeTheme, base, b.StylesAt(currentRuneIndex))
				for _, span := range blockSpans {
					if currentRuneIndex >= span.Start && currentRuneIndex < span.End {
						currentStyle = activeTheme.GetStyle(span.Style)
						break
					}
				}
				if selected && currentRuneIndex >= st.Sel.Start() && currentRuneIndex < st.Sel.End() {
					currentStyle = selectionStyle
				}

				if screenX >= gutter && screenX < width {
					mainRune := clusterRunes[0]
					combining := clusterRunes[1:]
					if mainRune == '\t' {
						mainRune, combining = ' ', nil
					}
					screen.SetContent(screenX, screenY, mainRune, combining, currentStyle)
					for cw := 1; cw < clusterWidth; cw++ {
						if fillX := screenX + cw; fillX < width {
							screen.SetContent(fillX, screenY, ' ', nil, currentStyle)
						}
					}
				}
			}

			currentVisualX += clusterWidth
			currentRuneIndex += len(clusterRunes)
			if currentVisualX >= v.X+textAreaWidth {
				break
			}
		}
	}
}

// DrawCursor places the terminal cursor at the caret, or hides it when the
// caret is scrolled out of view.
func DrawCursor(tuiManager *TUI, v *View, st transform.State) {
	screen := tuiManager.screen
	width, height := tuiManager.Size()
	b, idx, err := st.Doc.BlockByKey(st.Sel.BlockKey)
	if err != nil {
		screen.HideCursor()
		return
	}

	screenY := idx - v.Y
	screenX := VisualColumn(b.Text, st.Sel.Focus, v.tabWidth()) - v.X + gutterWidth
	if screenY < 0 || screenY >= height-StatusBarHeight || screenX < gutterWidth || screenX >= width {
		screen.HideCursor()
		return
	}
	screen.ShowCursor(screenX, screenY)
}
