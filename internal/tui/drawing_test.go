package tui

import (
	"testing"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/highlight"
	"github.com/bethropolis/tidemark/internal/selection"
	"github.com/bethropolis/tidemark/internal/theme"
	"github.com/bethropolis/tidemark/internal/transform"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTUI(t *testing.T, w, h int) (*TUI, tcell.SimulationScreen) {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	tm, err := NewWithScreen(s, &theme.TidemarkDark)
	require.NoError(t, err)
	s.SetSize(w, h)
	t.Cleanup(tm.Close)
	return tm, s
}

func testState(t *testing.T) transform.State {
	t.Helper()
	doc, err := document.New(
		document.Block{Key: "h", Type: document.Heading, Text: "Title"},
		document.NewStyledBlock("b", document.Body, "ab", []document.StyleSet{document.SetOf(document.Bold)}),
		document.Block{Key: "c", Type: document.Code, Text: "go x"},
	)
	require.NoError(t, err)
	return transform.State{Doc: doc, Sel: selection.Collapsed("b", 1)}
}

func isBold(style tcell.Style) bool {
	_, _, attrs := style.Decompose()
	return attrs&tcell.AttrBold != 0
}

func TestVisualColumn(t *testing.T) {
	assert.Equal(t, 0, VisualColumn("abc", 0, 4))
	assert.Equal(t, 2, VisualColumn("abc", 2, 4))
	assert.Equal(t, 4, VisualColumn("a\tb", 2, 4))
	assert.Equal(t, 2, VisualColumn("日本", 1, 4))
	assert.Equal(t, 3, VisualColumn("abc", 10, 4))
}

func TestDrawDocument(t *testing.T) {
	tm, s := newTestTUI(t, 20, 5)
	st := testState(t)
	spans := func(key string) []highlight.Span {
		if key == "c" {
			return []highlight.Span{{Start: 0, End: 2, Style: "keyword"}}
		}
		return nil
	}

	v := &View{}
	DrawDocument(tm, v, st, &theme.TidemarkDark, spans)
	DrawCursor(tm, v, st)

	r, _, _, _ := s.GetContent(0, 0)
	assert.Equal(t, '#', r)
	r, _, style, _ := s.GetContent(2, 0)
	assert.Equal(t, 'T', r)
	assert.Equal(t, theme.TidemarkDark.GetStyle("Heading"), style)

	r, _, style, _ = s.GetContent(2, 1)
	assert.Equal(t, 'a', r)
	assert.True(t, isBold(style))
	_, _, style, _ = s.GetContent(3, 1)
	assert.False(t, isBold(style))

	r, _, style, _ = s.GetContent(2, 2)
	assert.Equal(t, 'g', r)
	assert.Equal(t, theme.TidemarkDark.GetStyle("keyword"), style)
	_, _, style, _ = s.GetContent(5, 2)
	assert.Equal(t, theme.TidemarkDark.GetStyle("CodeBlock"), style)

	r, _, _, _ = s.GetContent(0, 3)
	assert.Equal(t, '~', r)

	x, y, visible := s.GetCursor()
	assert.True(t, visible)
	assert.Equal(t, 3, x)
	assert.Equal(t, 1, y)
}

func TestDrawSelection(t *testing.T) {
	tm, s := newTestTUI(t, 20, 5)
	st := testState(t)
	st.Sel = selection.Selection{BlockKey: "h", Anchor: 1, Focus: 3}

	DrawDocument(tm, &View{}, st, &theme.TidemarkDark, nil)
	sel := theme.TidemarkDark.GetStyle("Selection")
	_, _, style, _ := s.GetContent(2, 0)
	assert.NotEqual(t, sel, style)
	_, _, style, _ = s.GetContent(3, 0)
	assert.Equal(t, sel, style)
	_, _, style, _ = s.GetContent(4, 0)
	assert.Equal(t, sel, style)
	_, _, style, _ = s.GetContent(5, 0)
	assert.NotEqual(t, sel, style)
}

func TestScrollToCaret(t *testing.T) {
	doc := document.FromText("0\n1\n2\n3\n4\n5\n6\n7\n8\n9")
	last := doc.BlockAt(9)
	st := transform.State{Doc: doc, Sel: selection.Collapsed(last.Key, 1)}

	v := &View{ScrollOff: 1}
	v.ScrollToCaret(st, 10, 4)
	assert.Equal(t, 7, v.Y)

	st.Sel = selection.Collapsed(doc.BlockAt(0).Key, 0)
	v.ScrollToCaret(st, 10, 4)
	assert.Equal(t, 0, v.Y)

	wide := document.FromText("abcdefghijklmnop")
	st = transform.State{Doc: wide, Sel: selection.Collapsed(wide.BlockAt(0).Key, 12)}
	v = &View{}
	v.ScrollToCaret(st, 10, 4)
	assert.Equal(t, 5, v.X)
}

func TestCursorHiddenWhenScrolledAway(t *testing.T) {
	tm, s := newTestTUI(t, 20, 5)
	st := testState(t)
	DrawCursor(tm, &View{Y: 2}, st)
	_, _, visible := s.GetCursor()
	assert.False(t, visible)
}
