package history

import (
	"testing"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textEntry(t *testing.T, text string, kind ChangeKind) Entry {
	t.Helper()
	doc, err := document.New(document.Block{Key: "k", Text: text})
	require.NoError(t, err)
	return Entry{Doc: doc, Sel: selection.Collapsed("k", len([]rune(text))), Kind: kind}
}

func typeText(t *testing.T, m *Manager, prefix, text string) {
	t.Helper()
	for i, r := range text {
		m.Record(textEntry(t, prefix+text[:i+len(string(r))], KindInsertChar), r)
	}
}

func currentText(t *testing.T, m *Manager) string {
	t.Helper()
	e, ok := m.Current()
	require.True(t, ok)
	return e.Doc.PlainText()
}

func TestUndoRedoAtBoundariesIsNoop(t *testing.T) {
	m := NewManager(0, 0)
	m.Reset(textEntry(t, "", KindStructural))

	_, ok := m.Undo()
	assert.False(t, ok)
	_, ok = m.Redo()
	assert.False(t, ok)
	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo())
}

func TestStructuralEntriesAreDiscrete(t *testing.T) {
	m := NewManager(0, 0)
	base := textEntry(t, "", KindStructural)
	m.Reset(base)

	first := textEntry(t, "a", KindStructural)
	second := textEntry(t, "ab", KindStructural)
	m.Record(first, 0)
	m.Record(second, 0)
	require.Equal(t, 3, m.Len())

	e, ok := m.Undo()
	require.True(t, ok)
	assert.Same(t, first.Doc, e.Doc)
	assert.Equal(t, first.Sel, e.Sel)

	e, ok = m.Undo()
	require.True(t, ok)
	assert.Same(t, base.Doc, e.Doc)

	e, ok = m.Redo()
	require.True(t, ok)
	assert.Same(t, first.Doc, e.Doc)
}

func TestTypingCoalescesUntilBreak(t *testing.T) {
	m := NewManager(0, 0)
	m.Reset(textEntry(t, "", KindStructural))

	typeText(t, m, "", "hello world")
	// "hello " is one step (closed by the space), "world" another.
	assert.Equal(t, 3, m.Len())

	_, ok := m.Undo()
	require.True(t, ok)
	assert.Equal(t, "hello ", currentText(t, m))

	_, ok = m.Undo()
	require.True(t, ok)
	assert.Equal(t, "", currentText(t, m))
}

func TestTypingRunIsBounded(t *testing.T) {
	m := NewManager(0, 3)
	m.Reset(textEntry(t, "", KindStructural))

	typeText(t, m, "", "abcdefg")
	// Runs of at most three: abc, def, g.
	assert.Equal(t, 4, m.Len())
}

func TestStructuralBreaksTypingRun(t *testing.T) {
	m := NewManager(0, 0)
	m.Reset(textEntry(t, "", KindStructural))

	typeText(t, m, "", "ab")
	m.Record(textEntry(t, "ab", KindStructural), 0)
	typeText(t, m, "ab", "cd")
	assert.Equal(t, 4, m.Len())
}

func TestRecordAfterUndoDropsRedoAndKeepsUndoPoint(t *testing.T) {
	m := NewManager(0, 0)
	m.Reset(textEntry(t, "", KindStructural))

	typeText(t, m, "", "ab")
	m.Record(textEntry(t, "ab!", KindStructural), 0)
	_, ok := m.Undo()
	require.True(t, ok)
	assert.True(t, m.CanRedo())

	typeText(t, m, "ab", "c")
	assert.False(t, m.CanRedo())
	assert.Equal(t, "abc", currentText(t, m))

	// The restored "ab" state is still reachable: the new typing did not
	// fold into it.
	_, ok = m.Undo()
	require.True(t, ok)
	assert.Equal(t, "ab", currentText(t, m))
}

func TestDeleteRunsCoalesceSeparatelyFromInserts(t *testing.T) {
	m := NewManager(0, 0)
	m.Reset(textEntry(t, "", KindStructural))

	typeText(t, m, "", "abc")
	m.Record(textEntry(t, "ab", KindDeleteChar), 0)
	m.Record(textEntry(t, "a", KindDeleteChar), 0)
	assert.Equal(t, 3, m.Len())
}

func TestEviction(t *testing.T) {
	m := NewManager(3, 0)
	m.Reset(textEntry(t, "", KindStructural))
	for _, s := range []string{"a", "b", "c", "d"} {
		m.Record(textEntry(t, s, KindStructural), 0)
	}
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, "d", currentText(t, m))

	steps := 0
	for m.CanUndo() {
		_, ok := m.Undo()
		require.True(t, ok)
		steps++
	}
	assert.Equal(t, 2, steps)
	assert.Equal(t, "b", currentText(t, m))
}

func TestUpdateCurrentStartsNewRun(t *testing.T) {
	m := NewManager(0, 0)
	m.Reset(textEntry(t, "", KindStructural))

	typeText(t, m, "", "ab")
	m.UpdateCurrent(selection.Collapsed("k", 1), document.ModeBold)
	typeText(t, m, "ab", "cd")
	assert.Equal(t, 3, m.Len())

	e, ok := m.Undo()
	require.True(t, ok)
	assert.Equal(t, "ab", currentText(t, m))
	assert.Equal(t, selection.Collapsed("k", 1), e.Sel)
	assert.Equal(t, document.ModeBold, e.Mode)
}
