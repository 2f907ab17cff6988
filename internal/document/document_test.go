package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, blocks ...Block) *Document {
	t.Helper()
	doc, err := New(blocks...)
	require.NoError(t, err)
	return doc
}

func TestEmptyHasOneBodyBlock(t *testing.T) {
	doc := Empty()
	require.Equal(t, 1, doc.Len())
	b := doc.BlockAt(0)
	assert.Equal(t, Body, b.Type)
	assert.Equal(t, "", b.Text)
	assert.NotEmpty(t, b.Key)
}

func TestNewRejectsBadBlocks(t *testing.T) {
	tests := []struct {
		name   string
		blocks []Block
	}{
		{"duplicate key", []Block{{Key: "a"}, {Key: "a"}}},
		{"empty key", []Block{{Key: ""}}},
		{"range past end", []Block{{Key: "a", Text: "ab", Ranges: []StyleRange{{0, 3, SetOf(Bold)}}}}},
		{"empty range", []Block{{Key: "a", Text: "ab", Ranges: []StyleRange{{1, 1, SetOf(Bold)}}}}},
		{"overlapping ranges", []Block{{Key: "a", Text: "abc", Ranges: []StyleRange{{0, 2, SetOf(Bold)}, {1, 3, SetOf(Underline)}}}}},
		{"newline", []Block{{Key: "a", Text: "a\nb"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.blocks...)
			assert.ErrorIs(t, err, ErrInvariant)
		})
	}
}

func TestInsertTextCarriesStylesAndKeepsOtherBlocks(t *testing.T) {
	doc := mustNew(t, Block{Key: "a", Text: "hello"}, Block{Key: "b", Text: "world"})

	next, err := doc.InsertText("a", 5, " there", SetOf(Bold))
	require.NoError(t, err)

	a := next.BlockAt(0)
	assert.Equal(t, "hello there", a.Text)
	assert.Equal(t, []StyleRange{{Start: 5, End: 11, Styles: SetOf(Bold)}}, a.Ranges)
	assert.Equal(t, doc.BlockAt(1), next.BlockAt(1))

	// The original generation is untouched.
	assert.Equal(t, "hello", doc.BlockAt(0).Text)
}

func TestInsertTextMultibyte(t *testing.T) {
	doc := mustNew(t, Block{Key: "a", Text: "héllo"})
	next, err := doc.InsertText("a", 2, "ü", SetOf(Underline))
	require.NoError(t, err)
	b := next.BlockAt(0)
	assert.Equal(t, "héüllo", b.Text)
	assert.Equal(t, SetOf(Underline), b.StylesAt(2))
	assert.Equal(t, StyleSet(0), b.StylesAt(3))
}

func TestOffsetsAreNotClamped(t *testing.T) {
	doc := mustNew(t, Block{Key: "a", Text: "abc"})

	_, err := doc.InsertText("a", 4, "x", 0)
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)

	_, err = doc.DeleteRange("a", -1, 1)
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)

	_, err = doc.InsertText("zz", 0, "x", 0)
	assert.ErrorIs(t, err, ErrUnknownBlock)
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestDeleteRangeShiftsStyles(t *testing.T) {
	doc := mustNew(t, Block{Key: "a", Text: "**bold", Ranges: []StyleRange{{2, 6, SetOf(Bold)}}})
	next, err := doc.DeleteRange("a", 0, 2)
	require.NoError(t, err)
	b := next.BlockAt(0)
	assert.Equal(t, "bold", b.Text)
	assert.Equal(t, []StyleRange{{0, 4, SetOf(Bold)}}, b.Ranges)
}

func TestSplitBlockMovesTailWithStyles(t *testing.T) {
	doc := mustNew(t, Block{Key: "a", Type: Heading, Text: "abcd", Ranges: []StyleRange{{1, 3, SetOf(RedLine)}}})
	next, err := doc.SplitBlock("a", 2, "b")
	require.NoError(t, err)
	require.Equal(t, 2, next.Len())

	head, tail := next.BlockAt(0), next.BlockAt(1)
	assert.Equal(t, Block{Key: "a", Type: Heading, Text: "ab", Ranges: []StyleRange{{1, 2, SetOf(RedLine)}}}, head)
	assert.Equal(t, Block{Key: "b", Type: Heading, Text: "cd", Ranges: []StyleRange{{0, 1, SetOf(RedLine)}}}, tail)

	_, err = next.SplitBlock("a", 0, "b")
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMergeWithPrevious(t *testing.T) {
	doc := mustNew(t,
		Block{Key: "a", Text: "ab", Ranges: []StyleRange{{0, 2, SetOf(Bold)}}},
		Block{Key: "b", Type: Heading, Text: "cd"},
	)
	next, key, at, err := doc.MergeWithPrevious("b")
	require.NoError(t, err)
	assert.Equal(t, "a", key)
	assert.Equal(t, 2, at)
	require.Equal(t, 1, next.Len())
	assert.Equal(t, Block{Key: "a", Type: Body, Text: "abcd", Ranges: []StyleRange{{0, 2, SetOf(Bold)}}}, next.BlockAt(0))

	_, _, _, err = doc.MergeWithPrevious("a")
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestToggleStyle(t *testing.T) {
	doc := mustNew(t, Block{Key: "a", Text: "abcd", Ranges: []StyleRange{{0, 2, SetOf(Bold)}}})

	on, err := doc.ToggleStyle("a", 1, 4, Bold)
	require.NoError(t, err)
	assert.Equal(t, []StyleRange{{0, 4, SetOf(Bold)}}, on.BlockAt(0).Ranges)

	off, err := on.ToggleStyle("a", 0, 2, Bold)
	require.NoError(t, err)
	assert.Equal(t, []StyleRange{{2, 4, SetOf(Bold)}}, off.BlockAt(0).Ranges)
}

func TestSegments(t *testing.T) {
	b := Block{Key: "a", Text: "abcdef", Ranges: []StyleRange{{1, 3, SetOf(Bold)}, {3, 4, SetOf(Bold, Underline)}}}
	assert.Equal(t, []Segment{
		{Text: "a"},
		{Text: "bc", Styles: SetOf(Bold)},
		{Text: "d", Styles: SetOf(Bold, Underline)},
		{Text: "ef"},
	}, b.Segments())
}

func TestEquivalentIgnoresKeys(t *testing.T) {
	a := mustNew(t, Block{Key: "x", Type: Heading, Text: "t"}, Block{Key: "y", Text: "b", Ranges: []StyleRange{{0, 1, SetOf(Bold)}}})
	b := mustNew(t, Block{Key: "1", Type: Heading, Text: "t"}, Block{Key: "2", Text: "b", Ranges: []StyleRange{{0, 1, SetOf(Bold)}}})
	c := mustNew(t, Block{Key: "1", Type: Heading, Text: "t"}, Block{Key: "2", Text: "b"})

	assert.True(t, Equivalent(a, b))
	assert.False(t, Equivalent(a, c))
}

func TestModeOfPrecedence(t *testing.T) {
	assert.Equal(t, ModeNone, ModeOf(0))
	assert.Equal(t, ModeBold, ModeOf(SetOf(Underline, Bold)))
	assert.Equal(t, ModeUnderline, ModeOf(SetOf(Underline, CodeBlock)))
	assert.Equal(t, SetOf(RedLine), ModeRedLine.Styles())
	assert.Equal(t, StyleSet(0), ModeNone.Styles())
}

func TestFromText(t *testing.T) {
	doc := FromText("one\ntwo")
	require.Equal(t, 2, doc.Len())
	assert.Equal(t, "one\ntwo", doc.PlainText())
	assert.NotEqual(t, doc.BlockAt(0).Key, doc.BlockAt(1).Key)
}
