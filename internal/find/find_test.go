package find

import (
	"testing"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc(t *testing.T) *document.Document {
	t.Helper()
	doc, err := document.New(
		document.Block{Key: "a", Type: document.Heading, Text: "héllo tide"},
		document.Block{Key: "b", Type: document.Body, Text: "no match"},
		document.Block{Key: "c", Type: document.Body, Text: "tide tide"},
	)
	require.NoError(t, err)
	return doc
}

func TestCompile(t *testing.T) {
	_, err := Compile("")
	assert.Error(t, err)
	_, err = Compile("(")
	assert.Error(t, err)
	re, err := Compile("ti.e")
	require.NoError(t, err)
	assert.True(t, re.MatchString("tide"))
}

func TestAllUsesRuneOffsets(t *testing.T) {
	re, _ := Compile("tide")
	matches := All(testDoc(t), re)
	require.Len(t, matches, 3)
	assert.Equal(t, Match{BlockKey: "a", BlockIndex: 0, Start: 6, End: 10}, matches[0])
	assert.Equal(t, Match{BlockKey: "c", BlockIndex: 2, Start: 5, End: 9}, matches[2])

	empty, _ := Compile("x*")
	assert.Empty(t, All(testDoc(t), empty))
}

func TestNextForwardWraps(t *testing.T) {
	doc := testDoc(t)
	re, _ := Compile("tide")

	m, ok := Next(doc, selection.Collapsed("a", 0), re, true)
	require.True(t, ok)
	assert.Equal(t, 6, m.Start)

	m, _ = Next(doc, m.Selection(), re, true)
	assert.Equal(t, "c", m.BlockKey)
	assert.Equal(t, 0, m.Start)

	m, _ = Next(doc, m.Selection(), re, true)
	assert.Equal(t, 5, m.Start)

	m, _ = Next(doc, m.Selection(), re, true)
	assert.Equal(t, "a", m.BlockKey)
}

func TestNextBackward(t *testing.T) {
	doc := testDoc(t)
	re, _ := Compile("tide")

	m, ok := Next(doc, selection.Collapsed("b", 3), re, false)
	require.True(t, ok)
	assert.Equal(t, "a", m.BlockKey)

	m, _ = Next(doc, m.Selection(), re, false)
	assert.Equal(t, "c", m.BlockKey)
	assert.Equal(t, 5, m.Start)
}

func TestNextWithoutMatches(t *testing.T) {
	re, _ := Compile("zzz")
	_, ok := Next(testDoc(t), selection.Collapsed("a", 0), re, true)
	assert.False(t, ok)
}
