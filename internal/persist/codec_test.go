package persist

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// styled builds a block from (text, styles) pieces.
func styled(t document.BlockType, pieces ...any) document.Block {
	var text strings.Builder
	var sets []document.StyleSet
	for i := 0; i < len(pieces); i += 2 {
		s := pieces[i].(string)
		set := pieces[i+1].(document.StyleSet)
		text.WriteString(s)
		for range []rune(s) {
			sets = append(sets, set)
		}
	}
	return document.NewStyledBlock(document.NewKey(), t, text.String(), sets)
}

func richDocument(t *testing.T) *document.Document {
	t.Helper()
	none := document.StyleSet(0)
	bold := document.SetOf(document.Bold)
	doc, err := document.New(
		styled(document.Heading, "Ti", bold, "tle", none),
		styled(document.Body,
			"plain ", none,
			"bold", bold,
			" ", none,
			"under", document.SetOf(document.Underline),
			" ", none,
			"red", document.SetOf(document.RedLine),
			" ", none,
			"code", document.SetOf(document.CodeBlock),
			" ", none,
			"both", document.SetOf(document.Bold, document.Underline),
			" end", none),
		styled(document.Body),
		styled(document.Code, "x := `1` // *", none),
		styled(document.Code, "s", bold, "tyled", none),
		styled(document.Body, " 1. <a> & \\ *_[x]# ", none),
		styled(document.Body, "1) item", none),
		styled(document.Heading),
		styled(document.Body, "- dash", none),
		styled(document.Body, "a\rb &amp;", none),
		styled(document.Body, " spaced bold ", bold),
	)
	require.NoError(t, err)
	return doc
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []Codec{HTMLCodec{}, MarkdownCodec{}} {
		t.Run(c.Name(), func(t *testing.T) {
			docs := map[string]*document.Document{
				"empty": document.Empty(),
				"plain": document.FromText("one\ntwo"),
				"rich":  richDocument(t),
			}
			for name, doc := range docs {
				encoded, err := c.Encode(doc)
				require.NoError(t, err, name)
				decoded, err := c.Decode(encoded)
				require.NoError(t, err, name)
				assert.True(t, document.Equivalent(doc, decoded),
					"%s did not survive:\n%s\ngot %#v", name, encoded, decoded.Blocks())
			}
		})
	}
}

// randomDocument builds a document of random block types whose runes carry
// random style sets, drawing text from markdown- and HTML-significant runes.
func randomDocument(t *testing.T, rng *rand.Rand) *document.Document {
	t.Helper()
	alphabet := []rune("ab é*_`#<>&\\[]-1.)~!")
	types := []document.BlockType{document.Body, document.Heading, document.Code}
	blocks := make([]document.Block, 1+rng.Intn(5))
	for i := range blocks {
		n := rng.Intn(12)
		runes := make([]rune, n)
		sets := make([]document.StyleSet, n)
		for j := range runes {
			runes[j] = alphabet[rng.Intn(len(alphabet))]
			if rng.Intn(3) == 0 {
				sets[j] = document.StyleSet(rng.Intn(16))
			}
		}
		blocks[i] = document.NewStyledBlock(document.NewKey(), types[rng.Intn(len(types))], string(runes), sets)
	}
	doc, err := document.New(blocks...)
	require.NoError(t, err)
	return doc
}

func TestRoundTripRandomDocuments(t *testing.T) {
	for _, c := range []Codec{HTMLCodec{}, MarkdownCodec{}} {
		t.Run(c.Name(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(11))
			for i := 0; i < 500; i++ {
				doc := randomDocument(t, rng)
				encoded, err := c.Encode(doc)
				require.NoError(t, err, "doc %d", i)
				decoded, err := c.Decode(encoded)
				require.NoError(t, err, "doc %d", i)
				require.True(t, document.Equivalent(doc, decoded),
					"doc %d did not survive:\n%s\nwant %#v\ngot %#v", i, encoded, doc.Blocks(), decoded.Blocks())
			}
		})
	}
}

func TestCSSStyles(t *testing.T) {
	tests := []struct {
		attr string
		want document.StyleSet
	}{
		{"border-bottom: 2px solid red", document.SetOf(document.RedLine)},
		{"border-bottom: 2px solid red;", document.SetOf(document.RedLine)},
		{"text-decoration: underline", document.SetOf(document.Underline)},
		{"padding: 1px; font-family: monospace", document.SetOf(document.CodeBlock)},
		{"font-weight: 700", document.SetOf(document.Bold)},
		{"font-weight: bold ", document.SetOf(document.Bold)},
		{"color: blue", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.attr, func(t *testing.T) {
			assert.Equal(t, tt.want, cssStyles(tt.attr))
		})
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	for _, c := range []Codec{HTMLCodec{}, MarkdownCodec{}} {
		for _, in := range []string{"", "  \n\t"} {
			doc, err := c.Decode(in)
			require.NoError(t, err)
			assert.True(t, document.Equivalent(document.Empty(), doc), "%s %q", c.Name(), in)
		}
	}
}

func TestHTMLDecodesLegacyMarkup(t *testing.T) {
	in := `<h1>Title</h1>
<p><strong>b</strong><span style="border-bottom: 2px solid red">r</span><span style="text-decoration: underline">u</span><span style="font-family: monospace; padding: 8px">c</span></p>
<pre><code>x</code></pre>`
	doc, err := HTMLCodec{}.Decode(in)
	require.NoError(t, err)
	require.Equal(t, 3, doc.Len())

	assert.Equal(t, document.Heading, doc.BlockAt(0).Type)
	assert.Equal(t, "Title", doc.BlockAt(0).Text)

	body := doc.BlockAt(1)
	assert.Equal(t, "bruc", body.Text)
	assert.Equal(t, document.SetOf(document.Bold), body.StylesAt(0))
	assert.Equal(t, document.SetOf(document.RedLine), body.StylesAt(1))
	assert.Equal(t, document.SetOf(document.Underline), body.StylesAt(2))
	assert.Equal(t, document.SetOf(document.CodeBlock), body.StylesAt(3))

	assert.Equal(t, document.Code, doc.BlockAt(2).Type)
	assert.Equal(t, "x", doc.BlockAt(2).Text)
}

func TestHTMLDecodesPlainText(t *testing.T) {
	doc, err := HTMLCodec{}.Decode("first line\nsecond line\n")
	require.NoError(t, err)
	require.Equal(t, 2, doc.Len())
	assert.Equal(t, "first line", doc.BlockAt(0).Text)
	assert.Equal(t, "second line", doc.BlockAt(1).Text)
}

func TestHTMLDecodeSkipsNestedBlocks(t *testing.T) {
	doc, err := HTMLCodec{}.Decode("<ul><li><p>item</p></li></ul>")
	require.NoError(t, err)
	require.Equal(t, 1, doc.Len())
	assert.Equal(t, "item", doc.BlockAt(0).Text)
}

func TestDecodeStripsByteOrderMark(t *testing.T) {
	doc, err := HTMLCodec{}.Decode("\ufeff<p>x</p>")
	require.NoError(t, err)
	assert.Equal(t, "x", doc.BlockAt(0).Text)
}

func TestMarkdownDecodesHandWrittenText(t *testing.T) {
	doc, err := MarkdownCodec{}.Decode("# T\n\nsome *em* and `c`\n\n- item\n\n```\na\nb\n```\n")
	require.NoError(t, err)
	require.Equal(t, 5, doc.Len())

	assert.Equal(t, document.Heading, doc.BlockAt(0).Type)
	body := doc.BlockAt(1)
	assert.Equal(t, "some em and c", body.Text)
	assert.True(t, body.StylesAt(5).Has(document.Bold))
	assert.True(t, body.StylesAt(12).Has(document.CodeBlock))
	assert.True(t, body.StylesAt(0).IsEmpty())

	assert.Equal(t, "item", doc.BlockAt(2).Text)
	assert.Equal(t, document.Code, doc.BlockAt(3).Type)
	assert.Equal(t, "a", doc.BlockAt(3).Text)
	assert.Equal(t, "b", doc.BlockAt(4).Text)
}

func TestMarkdownEncodeUsesMarkdownSyntax(t *testing.T) {
	doc, err := document.New(
		styled(document.Heading, "Notes", document.StyleSet(0)),
		styled(document.Body, "say ", document.StyleSet(0), "hi", document.SetOf(document.Bold)),
		styled(document.Code, "go run .", document.StyleSet(0)),
	)
	require.NoError(t, err)

	out, err := MarkdownCodec{}.Encode(doc)
	require.NoError(t, err)
	assert.Equal(t, "# Notes\n\nsay **hi**\n\n```\ngo run .\n```\n", out)
}

func TestCodecFor(t *testing.T) {
	c, err := CodecFor("")
	require.NoError(t, err)
	assert.Equal(t, "html", c.Name())

	c, err = CodecFor("md")
	require.NoError(t, err)
	assert.Equal(t, "markdown", c.Name())

	_, err = CodecFor("docx")
	assert.Error(t, err)
}
