package persist

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"golang.org/x/net/html"
)

// MarkdownCodec writes documents as CommonMark. Bold uses ** where the
// delimiters can flank the text, the other styles use inline HTML tags.
// Blocks markdown cannot express exactly (empty paragraphs, styled code
// blocks) are written as HTML blocks.
type MarkdownCodec struct{}

var mdInlineTags = map[document.Style][2]string{
	document.RedLine:   {"<del>", "</del>"},
	document.Underline: {"<u>", "</u>"},
	document.CodeBlock: {"<code>", "</code>"},
}

// Outermost first. Bold is innermost so ** sits directly against text.
var mdTagOrder = []document.Style{document.CodeBlock, document.Underline, document.RedLine}

var orderedListStart = regexp.MustCompile(`^[0-9]{1,9}[.)]`)

func (MarkdownCodec) Name() string { return "markdown" }

func (MarkdownCodec) Encode(doc *document.Document) (string, error) {
	var parts []string
	for _, b := range doc.Blocks() {
		switch {
		case b.Type == document.Code && len(b.Ranges) == 0 && !strings.ContainsAny(b.Text, "\r\v\f"):
			fence := strings.Repeat("`", max(3, longestRun(b.Text, '`')+1))
			parts = append(parts, fence+"\n"+b.Text+"\n"+fence)
		case b.Type == document.Code || (b.Type == document.Body && b.Text == ""):
			single, err := document.New(b)
			if err != nil {
				return "", err
			}
			h, err := HTMLCodec{}.Encode(single)
			if err != nil {
				return "", err
			}
			parts = append(parts, strings.TrimSuffix(h, "\n"))
		case b.Type == document.Heading:
			if b.Text == "" {
				parts = append(parts, "#")
			} else {
				parts = append(parts, "# "+mdInline(b))
			}
		case b.Type == document.Body:
			parts = append(parts, mdInline(b))
		default:
			return "", fmt.Errorf("encode block %s: unsupported type %v", b.Key, b.Type)
		}
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}

func longestRun(s string, r rune) int {
	best, cur := 0, 0
	for _, c := range s {
		if c == r {
			cur++
			best = max(best, cur)
		} else {
			cur = 0
		}
	}
	return best
}

func mdInline(b document.Block) string {
	runes := []rune(b.Text)
	lead := 0
	for lead < len(runes) && isMarkdownSpace(runes[lead]) {
		lead++
	}
	trail := len(runes)
	for trail > lead && isMarkdownSpace(runes[trail-1]) {
		trail--
	}
	marker := -1
	if loc := orderedListStart.FindStringIndex(b.Text); loc != nil {
		marker = loc[1] - 1
	}

	var sb strings.Builder
	offset := 0
	for _, seg := range b.Segments() {
		for _, st := range mdTagOrder {
			if seg.Styles.Has(st) {
				sb.WriteString(mdInlineTags[st][0])
			}
		}
		segRunes := []rune(seg.Text)
		var body strings.Builder
		for i, r := range segRunes {
			at := offset + i
			edge := at < lead || at >= trail
			body.WriteString(mdEscapeRune(r, at, edge, at == marker))
		}
		if seg.Styles.Has(document.Bold) {
			first, last := segRunes[0], segRunes[len(segRunes)-1]
			if isWordRune(first) && isWordRune(last) && offset >= lead && offset+len(segRunes) <= trail {
				sb.WriteString("**" + body.String() + "**")
			} else {
				sb.WriteString("<strong>" + body.String() + "</strong>")
			}
		} else {
			sb.WriteString(body.String())
		}
		for i := len(mdTagOrder) - 1; i >= 0; i-- {
			if seg.Styles.Has(mdTagOrder[i]) {
				sb.WriteString(mdInlineTags[mdTagOrder[i]][1])
			}
		}
		offset += len(segRunes)
	}
	return sb.String()
}

func isMarkdownSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\v' || r == '\f' || r == '\r'
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// mdEscapeRune writes one rune of inline text so that it reads back as
// literal text.
func mdEscapeRune(r rune, at int, edge, listMarker bool) string {
	switch {
	case edge || r == '\r' || r == '\v' || r == '\f':
		return fmt.Sprintf("&#%d;", r)
	case r == '&':
		return "&amp;"
	case strings.ContainsRune("\\`*_[]<#", r):
		return `\` + string(r)
	case at == 0 && strings.ContainsRune("-+>~=", r):
		return `\` + string(r)
	case listMarker:
		return `\` + string(r)
	}
	return string(r)
}

func (MarkdownCodec) Decode(content string) (*document.Document, error) {
	content, err := normalizeInput(content)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return document.Empty(), nil
	}
	src := []byte(content)
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var blocks []document.Block
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		bs, err := mdBlocks(n, src)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, bs...)
	}
	return blocksOrEmpty(blocks)
}

func mdBlocks(n ast.Node, src []byte) ([]document.Block, error) {
	switch node := n.(type) {
	case *ast.Heading:
		return []document.Block{mdInlineBlock(node, src, document.Heading)}, nil
	case *ast.Paragraph, *ast.TextBlock:
		return []document.Block{mdInlineBlock(node, src, document.Body)}, nil
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := node.Lines()
		if lines.Len() == 0 {
			return []document.Block{{Key: document.NewKey(), Type: document.Code}}, nil
		}
		out := make([]document.Block, 0, lines.Len())
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			line := strings.TrimRight(string(seg.Value(src)), "\n")
			out = append(out, document.Block{Key: document.NewKey(), Type: document.Code, Text: line})
		}
		return out, nil
	case *ast.HTMLBlock:
		raw := string(node.Lines().Value(src))
		if node.HasClosure() {
			raw += string(node.ClosureLine.Value(src))
		}
		return decodeHTMLBlocks(raw)
	case *ast.ThematicBreak:
		return nil, nil
	}
	var out []document.Block
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		bs, err := mdBlocks(c, src)
		if err != nil {
			return nil, err
		}
		out = append(out, bs...)
	}
	return out, nil
}

type openTag struct {
	name  string
	style document.StyleSet
}

// inlineReader collects the styled text of one markdown block. Inline HTML
// arrives as separate open and close tag nodes, so open tags are kept on a
// stack.
type inlineReader struct {
	src  []byte
	b    builder
	open []openTag
}

func mdInlineBlock(n ast.Node, src []byte, t document.BlockType) document.Block {
	r := &inlineReader{src: src}
	r.walk(n, 0)
	return r.b.block(t)
}

func (r *inlineReader) tagStyles() document.StyleSet {
	var set document.StyleSet
	for _, t := range r.open {
		set = set.Union(t.style)
	}
	return set
}

func (r *inlineReader) walk(n ast.Node, set document.StyleSet) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			v := node.Segment.Value(r.src)
			if !node.IsRaw() {
				v = util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(v)))
			}
			r.b.add(string(v), set.Union(r.tagStyles()))
			if node.SoftLineBreak() || node.HardLineBreak() {
				r.b.add(" ", set.Union(r.tagStyles()))
			}
		case *ast.String:
			r.b.add(string(node.Value), set.Union(r.tagStyles()))
		case *ast.CodeSpan:
			r.walk(node, set.With(document.CodeBlock))
		case *ast.Emphasis:
			r.walk(node, set.With(document.Bold))
		case *ast.RawHTML:
			r.rawTag(node)
		default:
			r.walk(node, set)
		}
	}
}

func (r *inlineReader) rawTag(n *ast.RawHTML) {
	var raw strings.Builder
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		raw.Write(seg.Value(r.src))
	}
	z := html.NewTokenizer(strings.NewReader(raw.String()))
	switch z.Next() {
	case html.StartTagToken:
		tok := z.Token()
		style := elementStyles(&html.Node{Type: html.ElementNode, Data: tok.Data, Attr: tok.Attr})
		r.open = append(r.open, openTag{name: tok.Data, style: style})
	case html.EndTagToken:
		tok := z.Token()
		for i := len(r.open) - 1; i >= 0; i-- {
			if r.open[i].name == tok.Data {
				r.open = append(r.open[:i], r.open[i+1:]...)
				break
			}
		}
	case html.SelfClosingTagToken:
		if z.Token().Data == "br" {
			r.b.add(" ", r.tagStyles())
		}
	}
}
