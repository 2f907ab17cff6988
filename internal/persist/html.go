package persist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/parser"
	"github.com/bethropolis/tidemark/internal/document"
	"golang.org/x/net/html"
)

// HTMLCodec stores documents as a flat list of <h1>, <p> and <pre>
// elements. It also reads the inline styles written by older exporters.
type HTMLCodec struct{}

var blockTags = map[document.BlockType]string{
	document.Body:    "p",
	document.Heading: "h1",
	document.Code:    "pre",
}

// inlineTags are nested in this order, outermost first.
var inlineTags = []struct {
	style      document.Style
	open, shut string
}{
	{document.Bold, "<strong>", "</strong>"},
	{document.RedLine, `<span class="redline">`, "</span>"},
	{document.Underline, "<u>", "</u>"},
	{document.CodeBlock, "<code>", "</code>"},
}

var blockSelector = cascadia.MustCompile("h1, h2, h3, h4, h5, h6, p, pre, li, blockquote")

func (HTMLCodec) Name() string { return "html" }

func (HTMLCodec) Encode(doc *document.Document) (string, error) {
	var sb strings.Builder
	for _, b := range doc.Blocks() {
		tag, ok := blockTags[b.Type]
		if !ok {
			return "", fmt.Errorf("encode block %s: unsupported type %v", b.Key, b.Type)
		}
		sb.WriteString("<" + tag + ">")
		for _, seg := range b.Segments() {
			for _, t := range inlineTags {
				if seg.Styles.Has(t.style) {
					sb.WriteString(t.open)
				}
			}
			sb.WriteString(html.EscapeString(seg.Text))
			for i := len(inlineTags) - 1; i >= 0; i-- {
				if seg.Styles.Has(inlineTags[i].style) {
					sb.WriteString(inlineTags[i].shut)
				}
			}
		}
		sb.WriteString("</" + tag + ">\n")
	}
	return sb.String(), nil
}

func (HTMLCodec) Decode(content string) (*document.Document, error) {
	blocks, err := decodeHTMLBlocks(content)
	if err != nil {
		return nil, err
	}
	return blocksOrEmpty(blocks)
}

func decodeHTMLBlocks(content string) ([]document.Block, error) {
	content, err := normalizeInput(content)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", ErrDecode, err)
	}

	matched := blockSelector.MatchAll(root)
	if len(matched) == 0 {
		// Plain text saved before any markup existed.
		return plainBlocks(textContent(root)), nil
	}

	inside := make(map[*html.Node]bool, len(matched))
	var blocks []document.Block
	for _, n := range matched {
		inside[n] = true
		if hasAncestorIn(n, inside) {
			continue
		}
		var b builder
		collectInline(n, 0, &b)
		blocks = append(blocks, b.block(htmlBlockType(n.Data)))
	}
	return blocks, nil
}

func htmlBlockType(tag string) document.BlockType {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return document.Heading
	case "pre":
		return document.Code
	}
	return document.Body
}

func hasAncestorIn(n *html.Node, set map[*html.Node]bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if set[p] {
			return true
		}
	}
	return false
}

// collectInline appends the text under n, styled by the elements it sits in.
func collectInline(n *html.Node, set document.StyleSet, b *builder) {
	switch n.Type {
	case html.TextNode:
		b.add(strings.ReplaceAll(n.Data, "\n", " "), set)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "br":
			b.add(" ", set)
			return
		}
		set = set.Union(elementStyles(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectInline(c, set, b)
	}
}

// elementStyles maps an inline element and its class and style attributes
// to style tags.
func elementStyles(n *html.Node) document.StyleSet {
	var set document.StyleSet
	switch n.Data {
	case "strong", "b":
		set = set.With(document.Bold)
	case "u", "ins":
		set = set.With(document.Underline)
	case "del", "s", "strike":
		set = set.With(document.RedLine)
	case "code", "tt", "kbd", "samp":
		set = set.With(document.CodeBlock)
	}
	for _, a := range n.Attr {
		switch a.Key {
		case "class":
			for _, c := range strings.Fields(a.Val) {
				switch strings.ToLower(c) {
				case "redline", "red-line":
					set = set.With(document.RedLine)
				case "underline":
					set = set.With(document.Underline)
				case "codeblock", "code-block":
					set = set.With(document.CodeBlock)
				case "bold":
					set = set.With(document.Bold)
				}
			}
		case "style":
			set = set.Union(cssStyles(a.Val))
		}
	}
	return set
}

// cssStyles reads an inline style attribute. Declarations that do not parse
// are ignored.
func cssStyles(attr string) document.StyleSet {
	// The parser drops the value of a final declaration without ';', the
	// form draft-js exports.
	attr = strings.TrimSpace(attr)
	if attr != "" && !strings.HasSuffix(attr, ";") {
		attr += ";"
	}
	decls, err := parser.ParseDeclarations(attr)
	if err != nil {
		return 0
	}
	var set document.StyleSet
	for _, d := range decls {
		val := strings.ToLower(d.Value)
		switch strings.ToLower(d.Property) {
		case "font-weight":
			if val == "bold" || val == "bolder" {
				set = set.With(document.Bold)
			} else if w, err := strconv.Atoi(val); err == nil && w >= 600 {
				set = set.With(document.Bold)
			}
		case "border-bottom", "border-bottom-color":
			if strings.Contains(val, "red") {
				set = set.With(document.RedLine)
			}
		case "text-decoration", "text-decoration-line":
			if strings.Contains(val, "underline") {
				set = set.With(document.Underline)
			}
			if strings.Contains(val, "line-through") {
				set = set.With(document.RedLine)
			}
		case "font-family":
			if strings.Contains(val, "monospace") {
				set = set.With(document.CodeBlock)
			}
		}
	}
	return set
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func plainBlocks(text string) []document.Block {
	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return document.FromText(text).Blocks()
}
