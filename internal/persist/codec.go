// Package persist serializes documents and stores them in named slots.
package persist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bethropolis/tidemark/internal/document"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrDecode wraps every failure to turn stored content back into a document.
var ErrDecode = errors.New("decode document")

// Codec converts between a document and its stored text form.
// Decode(Encode(doc)) is equivalent to doc for every document.
type Codec interface {
	Name() string
	Encode(doc *document.Document) (string, error)
	Decode(content string) (*document.Document, error)
}

// CodecFor returns the codec registered under name ("html" or "markdown").
func CodecFor(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "html":
		return HTMLCodec{}, nil
	case "markdown", "md":
		return MarkdownCodec{}, nil
	}
	return nil, fmt.Errorf("unknown format %q", name)
}

// normalizeInput turns stored bytes into UTF-8 text. A UTF-8 or UTF-16 byte
// order mark selects the encoding and is dropped.
func normalizeInput(content string) (string, error) {
	dec := xunicode.BOMOverride(xunicode.UTF8.NewDecoder())
	out, _, err := transform.String(dec, content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return out, nil
}

// blocksOrEmpty builds a document from decoded blocks, falling back to the
// empty document when there are none.
func blocksOrEmpty(blocks []document.Block) (*document.Document, error) {
	if len(blocks) == 0 {
		return document.Empty(), nil
	}
	doc, err := document.New(blocks...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return doc, nil
}

// builder accumulates the runes and per-rune styles of one block.
type builder struct {
	runes  []rune
	styles []document.StyleSet
}

func (b *builder) add(text string, set document.StyleSet) {
	for _, r := range text {
		b.runes = append(b.runes, r)
		b.styles = append(b.styles, set)
	}
}

func (b *builder) block(t document.BlockType) document.Block {
	return document.NewStyledBlock(document.NewKey(), t, string(b.runes), b.styles)
}
