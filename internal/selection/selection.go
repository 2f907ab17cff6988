// Package selection resolves UI selections against a document and moves
// the caret between grapheme clusters and blocks.
package selection

import (
	"fmt"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/rivo/uniseg"
)

// Selection is an anchor/focus pair inside one block. Offsets are runes.
type Selection struct {
	BlockKey string
	Anchor   int
	Focus    int
}

// Raw is a selection as reported by the host UI, not yet validated.
type Raw struct {
	BlockKey string
	Anchor   int
	Focus    int
}

// Collapsed returns a caret at offset in the block.
func Collapsed(key string, offset int) Selection {
	return Selection{BlockKey: key, Anchor: offset, Focus: offset}
}

// IsCollapsed reports whether the selection is a caret.
func (s Selection) IsCollapsed() bool { return s.Anchor == s.Focus }

// Start returns the smaller offset.
func (s Selection) Start() int { return min(s.Anchor, s.Focus) }

// End returns the larger offset.
func (s Selection) End() int { return max(s.Anchor, s.Focus) }

// Caret collapses the selection onto its focus.
func (s Selection) Caret() Selection { return Collapsed(s.BlockKey, s.Focus) }

func (s Selection) String() string {
	if s.IsCollapsed() {
		return fmt.Sprintf("%s@%d", s.BlockKey, s.Focus)
	}
	return fmt.Sprintf("%s@%d..%d", s.BlockKey, s.Anchor, s.Focus)
}

// Resolve validates raw against doc. An unknown key or an offset outside
// the block fails with an error wrapping document.ErrInvariant.
func Resolve(doc *document.Document, raw Raw) (Selection, error) {
	sel := Selection(raw)
	if _, err := Validate(doc, sel); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

// Validate checks sel against doc and returns the referenced block.
func Validate(doc *document.Document, sel Selection) (document.Block, error) {
	b, _, err := doc.BlockByKey(sel.BlockKey)
	if err != nil {
		return document.Block{}, err
	}
	n := b.Len()
	if sel.Anchor < 0 || sel.Anchor > n || sel.Focus < 0 || sel.Focus > n {
		return document.Block{}, fmt.Errorf("%w: selection %s in block of length %d",
			document.ErrOffsetOutOfRange, sel, n)
	}
	return b, nil
}

// TextBefore returns up to n runes immediately before the caret, within the
// caret's block. Near the block start fewer runes are returned.
func TextBefore(doc *document.Document, sel Selection, n int) (string, error) {
	b, err := Validate(doc, sel)
	if err != nil {
		return "", err
	}
	runes := []rune(b.Text)
	end := sel.Focus
	start := max(0, end-n)
	return string(runes[start:end]), nil
}

// DocumentStart returns a caret at the start of the first block.
func DocumentStart(doc *document.Document) Selection {
	return Collapsed(doc.BlockAt(0).Key, 0)
}

// DocumentEnd returns a caret at the end of the last block.
func DocumentEnd(doc *document.Document) Selection {
	last := doc.BlockAt(doc.Len() - 1)
	return Collapsed(last.Key, last.Len())
}

// graphemeBounds returns the rune offsets of grapheme cluster boundaries in
// text, starting with 0 and ending with the rune count.
func graphemeBounds(text string) []int {
	bounds := []int{0}
	offset := 0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		offset += len(gr.Runes())
		bounds = append(bounds, offset)
	}
	return bounds
}

// PrevBoundary returns the grapheme boundary strictly before offset, or 0.
func PrevBoundary(text string, offset int) int {
	bounds := graphemeBounds(text)
	prev := 0
	for _, b := range bounds {
		if b >= offset {
			break
		}
		prev = b
	}
	return prev
}

// NextBoundary returns the grapheme boundary strictly after offset, or the
// text length.
func NextBoundary(text string, offset int) int {
	bounds := graphemeBounds(text)
	for _, b := range bounds {
		if b > offset {
			return b
		}
	}
	return bounds[len(bounds)-1]
}
