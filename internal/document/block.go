package document

import (
	"fmt"
	"unicode/utf8"
)

// StyleRange is a run of characters sharing one non-empty style set.
// Start and End are rune offsets, End exclusive.
type StyleRange struct {
	Start  int
	End    int
	Styles StyleSet
}

// Block is one paragraph-like unit. Blocks are values; a Block obtained
// from a Document must not have its Ranges slice modified.
type Block struct {
	Key    string
	Type   BlockType
	Text   string
	Ranges []StyleRange
}

// Segment is a maximal run of text with one style set, unstyled runs
// included. Segments are what renderers and encoders walk.
type Segment struct {
	Text   string
	Styles StyleSet
}

// Len returns the length of the block text in runes.
func (b Block) Len() int {
	return utf8.RuneCountInString(b.Text)
}

// StylesAt returns the style set of the rune at offset i.
func (b Block) StylesAt(i int) StyleSet {
	for _, r := range b.Ranges {
		if i < r.Start {
			break
		}
		if i < r.End {
			return r.Styles
		}
	}
	return 0
}

// Segments splits the block text into style runs.
func (b Block) Segments() []Segment {
	runes := []rune(b.Text)
	if len(runes) == 0 {
		return nil
	}
	styles := b.styleSlice(len(runes))
	var segs []Segment
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i == len(runes) || styles[i] != styles[start] {
			segs = append(segs, Segment{Text: string(runes[start:i]), Styles: styles[start]})
			start = i
		}
	}
	return segs
}

// styleSlice expands the stored ranges into one set per rune.
func (b Block) styleSlice(n int) []StyleSet {
	styles := make([]StyleSet, n)
	for _, r := range b.Ranges {
		for i := r.Start; i < r.End && i < n; i++ {
			styles[i] = r.Styles
		}
	}
	return styles
}

func (b Block) validate() error {
	n := b.Len()
	prevEnd := 0
	for i, r := range b.Ranges {
		if r.Start < prevEnd || r.Start >= r.End || r.End > n {
			return fmt.Errorf("%w: block %s range %d [%d,%d) (text length %d)",
				ErrInvalidRange, b.Key, i, r.Start, r.End, n)
		}
		if r.Styles.IsEmpty() {
			return fmt.Errorf("%w: block %s range %d has no styles", ErrInvalidRange, b.Key, i)
		}
		prevEnd = r.End
	}
	return nil
}

// buildBlock assembles a block from runes and their per-rune styles.
func buildBlock(key string, t BlockType, runes []rune, styles []StyleSet) Block {
	return Block{
		Key:    key,
		Type:   t,
		Text:   string(runes),
		Ranges: compact(styles),
	}
}

// NewStyledBlock builds a block from per-rune styles. len(styles) must
// equal the rune count of text; missing entries are treated as unstyled.
func NewStyledBlock(key string, t BlockType, text string, styles []StyleSet) Block {
	runes := []rune(text)
	full := make([]StyleSet, len(runes))
	copy(full, styles)
	return buildBlock(key, t, runes, full)
}

// compact folds per-rune styles into ordered non-empty runs.
func compact(styles []StyleSet) []StyleRange {
	var ranges []StyleRange
	for i := 0; i < len(styles); {
		j := i + 1
		for j < len(styles) && styles[j] == styles[i] {
			j++
		}
		if !styles[i].IsEmpty() {
			ranges = append(ranges, StyleRange{Start: i, End: j, Styles: styles[i]})
		}
		i = j
	}
	return ranges
}

// unpack returns the runes and per-rune styles of the block.
func (b Block) unpack() ([]rune, []StyleSet) {
	runes := []rune(b.Text)
	return runes, b.styleSlice(len(runes))
}
