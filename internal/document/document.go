// Package document implements the immutable rich-text document model:
// an ordered list of typed blocks whose characters carry style sets.
//
// Every edit returns a new *Document. Blocks an edit does not touch are
// carried over unchanged, keys included, so renderers can diff by key.
package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvariant is wrapped by every error caused by a caller passing a key or
// offset the document does not have. These are programming errors; the
// document never clamps them.
var ErrInvariant = errors.New("document invariant violated")

var (
	ErrUnknownBlock     = fmt.Errorf("%w: unknown block key", ErrInvariant)
	ErrOffsetOutOfRange = fmt.Errorf("%w: offset out of range", ErrInvariant)
	ErrDuplicateKey     = fmt.Errorf("%w: duplicate block key", ErrInvariant)
	ErrInvalidRange     = fmt.Errorf("%w: invalid style range", ErrInvariant)
	ErrNewline          = fmt.Errorf("%w: newline in inline text", ErrInvariant)
)

// Document is an immutable, non-empty sequence of blocks.
type Document struct {
	blocks []Block
}

// NewKey returns a fresh block key.
func NewKey() string {
	return uuid.NewString()
}

// New validates blocks and returns a document holding them. With no blocks
// it returns Empty().
func New(blocks ...Block) (*Document, error) {
	if len(blocks) == 0 {
		return Empty(), nil
	}
	seen := make(map[string]struct{}, len(blocks))
	for _, b := range blocks {
		if b.Key == "" {
			return nil, fmt.Errorf("%w: empty block key", ErrInvariant)
		}
		if _, dup := seen[b.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, b.Key)
		}
		seen[b.Key] = struct{}{}
		if strings.ContainsRune(b.Text, '\n') {
			return nil, fmt.Errorf("%w: block %s", ErrNewline, b.Key)
		}
		if err := b.validate(); err != nil {
			return nil, err
		}
	}
	out := make([]Block, len(blocks))
	copy(out, blocks)
	return &Document{blocks: out}, nil
}

// Empty returns a document holding one empty body block.
func Empty() *Document {
	return &Document{blocks: []Block{{Key: NewKey(), Type: Body}}}
}

// FromText builds an unstyled document with one body block per line.
func FromText(text string) *Document {
	if text == "" {
		return Empty()
	}
	lines := strings.Split(text, "\n")
	blocks := make([]Block, len(lines))
	for i, line := range lines {
		blocks[i] = Block{Key: NewKey(), Type: Body, Text: line}
	}
	return &Document{blocks: blocks}
}

// Len returns the number of blocks.
func (d *Document) Len() int { return len(d.blocks) }

// Blocks returns a copy of the block list.
func (d *Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	copy(out, d.blocks)
	return out
}

// BlockAt returns the i-th block. It panics if i is out of range, like a
// slice index.
func (d *Document) BlockAt(i int) Block { return d.blocks[i] }

// BlockByKey returns the block with the given key and its index.
func (d *Document) BlockByKey(key string) (Block, int, error) {
	for i, b := range d.blocks {
		if b.Key == key {
			return b, i, nil
		}
	}
	return Block{}, -1, fmt.Errorf("%w: %q", ErrUnknownBlock, key)
}

// PlainText joins the block texts with newlines.
func (d *Document) PlainText() string {
	texts := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		texts[i] = b.Text
	}
	return strings.Join(texts, "\n")
}

// splice returns a new document with block i replaced by repl.
func (d *Document) splice(i int, repl ...Block) *Document {
	blocks := make([]Block, 0, len(d.blocks)-1+len(repl))
	blocks = append(blocks, d.blocks[:i]...)
	blocks = append(blocks, repl...)
	blocks = append(blocks, d.blocks[i+1:]...)
	return &Document{blocks: blocks}
}

func checkOffset(b Block, offset int) error {
	if offset < 0 || offset > b.Len() {
		return fmt.Errorf("%w: offset %d in block %s of length %d", ErrOffsetOutOfRange, offset, b.Key, b.Len())
	}
	return nil
}

func checkSpan(b Block, start, end int) error {
	if err := checkOffset(b, start); err != nil {
		return err
	}
	if err := checkOffset(b, end); err != nil {
		return err
	}
	if start > end {
		return fmt.Errorf("%w: span [%d,%d) reversed in block %s", ErrOffsetOutOfRange, start, end, b.Key)
	}
	return nil
}

// InsertText inserts text at offset; every inserted rune carries styles.
func (d *Document) InsertText(key string, offset int, text string, styles StyleSet) (*Document, error) {
	b, i, err := d.BlockByKey(key)
	if err != nil {
		return nil, err
	}
	if err := checkOffset(b, offset); err != nil {
		return nil, err
	}
	if strings.ContainsRune(text, '\n') {
		return nil, fmt.Errorf("%w: use SplitBlock", ErrNewline)
	}
	ins := []rune(text)
	if len(ins) == 0 {
		return d, nil
	}
	runes, sets := b.unpack()

	newRunes := make([]rune, 0, len(runes)+len(ins))
	newRunes = append(newRunes, runes[:offset]...)
	newRunes = append(newRunes, ins...)
	newRunes = append(newRunes, runes[offset:]...)

	newSets := make([]StyleSet, 0, len(newRunes))
	newSets = append(newSets, sets[:offset]...)
	for range ins {
		newSets = append(newSets, styles)
	}
	newSets = append(newSets, sets[offset:]...)

	return d.splice(i, buildBlock(b.Key, b.Type, newRunes, newSets)), nil
}

// DeleteRange removes the runes in [start, end) of the block.
func (d *Document) DeleteRange(key string, start, end int) (*Document, error) {
	b, i, err := d.BlockByKey(key)
	if err != nil {
		return nil, err
	}
	if err := checkSpan(b, start, end); err != nil {
		return nil, err
	}
	if start == end {
		return d, nil
	}
	runes, sets := b.unpack()
	newRunes := append(append([]rune{}, runes[:start]...), runes[end:]...)
	newSets := append(append([]StyleSet{}, sets[:start]...), sets[end:]...)
	return d.splice(i, buildBlock(b.Key, b.Type, newRunes, newSets)), nil
}

// SetBlockType changes the type of a block.
func (d *Document) SetBlockType(key string, t BlockType) (*Document, error) {
	b, i, err := d.BlockByKey(key)
	if err != nil {
		return nil, err
	}
	if b.Type == t {
		return d, nil
	}
	b.Type = t
	return d.splice(i, b), nil
}

// SplitBlock cuts the block at offset. The text after offset, with its
// styles, moves into a new block of the same type keyed newKey, placed
// directly after the original.
func (d *Document) SplitBlock(key string, offset int, newKey string) (*Document, error) {
	b, i, err := d.BlockByKey(key)
	if err != nil {
		return nil, err
	}
	if err := checkOffset(b, offset); err != nil {
		return nil, err
	}
	if _, _, err := d.BlockByKey(newKey); err == nil || newKey == "" {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, newKey)
	}
	runes, sets := b.unpack()
	head := buildBlock(b.Key, b.Type, runes[:offset], sets[:offset])
	tail := buildBlock(newKey, b.Type, runes[offset:], sets[offset:])
	return d.splice(i, head, tail), nil
}

// MergeWithPrevious appends the block to the block before it and removes
// it. It returns the key of the surviving block and the offset where the
// joined text begins.
func (d *Document) MergeWithPrevious(key string) (*Document, string, int, error) {
	b, i, err := d.BlockByKey(key)
	if err != nil {
		return nil, "", 0, err
	}
	if i == 0 {
		return nil, "", 0, fmt.Errorf("%w: block %s has no predecessor", ErrOffsetOutOfRange, key)
	}
	prev := d.blocks[i-1]
	pr, ps := prev.unpack()
	br, bs := b.unpack()
	joined := buildBlock(prev.Key, prev.Type, append(pr, br...), append(ps, bs...))

	blocks := make([]Block, 0, len(d.blocks)-1)
	blocks = append(blocks, d.blocks[:i-1]...)
	blocks = append(blocks, joined)
	blocks = append(blocks, d.blocks[i+1:]...)
	return &Document{blocks: blocks}, prev.Key, len(pr), nil
}

// ToggleStyle flips st over [start, end): if every rune in the span has it,
// it is removed, otherwise it is added to all of them.
func (d *Document) ToggleStyle(key string, start, end int, st Style) (*Document, error) {
	b, i, err := d.BlockByKey(key)
	if err != nil {
		return nil, err
	}
	if err := checkSpan(b, start, end); err != nil {
		return nil, err
	}
	if start == end {
		return d, nil
	}
	runes, sets := b.unpack()
	all := true
	for _, s := range sets[start:end] {
		if !s.Has(st) {
			all = false
			break
		}
	}
	for j := start; j < end; j++ {
		if all {
			sets[j] = sets[j].Without(st)
		} else {
			sets[j] = sets[j].With(st)
		}
	}
	return d.splice(i, buildBlock(b.Key, b.Type, runes, sets)), nil
}

// Equivalent reports whether a and b have the same block types, texts and
// style runs. Keys are ignored.
func Equivalent(a, b *Document) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.blocks {
		x, y := a.blocks[i], b.blocks[i]
		if x.Type != y.Type || x.Text != y.Text || len(x.Ranges) != len(y.Ranges) {
			return false
		}
		for j := range x.Ranges {
			if x.Ranges[j] != y.Ranges[j] {
				return false
			}
		}
	}
	return true
}
