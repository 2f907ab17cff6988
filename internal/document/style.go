package document

import (
	"fmt"
	"strings"
)

// BlockType is the structural type of a block.
type BlockType int

const (
	Body BlockType = iota
	Heading
	Code
)

func (t BlockType) String() string {
	switch t {
	case Body:
		return "body"
	case Heading:
		return "heading"
	case Code:
		return "code"
	default:
		return fmt.Sprintf("BlockType(%d)", int(t))
	}
}

// ParseBlockType is the inverse of BlockType.String.
func ParseBlockType(s string) (BlockType, error) {
	switch strings.ToLower(s) {
	case "body", "":
		return Body, nil
	case "heading":
		return Heading, nil
	case "code":
		return Code, nil
	}
	return Body, fmt.Errorf("unknown block type %q", s)
}

// Style is a single inline style tag.
type Style uint8

const (
	Bold Style = 1 << iota
	RedLine
	Underline
	CodeBlock
)

// AllStyles lists every style tag in precedence order.
var AllStyles = []Style{Bold, RedLine, Underline, CodeBlock}

func (s Style) String() string {
	switch s {
	case Bold:
		return "bold"
	case RedLine:
		return "redline"
	case Underline:
		return "underline"
	case CodeBlock:
		return "code"
	default:
		return fmt.Sprintf("Style(%d)", uint8(s))
	}
}

// StyleSet is the set of style tags active on one character.
type StyleSet uint8

// SetOf builds a StyleSet from individual tags.
func SetOf(styles ...Style) StyleSet {
	var set StyleSet
	for _, s := range styles {
		set |= StyleSet(s)
	}
	return set
}

func (s StyleSet) Has(st Style) bool         { return s&StyleSet(st) != 0 }
func (s StyleSet) With(st Style) StyleSet    { return s | StyleSet(st) }
func (s StyleSet) Without(st Style) StyleSet { return s &^ StyleSet(st) }
func (s StyleSet) IsEmpty() bool             { return s == 0 }
func (s StyleSet) Union(o StyleSet) StyleSet { return s | o }

// Styles returns the tags of the set in precedence order.
func (s StyleSet) Styles() []Style {
	var out []Style
	for _, st := range AllStyles {
		if s.Has(st) {
			out = append(out, st)
		}
	}
	return out
}

func (s StyleSet) String() string {
	if s.IsEmpty() {
		return "none"
	}
	names := make([]string, 0, 4)
	for _, st := range s.Styles() {
		names = append(names, st.String())
	}
	return strings.Join(names, "|")
}
