// Package trigger recognizes markdown-like sequences typed right before the
// caret, such as "#" or "**", that turn into a block type or inline mode
// when followed by a space.
package trigger

import (
	"fmt"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/selection"
)

// Kind identifies what a trigger does.
type Kind int

const (
	KindNone Kind = iota
	KindHeading
	KindBold
	KindRedLine
	KindUnderline
	KindCodeBlock
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindHeading:
		return "heading"
	case KindBold:
		return "bold"
	case KindRedLine:
		return "redline"
	case KindUnderline:
		return "underline"
	case KindCodeBlock:
		return "codeblock"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Mode returns the inline mode toggled by the trigger, or ModeNone for
// block-level triggers.
func (k Kind) Mode() document.Mode {
	switch k {
	case KindBold:
		return document.ModeBold
	case KindRedLine:
		return document.ModeRedLine
	case KindUnderline:
		return document.ModeUnderline
	case KindCodeBlock:
		return document.ModeCodeBlock
	}
	return document.ModeNone
}

// Pattern is one trigger sequence.
type Pattern struct {
	Seq  string
	Kind Kind
	// AtBlockStart requires the sequence to end exactly at offset len(Seq).
	AtBlockStart bool
}

// DefaultPatterns is the trigger table, longest sequence first.
var DefaultPatterns = []Pattern{
	{Seq: "```", Kind: KindCodeBlock},
	{Seq: "***", Kind: KindUnderline},
	{Seq: "**", Kind: KindRedLine},
	{Seq: "*", Kind: KindBold},
	{Seq: "#", Kind: KindHeading, AtBlockStart: true},
}

// Fire is the character that completes a trigger.
const Fire = ' '

// Match describes a recognized trigger: the run [Start, Start+Length) in the
// caret's block is the trigger text to delete.
type Match struct {
	Kind   Kind
	Start  int
	Length int
}

// Recognizer tests the text before the caret against its patterns.
type Recognizer struct {
	patterns []Pattern
	longest  int
}

// NewRecognizer returns a recognizer over patterns. Patterns are tried in
// the given order; callers must list longer sequences first.
func NewRecognizer(patterns []Pattern) *Recognizer {
	r := &Recognizer{patterns: patterns}
	for _, p := range patterns {
		r.longest = max(r.longest, len([]rune(p.Seq)))
	}
	return r
}

// Default returns a recognizer over DefaultPatterns.
func Default() *Recognizer {
	return NewRecognizer(DefaultPatterns)
}

// Recognize decides whether inserting c at sel completes a trigger. A
// result with KindNone means the character should be inserted normally.
// Only collapsed selections in body blocks can fire.
func (r *Recognizer) Recognize(doc *document.Document, sel selection.Selection, c rune) (Match, error) {
	b, err := selection.Validate(doc, sel)
	if err != nil {
		return Match{}, err
	}
	if c != Fire || b.Type != document.Body || !sel.IsCollapsed() {
		return Match{}, nil
	}
	// One extra rune of context decides whether the run is exact.
	before, err := selection.TextBefore(doc, sel, r.longest+1)
	if err != nil {
		return Match{}, err
	}
	ctx := []rune(before)
	for _, p := range r.patterns {
		if r.matches(p, ctx, sel.Focus) {
			n := len([]rune(p.Seq))
			return Match{Kind: p.Kind, Start: sel.Focus - n, Length: n}, nil
		}
	}
	return Match{}, nil
}

// matches applies the exact-length rule: the pattern must be the whole run
// of its character ending at the caret, not the tail of a longer run.
func (r *Recognizer) matches(p Pattern, ctx []rune, offset int) bool {
	seq := []rune(p.Seq)
	n := len(seq)
	if len(ctx) < n {
		return false
	}
	if string(ctx[len(ctx)-n:]) != p.Seq {
		return false
	}
	if p.AtBlockStart {
		return offset == n
	}
	if offset == n {
		return true
	}
	return ctx[len(ctx)-n-1] != seq[0]
}
