// Package find searches a document for a pattern. Matches never span
// blocks, so every match is a valid selection.
package find

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/selection"
)

// Match is one occurrence, in rune offsets within its block.
type Match struct {
	BlockKey   string
	BlockIndex int
	Start, End int
}

// Selection returns a selection covering the match, focus at its end.
func (m Match) Selection() selection.Selection {
	return selection.Selection{BlockKey: m.BlockKey, Anchor: m.Start, Focus: m.End}
}

// Compile parses a search pattern. Patterns are regular expressions.
func Compile(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("search pattern cannot be empty")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid search pattern: %w", err)
	}
	return re, nil
}

// All returns every non-empty match in document order.
func All(doc *document.Document, re *regexp.Regexp) []Match {
	var matches []Match
	for i, b := range doc.Blocks() {
		for _, loc := range re.FindAllStringIndex(b.Text, -1) {
			if loc[0] == loc[1] {
				continue
			}
			matches = append(matches, Match{
				BlockKey:   b.Key,
				BlockIndex: i,
				Start:      byteOffsetToRuneIndex(b.Text, loc[0]),
				End:        byteOffsetToRuneIndex(b.Text, loc[1]),
			})
		}
	}
	return matches
}

// Next finds the match after sel (forward) or before it, wrapping around
// the document. A caret sitting on a match start finds that match when
// searching forward; a selection finds the match after its start.
func Next(doc *document.Document, sel selection.Selection, re *regexp.Regexp, forward bool) (Match, bool) {
	matches := All(doc, re)
	if len(matches) == 0 {
		return Match{}, false
	}
	_, idx, err := doc.BlockByKey(sel.BlockKey)
	if err != nil {
		idx, sel = 0, selection.Selection{}
	}

	if forward {
		from := sel.Start()
		if !sel.IsCollapsed() {
			from++
		}
		for _, m := range matches {
			if m.BlockIndex > idx || (m.BlockIndex == idx && m.Start >= from) {
				return m, true
			}
		}
		return matches[0], true
	}

	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		if m.BlockIndex < idx || (m.BlockIndex == idx && m.Start < sel.Start()) {
			return m, true
		}
	}
	return matches[len(matches)-1], true
}

func byteOffsetToRuneIndex(s string, byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset >= len(s) {
		return utf8.RuneCountInString(s)
	}
	return utf8.RuneCountInString(s[:byteOffset])
}
