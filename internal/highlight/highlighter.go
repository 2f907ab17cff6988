package highlight

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/logger"
	sitter "github.com/smacker/go-tree-sitter"
)

// Span styles the rune range [Start, End) of one block.
type Span struct {
	Start int
	End   int
	Style string
}

// Result maps block keys to the spans of that block, ordered by Start.
type Result map[string][]Span

// Highlighter parses code blocks with tree-sitter and queries them for
// highlight captures. Runs of adjacent code blocks are parsed as one
// source, one block per line.
type Highlighter struct {
	lang *Language

	mu     sync.Mutex // parser is not safe for concurrent use
	parser *sitter.Parser
	query  *sitter.Query
}

// New creates a highlighter for the named language.
func New(name string) (*Highlighter, error) {
	lang := LanguageFor(name)
	if lang == nil {
		return nil, fmt.Errorf("no highlighting for language %q", name)
	}
	query, err := sitter.NewQuery([]byte(lang.Query), lang.TreeSitterLang)
	if err != nil {
		return nil, fmt.Errorf("compile %s highlight query: %w", lang.Name, err)
	}
	parser := sitter.NewParser()
	parser.SetLanguage(lang.TreeSitterLang)
	return &Highlighter{lang: lang, parser: parser, query: query}, nil
}

// Language returns the language being highlighted.
func (h *Highlighter) Language() string { return h.lang.Name }

// Close releases the parser and the compiled query.
func (h *Highlighter) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.parser.Close()
	h.query.Close()
}

// Highlight computes spans for every code block of doc.
func (h *Highlighter) Highlight(ctx context.Context, doc *document.Document) (Result, error) {
	result := make(Result)
	var keys, lines []string
	flush := func() error {
		if len(keys) == 0 {
			return nil
		}
		err := h.highlightRun(ctx, keys, lines, result)
		keys, lines = keys[:0], lines[:0]
		return err
	}
	for _, b := range doc.Blocks() {
		if b.Type != document.Code {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		keys = append(keys, b.Key)
		lines = append(lines, b.Text)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	for key := range result {
		spans := result[key]
		sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	}
	return result, nil
}

func (h *Highlighter) highlightRun(ctx context.Context, keys, lines []string, out Result) error {
	source := []byte(strings.Join(lines, "\n"))

	h.mu.Lock()
	defer h.mu.Unlock()
	tree, err := h.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return fmt.Errorf("parse %s: %w", h.lang.Name, err)
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(h.query, tree.RootNode())

	count := 0
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			style := captureNameToStyleName(h.query.CaptureNameForId(capture.Index))
			start, end := capture.Node.StartPoint(), capture.Node.EndPoint()
			for row := int(start.Row); row <= int(end.Row) && row < len(lines); row++ {
				line := lines[row]
				from, to := 0, utf8.RuneCountInString(line)
				if row == int(start.Row) {
					from = byteOffsetToRuneIndex(line, int(start.Column))
				}
				if row == int(end.Row) {
					to = byteOffsetToRuneIndex(line, int(end.Column))
				}
				if to <= from {
					continue // zero-width node
				}
				out[keys[row]] = append(out[keys[row]], Span{Start: from, End: to, Style: style})
				count++
			}
		}
	}
	logger.DebugTagf("highlight", "Highlighter: %d spans over %d %s lines", count, len(lines), h.lang.Name)
	return nil
}

// captureNameToStyleName maps a capture such as "@keyword.control" to the
// theme style name "keyword.control".
func captureNameToStyleName(captureName string) string {
	return strings.TrimPrefix(captureName, "@")
}

// byteOffsetToRuneIndex converts a byte offset within line to a rune index.
func byteOffsetToRuneIndex(line string, byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset > len(line) {
		byteOffset = len(line)
	}
	return utf8.RuneCountInString(line[:byteOffset])
}
