// plugins/wordcount/wordcount.go
package wordcount

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/plugin"
)

// Ensure WordCount implements plugin.Plugin
var _ plugin.Plugin = (*WordCount)(nil)

// WordCount counts blocks, words and characters of the document.
type WordCount struct {
	api plugin.EditorAPI
}

// New creates a new instance of the WordCount plugin.
func New() plugin.Plugin {
	return &WordCount{}
}

// Name returns the unique name of the plugin.
func (p *WordCount) Name() string {
	return "WordCount"
}

// Initialize registers the wc command.
func (p *WordCount) Initialize(api plugin.EditorAPI) error {
	p.api = api
	if err := api.RegisterCommand("wc", p.executeWordCount); err != nil {
		return fmt.Errorf("failed to register 'wc' command: %w", err)
	}
	return nil
}

// Shutdown performs cleanup (nothing needed for this simple plugin).
func (p *WordCount) Shutdown() error {
	return nil
}

// Stats are the counts shown by the wc command.
type Stats struct {
	Blocks   int
	Headings int
	Words    int
	Chars    int
}

// Count computes the stats of doc. Characters are runes, block breaks
// excluded.
func Count(doc *document.Document) Stats {
	var s Stats
	for _, b := range doc.Blocks() {
		s.Blocks++
		if b.Type == document.Heading {
			s.Headings++
		}
		s.Words += len(strings.Fields(b.Text))
		s.Chars += utf8.RuneCountInString(b.Text)
	}
	return s
}

func (p *WordCount) executeWordCount(args []string) error {
	if p.api == nil {
		return fmt.Errorf("wordcount plugin not initialized with API")
	}
	s := Count(p.api.Snapshot().Doc)
	p.api.SetStatusMessage("Blocks: %d, Headings: %d, Words: %d, Chars: %d", s.Blocks, s.Headings, s.Words, s.Chars)
	return nil
}
