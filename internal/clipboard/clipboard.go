// Package clipboard copies and pastes text through the system clipboard,
// keeping an internal register as a fallback.
package clipboard

import (
	"sync"

	"github.com/atotto/clipboard"
	"github.com/bethropolis/tidemark/internal/logger"
)

// Clipboard holds the last copied text. With the system clipboard enabled
// it also writes through to it and prefers it when pasting.
type Clipboard struct {
	mu       sync.Mutex
	system   bool
	register string
}

// New creates a clipboard. useSystem is ignored on platforms without a
// supported clipboard utility.
func New(useSystem bool) *Clipboard {
	if useSystem && clipboard.Unsupported {
		logger.Warnf("Clipboard: system clipboard unsupported here, using internal register")
		useSystem = false
	}
	return &Clipboard{system: useSystem}
}

// System reports whether the system clipboard is in use.
func (c *Clipboard) System() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.system
}

// Copy stores text. A failing system clipboard is logged and the text is
// kept in the register.
func (c *Clipboard) Copy(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.register = text
	if !c.system {
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		logger.Warnf("Clipboard: system write failed: %v", err)
		return
	}
	logger.DebugTagf("clipboard", "Clipboard: copied %d bytes to system clipboard", len(text))
}

// Paste returns the text to insert, from the system clipboard if possible.
func (c *Clipboard) Paste() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.system {
		text, err := clipboard.ReadAll()
		if err == nil {
			return text
		}
		logger.Warnf("Clipboard: system read failed, using register: %v", err)
	}
	return c.register
}
