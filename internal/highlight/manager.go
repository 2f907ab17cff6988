package highlight

import (
	"context"
	"sync"
	"time"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/logger"
)

// DebounceHighlightDuration is how long the manager waits after the last
// change before re-highlighting.
const DebounceHighlightDuration = 65 * time.Millisecond

// Manager handles debounced asynchronous syntax highlighting.
type Manager struct {
	highlighter *Highlighter
	onUpdate    func() // Called after new highlights are stored

	mu         sync.Mutex // Protects the fields below
	timer      *time.Timer
	pending    *document.Document // Latest document waiting to be highlighted
	isRunning  bool               // Is a highlight task currently running?
	ctx        context.Context
	cancelFunc context.CancelFunc
	result     Result
	closed     bool
}

// NewManager creates a highlighting manager. onUpdate may be nil.
func NewManager(h *Highlighter, onUpdate func()) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		highlighter: h,
		onUpdate:    onUpdate,
		ctx:         ctx,
		cancelFunc:  cancel,
		result:      make(Result),
	}
}

// Schedule queues doc for highlighting and resets the debounce timer.
func (m *Manager) Schedule(doc *document.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.pending = doc
	if m.timer != nil {
		m.timer.Reset(DebounceHighlightDuration)
		return
	}
	m.timer = time.AfterFunc(DebounceHighlightDuration, m.runHighlightUpdate)
}

// runHighlightUpdate highlights the pending document on the timer's goroutine.
func (m *Manager) runHighlightUpdate() {
	m.mu.Lock()
	m.timer = nil
	if m.closed || m.pending == nil {
		m.mu.Unlock()
		return
	}
	if m.isRunning {
		// Try again once the running task is done.
		m.timer = time.AfterFunc(DebounceHighlightDuration, m.runHighlightUpdate)
		m.mu.Unlock()
		return
	}
	doc := m.pending
	m.pending = nil
	m.isRunning = true
	ctx := m.ctx
	m.mu.Unlock()

	result, err := m.highlighter.Highlight(ctx, doc)

	m.mu.Lock()
	m.isRunning = false
	if err != nil {
		if ctx.Err() == nil {
			logger.Warnf("HighlightingManager: Background highlighting failed: %v", err)
		}
		m.mu.Unlock()
		return
	}
	m.result = result
	m.mu.Unlock()

	logger.DebugTagf("highlight", "HighlightingManager: highlighted %d code blocks", len(result))
	if m.onUpdate != nil {
		m.onUpdate()
	}
}

// Spans returns the latest spans for a block.
func (m *Manager) Spans(key string) []Span {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result[key]
}

// Shutdown cancels any pending or running task.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cancelFunc()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
