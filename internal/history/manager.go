package history

import (
	"sync"
	"unicode"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/bethropolis/tidemark/internal/selection"
)

const (
	DefaultMaxEntries = 100
	DefaultMaxRun     = 20
)

type record struct {
	Entry
	run    int  // edits folded into this entry
	sealed bool // no further edits may fold into it
}

// Manager keeps the snapshot stack. entries[current] is the live state;
// entries before it are undo points, entries after it redo points.
type Manager struct {
	mutex      sync.Mutex
	entries    []record
	current    int
	maxEntries int
	maxRun     int
}

// NewManager creates a history manager. Non-positive limits fall back to
// the defaults.
func NewManager(maxEntries, maxRun int) *Manager {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if maxRun <= 0 {
		maxRun = DefaultMaxRun
	}
	return &Manager{
		entries:    make([]record, 0, maxEntries),
		maxEntries: maxEntries,
		maxRun:     maxRun,
	}
}

// Reset discards all history and makes initial the only entry.
func (m *Manager) Reset(initial Entry) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.entries = append(m.entries[:0], record{Entry: initial, run: 1, sealed: true})
	m.current = 0
	logger.DebugTagf("history", "History: Reset")
}

// Record pushes the state produced by an edit, clearing any redo history.
// typed is the character an insert-char edit added (0 otherwise); a space or
// punctuation ends the current typing run.
func (m *Manager) Record(e Entry, typed rune) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.entries) == 0 {
		m.entries = append(m.entries, record{Entry: e, run: 1, sealed: true})
		m.current = 0
		return
	}
	if m.current < len(m.entries)-1 {
		m.entries = m.entries[:m.current+1]
	}

	last := &m.entries[m.current]
	if m.current > 0 && m.canMerge(*last, e.Kind) {
		last.Entry = e
		last.run++
		last.sealed = isBreak(typed) || last.run >= m.maxRun
		logger.DebugTagf("history", "History: Coalesced %v (run %d)", e.Kind, last.run)
		return
	}

	m.entries = append(m.entries, record{Entry: e, run: 1, sealed: e.Kind == KindStructural || isBreak(typed)})
	if len(m.entries) > m.maxEntries {
		m.entries = m.entries[len(m.entries)-m.maxEntries:]
	}
	m.current = len(m.entries) - 1
	logger.DebugTagf("history", "History: Recorded %v. Index: %d, Count: %d", e.Kind, m.current, len(m.entries))
}

func (m *Manager) canMerge(last record, kind ChangeKind) bool {
	if kind == KindStructural || last.Kind != kind || last.sealed {
		return false
	}
	return last.run < m.maxRun
}

func isBreak(r rune) bool {
	return r != 0 && (unicode.IsSpace(r) || unicode.IsPunct(r))
}

// Undo steps back one entry and returns the state to restore. It returns
// false when there is nothing to undo.
func (m *Manager) Undo() (Entry, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.current <= 0 {
		logger.DebugTagf("history", "History: Nothing to undo.")
		return Entry{}, false
	}
	m.current--
	m.entries[m.current].sealed = true
	logger.DebugTagf("history", "History: Undo to %d", m.current)
	return m.entries[m.current].Entry, true
}

// Redo re-applies the next entry. It returns false at the end of history.
func (m *Manager) Redo() (Entry, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.current >= len(m.entries)-1 {
		logger.DebugTagf("history", "History: Nothing to redo.")
		return Entry{}, false
	}
	m.current++
	m.entries[m.current].sealed = true
	logger.DebugTagf("history", "History: Redo to %d", m.current)
	return m.entries[m.current].Entry, true
}

// UpdateCurrent replaces the selection and mode of the live entry and
// seals it, so undoing the next edit restores the caret as it was just
// before that edit.
func (m *Manager) UpdateCurrent(sel selection.Selection, mode document.Mode) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if len(m.entries) == 0 {
		return
	}
	live := &m.entries[m.current]
	live.Sel, live.Mode = sel, mode
	live.sealed = true
}

// Current returns the live entry.
func (m *Manager) Current() (Entry, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if len(m.entries) == 0 {
		return Entry{}, false
	}
	return m.entries[m.current].Entry, true
}

// Clear drops every entry.
func (m *Manager) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.entries = m.entries[:0]
	m.current = 0
}

// CanUndo reports whether Undo would succeed.
func (m *Manager) CanUndo() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.current > 0
}

// CanRedo reports whether Redo would succeed.
func (m *Manager) CanRedo() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.current < len(m.entries)-1
}

// Len returns the number of stored entries, the live one included.
func (m *Manager) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.entries)
}
