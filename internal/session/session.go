// internal/session/session.go
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/event"
	"github.com/bethropolis/tidemark/internal/history"
	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/bethropolis/tidemark/internal/persist"
	"github.com/bethropolis/tidemark/internal/selection"
	"github.com/bethropolis/tidemark/internal/transform"
	"github.com/bethropolis/tidemark/internal/trigger"
)

// ErrNoStorage is returned by Save and Load when the session has no adapter.
var ErrNoStorage = errors.New("session has no storage")

// Session owns one editing session: the current document, selection and
// caret mode, the undo history, and the persistence slot. Each input event
// runs to completion before the next one is taken. Events are dispatched
// after the lock is released so handlers may read the session.
type Session struct {
	mu      sync.Mutex
	engine  *transform.Engine
	history *history.Manager
	events  *event.Manager
	adapter *persist.Adapter

	doc   *document.Document
	sel   selection.Selection
	mode  document.Mode
	saved *document.Document // last document written to or read from the slot
}

// Option configures a Session.
type Option func(*Session)

// WithEngine replaces the default transform engine.
func WithEngine(e *transform.Engine) Option {
	return func(s *Session) { s.engine = e }
}

// WithEvents sets the bus events are dispatched on.
func WithEvents(m *event.Manager) Option {
	return func(s *Session) { s.events = m }
}

// WithHistoryLimits sets the history size and the longest typing run that
// folds into one undo step.
func WithHistoryLimits(maxEntries, maxRun int) Option {
	return func(s *Session) { s.history = history.NewManager(maxEntries, maxRun) }
}

// New creates a session holding the empty document. adapter may be nil for
// a session that is never persisted.
func New(adapter *persist.Adapter, opts ...Option) *Session {
	s := &Session{adapter: adapter}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = transform.New()
	}
	if s.history == nil {
		s.history = history.NewManager(0, 0)
	}
	if s.events == nil {
		s.events = event.NewManager()
	}
	s.reset(document.Empty())
	s.saved = s.doc
	return s
}

// reset installs doc with the caret at its start and clears history.
// Callers hold the lock.
func (s *Session) reset(doc *document.Document) {
	s.doc = doc
	s.sel = selection.DocumentStart(doc)
	s.mode = document.ModeNone
	s.history.Reset(history.Entry{Doc: s.doc, Sel: s.sel, Mode: s.mode, Kind: history.KindStructural})
}

// pending is an event queued while the lock is held.
type pending struct {
	typ  event.Type
	data interface{}
}

func (s *Session) emit(out []pending) {
	for _, p := range out {
		s.events.Dispatch(p.typ, p.data)
	}
}

func (s *Session) state() transform.State {
	return transform.State{Doc: s.doc, Sel: s.sel, Mode: s.mode}
}

// commit installs the result of an edit and records it. typed is the
// character a plain insert added, or 0.
func (s *Session) commit(res transform.Result, typed rune) []pending {
	if !res.Handled {
		return nil
	}
	s.doc, s.sel, s.mode = res.State.Doc, res.State.Sel, res.State.Mode
	s.history.Record(history.Entry{Doc: s.doc, Sel: s.sel, Mode: s.mode, Kind: res.Kind}, typed)

	var out []pending
	if res.Trigger != trigger.KindNone {
		out = append(out, pending{event.TypeTriggerFired, event.TriggerFiredData{Kind: res.Trigger, BlockKey: s.sel.BlockKey}})
	}
	return append(out, s.changed(res.Kind))
}

func (s *Session) changed(kind history.ChangeKind) pending {
	return pending{event.TypeDocumentChanged, event.DocumentChangedData{Doc: s.doc, Sel: s.sel, Mode: s.mode, Kind: kind}}
}

// apply runs edit against the current state and commits its result.
func (s *Session) apply(typed rune, edit func(transform.State) (transform.Result, error)) (bool, error) {
	s.mu.Lock()
	res, err := edit(s.state())
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	if res.Trigger != trigger.KindNone {
		typed = 0
	}
	out := s.commit(res, typed)
	s.mu.Unlock()

	s.emit(out)
	return res.Handled, nil
}

// TypeChar handles a typed character: triggers first, then a plain insert.
func (s *Session) TypeChar(c rune) error {
	_, err := s.apply(c, func(st transform.State) (transform.Result, error) {
		res, err := s.engine.BeforeInsertChar(st, c)
		if err != nil || res.Handled {
			return res, err
		}
		return s.engine.InsertChar(st, c)
	})
	return err
}

// Return handles the return key, falling back to a plain line split.
func (s *Session) Return() error {
	_, err := s.apply(0, func(st transform.State) (transform.Result, error) {
		res, err := s.engine.Return(st)
		if err != nil || res.Handled {
			return res, err
		}
		return s.engine.SplitLine(st)
	})
	return err
}

// Backspace deletes backward from the caret, or the selected text.
func (s *Session) Backspace() error {
	_, err := s.apply(0, s.engine.DeleteBackward)
	return err
}

// Paste inserts text at the caret as one undo step.
func (s *Session) Paste(text string) error {
	_, err := s.apply(0, func(st transform.State) (transform.Result, error) {
		return s.engine.InsertText(st, text)
	})
	return err
}

// Command runs a named command. It reports false for unknown names. A
// command on a caret only changes the mode; that is not an undo step.
func (s *Session) Command(name string) (bool, error) {
	cmd, ok := transform.ParseCommand(name)
	if !ok {
		logger.DebugTagf("session", "Session: unknown command %q", name)
		return false, nil
	}

	s.mu.Lock()
	before := s.doc
	res, err := s.engine.Command(s.state(), cmd)
	if err != nil || !res.Handled {
		s.mu.Unlock()
		return false, err
	}

	var out []pending
	if res.State.Doc == before {
		s.sel, s.mode = res.State.Sel, res.State.Mode
		s.history.UpdateCurrent(s.sel, s.mode)
		out = []pending{{event.TypeModeChanged, event.ModeChangedData{Mode: s.mode}}}
	} else {
		out = s.commit(res, 0)
	}
	s.mu.Unlock()

	logger.DebugTagf("session", "Session: command %s", cmd)
	s.emit(out)
	return true, nil
}

// Move moves the caret. The mode is re-derived from the text before the new
// caret and the current typing run is closed.
func (s *Session) Move(dir selection.Direction) error {
	s.mu.Lock()
	sel, err := selection.Move(s.doc, s.sel, dir)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	out, err := s.setSelection(sel)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.emit(out)
	return nil
}

// Select replaces the selection with one reported by the host.
func (s *Session) Select(raw selection.Raw) error {
	s.mu.Lock()
	sel, err := selection.Resolve(s.doc, raw)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	out, err := s.setSelection(sel)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.emit(out)
	return nil
}

func (s *Session) setSelection(sel selection.Selection) ([]pending, error) {
	if sel == s.sel {
		return nil, nil
	}
	mode, err := transform.CaretMode(s.doc, sel)
	if err != nil {
		return nil, err
	}
	s.sel, s.mode = sel, mode
	s.history.UpdateCurrent(sel, mode)
	return []pending{{event.TypeSelectionChanged, event.SelectionChangedData{Sel: sel, Mode: mode}}}, nil
}

// Undo restores the previous history entry. It reports false when there is
// nothing to undo.
func (s *Session) Undo() bool {
	return s.step(s.history.Undo)
}

// Redo re-applies the next history entry.
func (s *Session) Redo() bool {
	return s.step(s.history.Redo)
}

func (s *Session) step(move func() (history.Entry, bool)) bool {
	s.mu.Lock()
	e, ok := move()
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.doc, s.sel, s.mode = e.Doc, e.Sel, e.Mode
	out := []pending{s.changed(e.Kind)}
	s.mu.Unlock()

	s.emit(out)
	return true
}

// Save writes the current document to the slot. The document is captured
// under the lock and encoded outside it, so editing can continue.
func (s *Session) Save(ctx context.Context) error {
	if s.adapter == nil {
		return ErrNoStorage
	}
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()

	if err := s.adapter.Save(ctx, doc); err != nil {
		logger.Errorf("Session: save failed: %v", err)
		s.events.Dispatch(event.TypeSaveFailed, event.SaveFailedData{Slot: s.adapter.Slot, Err: err})
		return err
	}

	s.mu.Lock()
	s.saved = doc
	s.mu.Unlock()
	logger.Infof("Session: saved slot %s", s.adapter.Slot)
	s.events.Dispatch(event.TypeDocumentSaved, event.DocumentSavedData{Slot: s.adapter.Slot})
	return nil
}

// Load replaces the session with the slot's document and clears history.
// On failure the session holds the empty document and the error is
// returned.
func (s *Session) Load(ctx context.Context) error {
	if s.adapter == nil {
		return ErrNoStorage
	}
	doc, err := s.adapter.Load(ctx)
	if err != nil {
		logger.Warnf("Session: load failed, starting empty: %v", err)
	}

	s.mu.Lock()
	s.reset(doc)
	s.saved = doc
	out := []pending{
		{event.TypeDocumentLoaded, event.DocumentLoadedData{Slot: s.adapter.Slot, Err: err}},
		s.changed(history.KindStructural),
	}
	s.mu.Unlock()

	s.emit(out)
	return err
}

// Snapshot returns the current state.
func (s *Session) Snapshot() transform.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// SelectedText returns the selected text, or the whole caret block when
// the selection is collapsed.
func (s *Session) SelectedText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, _, err := s.doc.BlockByKey(s.sel.BlockKey)
	if err != nil {
		return ""
	}
	if s.sel.IsCollapsed() {
		return b.Text
	}
	return string([]rune(b.Text)[s.sel.Start():s.sel.End()])
}

// Modified reports whether the document differs from the last one saved
// or loaded. Documents are immutable, so identity is enough.
func (s *Session) Modified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc != s.saved
}

// CanUndo reports whether Undo would succeed.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether Redo would succeed.
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// Slot returns the persistence slot name, or "" without storage.
func (s *Session) Slot() string {
	if s.adapter == nil {
		return ""
	}
	return s.adapter.Slot
}

// Events returns the session's event bus.
func (s *Session) Events() *event.Manager { return s.events }
