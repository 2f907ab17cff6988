// Package plugintest provides an in-memory plugin.EditorAPI backed by a real
// session, for plugin tests.
package plugintest

import (
	"context"
	"fmt"
	"sync"

	"github.com/bethropolis/tidemark/internal/event"
	"github.com/bethropolis/tidemark/internal/persist"
	"github.com/bethropolis/tidemark/internal/plugin"
	"github.com/bethropolis/tidemark/internal/session"
	"github.com/bethropolis/tidemark/internal/transform"
)

var _ plugin.EditorAPI = (*API)(nil)

// API records commands, status messages and saves.
type API struct {
	Session *session.Session
	Store   *persist.MemoryStore
	Config  map[string]map[string]interface{}

	mu       sync.Mutex
	commands map[string]plugin.CommandFunc
	messages []string
	saves    int
}

// New returns an API over a fresh session saving to an in-memory store.
func New() *API {
	store := persist.NewMemoryStore()
	return &API{
		Session:  session.New(persist.NewAdapter(persist.HTMLCodec{}, store, "")),
		Store:    store,
		Config:   make(map[string]map[string]interface{}),
		commands: make(map[string]plugin.CommandFunc),
	}
}

func (a *API) Snapshot() transform.State { return a.Session.Snapshot() }
func (a *API) IsModified() bool          { return a.Session.Modified() }
func (a *API) Slot() string              { return a.Session.Slot() }

func (a *API) Save(ctx context.Context) error {
	a.mu.Lock()
	a.saves++
	a.mu.Unlock()
	return a.Session.Save(ctx)
}

func (a *API) DispatchEvent(eventType event.Type, data interface{}) {
	a.Session.Events().Dispatch(eventType, data)
}

func (a *API) SubscribeEvent(eventType event.Type, handler event.Handler) {
	a.Session.Events().Subscribe(eventType, handler)
}

func (a *API) RegisterCommand(name string, cmdFunc plugin.CommandFunc) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.commands[name]; exists {
		return fmt.Errorf("command %q already registered", name)
	}
	a.commands[name] = cmdFunc
	return nil
}

func (a *API) SetStatusMessage(format string, args ...interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, fmt.Sprintf(format, args...))
}

func (a *API) GetPluginConfigValue(pluginName, key string) (interface{}, bool) {
	v, ok := a.Config[pluginName][key]
	return v, ok
}

// Run executes a registered command.
func (a *API) Run(name string, args ...string) error {
	a.mu.Lock()
	cmd, ok := a.commands[name]
	a.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	return cmd(args)
}

// Messages returns the status messages set so far.
func (a *API) Messages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.messages...)
}

// Saves returns how many times Save was called.
func (a *API) Saves() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saves
}
