package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bethropolis/tidemark/internal/event"
	"github.com/bethropolis/tidemark/internal/persist"
	"github.com/gorilla/websocket"
)

const sendBuffer = 64

// Message is what watchers receive: the slot's full content after every
// change. Exists is false when the slot has no content.
type Message struct {
	Slot    string `json:"slot"`
	Version int64  `json:"version"`
	Exists  bool   `json:"exists"`
	Content string `json:"content"`
}

// Client is one websocket watching one slot.
type Client struct {
	ID   string
	Slot string
	Conn *websocket.Conn
	Send chan []byte

	// Updates published before the initial content arrives wait here.
	ready   bool
	backlog [][]byte
}

type initial struct {
	client  *Client
	payload []byte
}

// Hub fans slot updates out to watchers. Registrations, departures and
// updates are processed sequentially by Run. The initial store read runs
// outside Run; updates that arrive meanwhile are held back so each
// watcher sees the current content first and then every later update in
// order.
type Hub struct {
	store persist.Store
	log   *slog.Logger

	clients    map[string]map[string]*Client // slot -> client ID -> client
	versions   map[string]int64
	register   chan *Client
	unregister chan *Client
	broadcast  chan event.SlotUpdatedData
	loaded     chan initial
	done       chan struct{}
	stopOnce   sync.Once

	mu sync.RWMutex
}

// NewHub creates a hub reading initial content from store.
func NewHub(store persist.Store, log *slog.Logger) *Hub {
	return &Hub{
		store:      store,
		log:        log,
		clients:    make(map[string]map[string]*Client),
		versions:   make(map[string]int64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan event.SlotUpdatedData, sendBuffer),
		loaded:     make(chan initial),
		done:       make(chan struct{}),
	}
}

// Run processes hub traffic until ctx is cancelled, then closes every
// client's Send channel.
func (h *Hub) Run(ctx context.Context) {
	defer h.stop()
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.add(ctx, client)
		case client := <-h.unregister:
			h.remove(client)
		case update := <-h.broadcast:
			h.publish(update)
		case l := <-h.loaded:
			h.deliver(l)
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		defer h.mu.Unlock()
		for slot, clients := range h.clients {
			for _, c := range clients {
				close(c.Send)
			}
			delete(h.clients, slot)
		}
	})
}

// Register adds client. It reports false when the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client and closes its Send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Watchers returns the number of clients watching slot.
func (h *Hub) Watchers(slot string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[slot])
}

func (h *Hub) add(ctx context.Context, client *Client) {
	h.mu.Lock()
	if h.clients[client.Slot] == nil {
		h.clients[client.Slot] = make(map[string]*Client)
	}
	h.clients[client.Slot][client.ID] = client
	version := h.versions[client.Slot]
	h.mu.Unlock()

	h.log.Debug("watcher joined", "client", client.ID, "slot", client.Slot)
	go h.load(ctx, client, version)
}

// load reads the slot for a new watcher and hands the result back to Run.
func (h *Hub) load(ctx context.Context, client *Client, version int64) {
	getCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	content, err := h.store.Get(getCtx, client.Slot)
	cancel()
	if err != nil && !errors.Is(err, persist.ErrSlotNotFound) {
		h.log.Warn("watcher initial read failed", "slot", client.Slot, "error", err)
	}
	payload, _ := json.Marshal(Message{Slot: client.Slot, Version: version, Exists: err == nil, Content: content})
	select {
	case h.loaded <- initial{client: client, payload: payload}:
	case <-h.done:
	}
}

// deliver sends the initial content, then anything held back for it.
func (h *Hub) deliver(l initial) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client := l.client
	if _, ok := h.clients[client.Slot][client.ID]; !ok {
		return
	}
	client.ready = true
	h.send(client, l.payload)
	for _, payload := range client.backlog {
		h.send(client, payload)
	}
	client.backlog = nil
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.clients[client.Slot]; ok {
		if _, ok := clients[client.ID]; ok {
			delete(clients, client.ID)
			close(client.Send)
			h.log.Debug("watcher left", "client", client.ID, "slot", client.Slot)
		}
		if len(clients) == 0 {
			delete(h.clients, client.Slot)
		}
	}
}

func (h *Hub) publish(update event.SlotUpdatedData) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.versions[update.Slot]++
	payload, _ := json.Marshal(Message{
		Slot:    update.Slot,
		Version: h.versions[update.Slot],
		Exists:  !update.Deleted,
		Content: update.Content,
	})
	for _, client := range h.clients[update.Slot] {
		h.send(client, payload)
	}
}

// send queues payload for client, dropping clients that cannot keep up.
// Callers hold the write lock.
func (h *Hub) send(client *Client, payload []byte) {
	if _, ok := h.clients[client.Slot][client.ID]; !ok {
		return
	}
	if !client.ready {
		if len(client.backlog) < sendBuffer {
			client.backlog = append(client.backlog, payload)
			return
		}
		h.log.Warn("dropping slow watcher", "client", client.ID, "slot", client.Slot)
		close(client.Send)
		delete(h.clients[client.Slot], client.ID)
		return
	}
	select {
	case client.Send <- payload:
	default:
		h.log.Warn("dropping slow watcher", "client", client.ID, "slot", client.Slot)
		close(client.Send)
		delete(h.clients[client.Slot], client.ID)
	}
}

// handleSlotUpdated forwards slot writes to Run.
func (h *Hub) handleSlotUpdated(e event.Event) bool {
	data, ok := e.Data.(event.SlotUpdatedData)
	if !ok {
		return false
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	}
	return false
}
