package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bethropolis/tidemark/internal/event"
	"github.com/bethropolis/tidemark/internal/persist"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server, *event.Manager) {
	t.Helper()
	events := event.NewManager()
	srv := New(persist.NewMemoryStore(), events, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go srv.Hub().Run(ctx)
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return srv, ts, events
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestHealth(t *testing.T) {
	_, ts, _ := newTestServer(t)
	resp, body := do(t, http.MethodGet, ts.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestSlotLifecycle(t *testing.T) {
	_, ts, events := newTestServer(t)
	var mu sync.Mutex
	var updates []event.SlotUpdatedData
	events.Subscribe(event.TypeSlotUpdated, func(e event.Event) bool {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, e.Data.(event.SlotUpdatedData))
		return false
	})
	url := ts.URL + "/slots/notes"

	resp, _ := do(t, http.MethodGet, url, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodPut, url, "<h1>Hi</h1>")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := do(t, http.MethodGet, url, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<h1>Hi</h1>", body)

	resp, _ = do(t, http.MethodDelete, url, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, http.MethodDelete, url, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []event.SlotUpdatedData{
		{Slot: "notes", Content: "<h1>Hi</h1>"},
		{Slot: "notes", Deleted: true},
	}, updates)
}

func TestRejectsBadRequests(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, _ := do(t, http.MethodGet, ts.URL+"/slots/-bad", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	big := strings.Repeat("x", persist.MaxSlotSize+1)
	resp, _ = do(t, http.MethodPut, ts.URL+"/slots/notes", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestHTTPStoreAgainstServer(t *testing.T) {
	_, ts, _ := newTestServer(t)
	ctx := context.Background()
	store := persist.NewHTTPStore(ts.URL, ts.Client())

	_, err := store.Get(ctx, "doc")
	assert.ErrorIs(t, err, persist.ErrSlotNotFound)

	require.NoError(t, store.Put(ctx, "doc", "body"))
	got, err := store.Get(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "body", got)

	require.NoError(t, store.Delete(ctx, "doc"))
	_, err = store.Get(ctx, "doc")
	assert.ErrorIs(t, err, persist.ErrSlotNotFound)
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWatchStreamsUpdates(t *testing.T) {
	srv, ts, _ := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/slots/notes/watch"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readMessage(t, conn)
	assert.Equal(t, Message{Slot: "notes"}, first)
	assert.Equal(t, 1, srv.Hub().Watchers("notes"))

	resp, _ := do(t, http.MethodPut, ts.URL+"/slots/notes", "hello")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, Message{Slot: "notes", Version: 1, Exists: true, Content: "hello"}, readMessage(t, conn))

	// Other slots are not delivered.
	do(t, http.MethodPut, ts.URL+"/slots/other", "x")
	do(t, http.MethodDelete, ts.URL+"/slots/notes", "")
	assert.Equal(t, Message{Slot: "notes", Version: 2}, readMessage(t, conn))

	conn.Close()
	assert.Eventually(t, func() bool { return srv.Hub().Watchers("notes") == 0 }, 2*time.Second, 10*time.Millisecond)
}

// gatedStore blocks reads of one slot until release is closed.
type gatedStore struct {
	*persist.MemoryStore
	slot    string
	release chan struct{}
}

func (g *gatedStore) Get(ctx context.Context, slot string) (string, error) {
	if slot == g.slot {
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return g.MemoryStore.Get(ctx, slot)
}

func recv(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case payload := <-c.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(payload, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message for " + c.Slot)
		return Message{}
	}
}

func TestSlowInitialReadDoesNotBlockHub(t *testing.T) {
	store := &gatedStore{MemoryStore: persist.NewMemoryStore(), slot: "slow", release: make(chan struct{})}
	require.NoError(t, store.Put(context.Background(), "slow", "before"))
	hub := NewHub(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	slow := &Client{ID: "1", Slot: "slow", Send: make(chan []byte, sendBuffer)}
	fast := &Client{ID: "2", Slot: "fast", Send: make(chan []byte, sendBuffer)}
	require.True(t, hub.Register(slow))
	require.True(t, hub.Register(fast))
	assert.Equal(t, Message{Slot: "fast"}, recv(t, fast))

	// Held back until the initial content has gone out.
	hub.handleSlotUpdated(event.Event{Type: event.TypeSlotUpdated, Data: event.SlotUpdatedData{Slot: "slow", Content: "after"}})
	assert.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(slow.backlog) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, slow.Send)

	close(store.release)
	assert.Equal(t, Message{Slot: "slow", Exists: true, Content: "before"}, recv(t, slow))
	assert.Equal(t, Message{Slot: "slow", Version: 1, Exists: true, Content: "after"}, recv(t, slow))
}
