package persist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MaxSlotSize bounds the content accepted for one slot.
const MaxSlotSize = 1 << 20

// HTTPStore talks to a slot server (see internal/server).
type HTTPStore struct {
	base   string
	client *http.Client
}

// NewHTTPStore returns a store for the server at baseURL. A nil client
// gets one with a 10 second timeout.
func NewHTTPStore(baseURL string, client *http.Client) *HTTPStore {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPStore{base: strings.TrimRight(baseURL, "/"), client: client}
}

func (h *HTTPStore) url(slot string) (string, error) {
	if err := ValidateSlot(slot); err != nil {
		return "", err
	}
	return h.base + "/slots/" + url.PathEscape(slot), nil
}

func (h *HTTPStore) do(ctx context.Context, method, slot string, body io.Reader) (*http.Response, error) {
	u, err := h.url(slot)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
	}
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s: %s: %s", method, u, resp.Status, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

func (h *HTTPStore) Get(ctx context.Context, slot string) (string, error) {
	resp, err := h.do(ctx, http.MethodGet, slot, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxSlotSize+1))
	if err != nil {
		return "", fmt.Errorf("read slot %s: %w", slot, err)
	}
	if len(data) > MaxSlotSize {
		return "", fmt.Errorf("slot %s exceeds %d bytes", slot, MaxSlotSize)
	}
	return string(data), nil
}

func (h *HTTPStore) Put(ctx context.Context, slot, content string) error {
	resp, err := h.do(ctx, http.MethodPut, slot, strings.NewReader(content))
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (h *HTTPStore) Delete(ctx context.Context, slot string) error {
	resp, err := h.do(ctx, http.MethodDelete, slot, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
