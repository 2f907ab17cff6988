package persist

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slotHandler is a minimal slot server backed by a MemoryStore.
func slotHandler(store *MemoryStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slot := strings.TrimPrefix(r.URL.Path, "/slots/")
		switch r.Method {
		case http.MethodGet:
			content, err := store.Get(r.Context(), slot)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			io.WriteString(w, content)
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			if err := store.Put(r.Context(), slot, string(body)); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			if err := store.Delete(r.Context(), slot); err != nil {
				http.NotFound(w, r)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}
	})
}

func TestStores(t *testing.T) {
	srv := httptest.NewServer(slotHandler(NewMemoryStore()))
	defer srv.Close()

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "slots")),
		"http":   NewHTTPStore(srv.URL+"/", srv.Client()),
	}
	ctx := context.Background()
	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "doc")
			assert.ErrorIs(t, err, ErrSlotNotFound)

			require.NoError(t, s.Put(ctx, "doc", "<p>one</p>"))
			require.NoError(t, s.Put(ctx, "doc", "<p>two</p>"))
			got, err := s.Get(ctx, "doc")
			require.NoError(t, err)
			assert.Equal(t, "<p>two</p>", got)

			require.NoError(t, s.Delete(ctx, "doc"))
			_, err = s.Get(ctx, "doc")
			assert.ErrorIs(t, err, ErrSlotNotFound)
			assert.ErrorIs(t, s.Delete(ctx, "doc"), ErrSlotNotFound)

			assert.ErrorIs(t, s.Put(ctx, "../escape", "x"), ErrInvalidSlot)
		})
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	require.NoError(t, s.Put(context.Background(), DefaultSlot, "content"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, DefaultSlot, entries[0].Name())
}

func TestValidateSlot(t *testing.T) {
	for _, ok := range []string{"document-content", "a", "notes.v2", "A_b"} {
		assert.NoError(t, ValidateSlot(ok), ok)
	}
	for _, bad := range []string{"", ".", "..", "a/b", ".hidden", "with space"} {
		assert.ErrorIs(t, ValidateSlot(bad), ErrInvalidSlot, bad)
	}
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingStore) Put(context.Context, string, string) error   { return f.err }
func (f failingStore) Delete(context.Context, string) error        { return f.err }

func TestAdapterSaveLoad(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter(HTMLCodec{}, NewMemoryStore(), "")
	assert.Equal(t, DefaultSlot, a.Slot)

	doc, err := a.Load(ctx)
	require.NoError(t, err)
	assert.True(t, document.Equivalent(document.Empty(), doc))

	want := document.FromText("hello\nworld")
	require.NoError(t, a.Save(ctx, want))
	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.True(t, document.Equivalent(want, got))
}

func TestAdapterLoadFailureFallsBackToEmpty(t *testing.T) {
	boom := errors.New("storage offline")
	a := NewAdapter(HTMLCodec{}, failingStore{err: boom}, "slot")

	doc, err := a.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, doc)
	assert.True(t, document.Equivalent(document.Empty(), doc))
}

func TestAdapterSaveSurfacesErrors(t *testing.T) {
	boom := errors.New("disk full")
	a := NewAdapter(MarkdownCodec{}, failingStore{err: boom}, "slot")
	assert.ErrorIs(t, a.Save(context.Background(), document.Empty()), boom)
}

func TestAdapterRejectsOversizedDocument(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := NewAdapter(HTMLCodec{}, store, "big")

	doc, err := document.New(document.Block{Key: "k", Text: strings.Repeat("a", MaxSlotSize)})
	require.NoError(t, err)
	err = a.Save(ctx, doc)
	assert.ErrorIs(t, err, ErrSlotTooLarge)

	_, err = store.Get(ctx, "big")
	assert.ErrorIs(t, err, ErrSlotNotFound)

	small, err := document.New(document.Block{Key: "k", Text: "fits"})
	require.NoError(t, err)
	assert.NoError(t, a.Save(ctx, small))
}
