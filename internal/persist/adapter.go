package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/logger"
)

// Adapter saves and loads one document slot through a codec.
type Adapter struct {
	Codec Codec
	Store Store
	Slot  string
}

// NewAdapter returns an adapter for slot, defaulting to DefaultSlot.
func NewAdapter(codec Codec, store Store, slot string) *Adapter {
	if slot == "" {
		slot = DefaultSlot
	}
	return &Adapter{Codec: codec, Store: store, Slot: slot}
}

// Save encodes doc and writes it to the slot. Errors are returned to the
// caller unchanged in kind; nothing is retried.
func (a *Adapter) Save(ctx context.Context, doc *document.Document) error {
	content, err := a.Codec.Encode(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", a.Codec.Name(), err)
	}
	if len(content) > MaxSlotSize {
		return fmt.Errorf("save slot %s: %w (%d bytes, limit %d)", a.Slot, ErrSlotTooLarge, len(content), MaxSlotSize)
	}
	if err := a.Store.Put(ctx, a.Slot, content); err != nil {
		return fmt.Errorf("save slot %s: %w", a.Slot, err)
	}
	logger.DebugTagf("persist", "Adapter: saved %d blocks to %s (%d bytes)", doc.Len(), a.Slot, len(content))
	return nil
}

// Load reads the slot. A slot that does not exist yet yields the empty
// document and no error. On any other failure the empty document is
// returned together with the error.
func (a *Adapter) Load(ctx context.Context) (*document.Document, error) {
	content, err := a.Store.Get(ctx, a.Slot)
	if errors.Is(err, ErrSlotNotFound) {
		logger.DebugTagf("persist", "Adapter: slot %s is empty", a.Slot)
		return document.Empty(), nil
	}
	if err != nil {
		return document.Empty(), fmt.Errorf("load slot %s: %w", a.Slot, err)
	}
	doc, err := a.Codec.Decode(content)
	if err != nil {
		logger.Warnf("Adapter: slot %s holds malformed %s content: %v", a.Slot, a.Codec.Name(), err)
		return document.Empty(), fmt.Errorf("load slot %s: %w", a.Slot, err)
	}
	logger.DebugTagf("persist", "Adapter: loaded %d blocks from %s", doc.Len(), a.Slot)
	return doc, nil
}
