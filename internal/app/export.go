package app

import (
	"context"
	"fmt"
	"io"

	"github.com/bethropolis/tidemark/internal/config"
	"github.com/bethropolis/tidemark/internal/persist"
)

// Export loads the configured slot and writes it to w in format ("md",
// "markdown" or "html").
func Export(ctx context.Context, cfg *config.Config, format string, w io.Writer) error {
	out, err := persist.CodecFor(format)
	if err != nil {
		return err
	}
	adapter, closeStore, err := NewAdapter(ctx, cfg.Storage)
	defer closeStore()
	if err != nil {
		return err
	}

	doc, err := adapter.Load(ctx)
	if err != nil {
		return fmt.Errorf("load slot %s: %w", adapter.Slot, err)
	}
	text, err := out.Encode(doc)
	if err != nil {
		return fmt.Errorf("encode as %s: %w", out.Name(), err)
	}
	_, err = io.WriteString(w, text)
	return err
}
