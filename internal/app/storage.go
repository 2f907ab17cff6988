package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bethropolis/tidemark/internal/config"
	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/bethropolis/tidemark/internal/persist"
)

// dialTimeout bounds connecting to a remote store at startup.
const dialTimeout = 5 * time.Second

// OpenStore builds the store named by cfg.Backend. The returned close
// function releases connections and is never nil.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (persist.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case config.BackendMemory:
		return persist.NewMemoryStore(), noop, nil
	case config.BackendFile:
		if cfg.Dir == "" {
			return nil, noop, fmt.Errorf("file storage needs storage.dir")
		}
		logger.Debugf("App: file storage in %s", cfg.Dir)
		return persist.NewFileStore(cfg.Dir), noop, nil
	case config.BackendRedis:
		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()
		store, err := persist.DialRedis(dialCtx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, noop, err
		}
		logger.Debugf("App: redis storage at %s db %d", cfg.RedisAddr, cfg.RedisDB)
		return store, store.Close, nil
	case config.BackendHTTP:
		logger.Debugf("App: http storage at %s", cfg.HTTPURL)
		return persist.NewHTTPStore(cfg.HTTPURL, nil), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// NewAdapter opens the configured store and pairs it with the configured
// codec and slot.
func NewAdapter(ctx context.Context, cfg config.StorageConfig) (*persist.Adapter, func() error, error) {
	codec, err := persist.CodecFor(cfg.Format)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	store, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, closeStore, err
	}
	return persist.NewAdapter(codec, store, cfg.Slot), closeStore, nil
}
