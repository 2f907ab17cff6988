package app

import (
	"context"

	"github.com/bethropolis/tidemark/internal/config"
	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/bethropolis/tidemark/internal/server"
)

// Serve runs the slot server over the configured store until ctx is
// cancelled. The http backend is refused since it would serve itself.
func Serve(ctx context.Context, cfg *config.Config) error {
	storageCfg := cfg.Storage
	if storageCfg.Backend == config.BackendHTTP {
		logger.Warnf("App: the slot server cannot use http storage, using file storage")
		storageCfg.Backend = config.BackendFile
	}
	store, closeStore, err := OpenStore(ctx, storageCfg)
	defer closeStore()
	if err != nil {
		return err
	}
	return server.New(store, nil, logger.Get()).ListenAndServe(ctx, cfg.Server.Addr)
}
