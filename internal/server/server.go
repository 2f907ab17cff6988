// Package server exposes a persist.Store over HTTP so several editors can
// share slots. Watchers get every update over a websocket.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bethropolis/tidemark/internal/event"
	"github.com/bethropolis/tidemark/internal/persist"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 5 * time.Second

// Server is the slot HTTP server.
type Server struct {
	router chi.Router
	store  persist.Store
	events *event.Manager
	hub    *Hub
	log    *slog.Logger
}

// New creates a server over store. Slot writes are dispatched on events as
// TypeSlotUpdated; a nil events gets a private bus.
func New(store persist.Store, events *event.Manager, log *slog.Logger) *Server {
	if events == nil {
		events = event.NewManager()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		store:  store,
		events: events,
		hub:    NewHub(store, log),
		log:    log,
	}
	events.Subscribe(event.TypeSlotUpdated, s.hub.handleSlotUpdated)
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Hub returns the watcher hub. It must be running for watch requests to
// be served.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/slots/{slot}", func(r chi.Router) {
		r.Use(slotCtx)
		r.Get("/", s.handleGetSlot)
		r.Put("/", s.handlePutSlot)
		r.Delete("/", s.handleDeleteSlot)
		r.Get("/watch", s.handleWatch)
	})

	s.router = r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and stops the hub.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("slot server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("slot server stopped")
	return nil
}
