package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bethropolis/tidemark/internal/event"
	"github.com/bethropolis/tidemark/internal/persist"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleGetSlot(w http.ResponseWriter, r *http.Request) {
	slot := slotFrom(r)
	content, err := s.store.Get(r.Context(), slot)
	if err != nil {
		s.storeError(w, "get", slot, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, content)
}

func (s *Server) handlePutSlot(w http.ResponseWriter, r *http.Request) {
	slot := slotFrom(r)
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, persist.MaxSlotSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "slot content too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "failed to read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	content := string(body)
	if err := s.store.Put(r.Context(), slot, content); err != nil {
		s.storeError(w, "put", slot, err)
		return
	}
	s.events.Dispatch(event.TypeSlotUpdated, event.SlotUpdatedData{Slot: slot, Content: content})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSlot(w http.ResponseWriter, r *http.Request) {
	slot := slotFrom(r)
	if err := s.store.Delete(r.Context(), slot); err != nil {
		s.storeError(w, "delete", slot, err)
		return
	}
	s.events.Dispatch(event.TypeSlotUpdated, event.SlotUpdatedData{Slot: slot, Deleted: true})
	w.WriteHeader(http.StatusNoContent)
}

// storeError maps store errors onto status codes.
func (s *Server) storeError(w http.ResponseWriter, op, slot string, err error) {
	switch {
	case errors.Is(err, persist.ErrSlotNotFound):
		jsonError(w, "slot not found", http.StatusNotFound)
	case errors.Is(err, persist.ErrInvalidSlot):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("store failed", "op", op, "slot", slot, "error", err)
		jsonError(w, "store failed", http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
