package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"debategraph/src/domain"
)

func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, domain.OpRead); !ok {
		return
	}

	g, err := s.graphService.CurrentGraph(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, MapGraphToResponse(g))
}

func (s *Server) GetSubgraph(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, domain.OpRead); !ok {
		return
	}

	levels := 1
	if raw := r.URL.Query().Get("levels"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.respondError(w, r, fmt.Errorf("levels must be a non-negative integer: %w", domain.ErrValidation))
			return
		}
		levels = parsed
	}

	g, err := s.graphService.InducedSubgraph(r.Context(), r.PathValue("id"), levels)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, MapGraphToResponse(g))
}

type revertRequest struct {
	EventID string `json:"event_id"`
}

func (s *Server) RevertGraph(w http.ResponseWriter, r *http.Request) {
	_, ok := s.authorize(w, r, domain.OpEdit)
	if !ok {
		return
	}

	var req revertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.graphService.RevertTo(r.Context(), req.EventID); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
