package server

import (
	"encoding/json"
	"net/http"

	"debategraph/src/domain"
)

type edgeRequest struct {
	Source     string            `json:"source,omitempty"`
	Target     string            `json:"target,omitempty"`
	Type       string            `json:"type,omitempty"`
	Properties domain.Properties `json:"properties,omitempty"`
}

// edgeKeyFromPath monta o triplo identidade a partir dos segmentos da rota.
func edgeKeyFromPath(r *http.Request) domain.EdgeKey {
	return domain.EdgeKey{
		Source: r.PathValue("source"),
		Target: r.PathValue("target"),
		Type:   r.PathValue("type"),
	}
}

func (s *Server) GetEdge(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, domain.OpRead); !ok {
		return
	}

	edge, err := s.graphService.GetEdge(r.Context(), edgeKeyFromPath(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, MapEdgeToResponse(edge))
}

func (s *Server) CreateEdge(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authorize(w, r, domain.OpCreate)
	if !ok {
		return
	}

	var req edgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	edge := domain.Edge{
		Source:     req.Source,
		Target:     req.Target,
		Type:       req.Type,
		Properties: req.Properties,
	}
	created, err := s.graphService.CreateEdge(r.Context(), edge, username)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, MapEdgeToResponse(created))
}

func (s *Server) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authorize(w, r, domain.OpEdit)
	if !ok {
		return
	}

	var req edgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	key := edgeKeyFromPath(r)
	edge := domain.Edge{
		Source:     key.Source,
		Target:     key.Target,
		Type:       key.Type,
		Properties: req.Properties,
	}
	updated, err := s.graphService.UpdateEdge(r.Context(), edge, username)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, MapEdgeToResponse(updated))
}

func (s *Server) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authorize(w, r, domain.OpDelete)
	if !ok {
		return
	}

	if err := s.graphService.DeleteEdge(r.Context(), edgeKeyFromPath(r), username); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) GetEdgeHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, domain.OpRead); !ok {
		return
	}

	events, err := s.graphService.GetEdgeHistory(r.Context(), edgeKeyFromPath(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, MapEventsToResponse(events))
}
