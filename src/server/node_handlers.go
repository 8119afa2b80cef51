package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"debategraph/src/domain"
	"debategraph/src/services/graph"
)

type nodeRequest struct {
	ID         string            `json:"id,omitempty"`
	Type       string            `json:"type,omitempty"`
	Properties domain.Properties `json:"properties,omitempty"`
}

func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, domain.OpRead); !ok {
		return
	}

	node, err := s.graphService.GetNode(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, MapNodeToResponse(node))
}

func (s *Server) CreateNode(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authorize(w, r, domain.OpCreate)
	if !ok {
		return
	}

	var req nodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	node := domain.Node{ID: req.ID, Type: req.Type, Properties: req.Properties}
	created, err := s.graphService.CreateNode(r.Context(), node, username)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, MapNodeToResponse(created))
}

func (s *Server) UpdateNode(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authorize(w, r, domain.OpEdit)
	if !ok {
		return
	}

	var req nodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	node := domain.Node{ID: r.PathValue("id"), Type: req.Type, Properties: req.Properties}
	updated, err := s.graphService.UpdateNode(r.Context(), node, username)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, MapNodeToResponse(updated))
}

func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authorize(w, r, domain.OpDelete)
	if !ok {
		return
	}

	if err := s.graphService.DeleteNode(r.Context(), r.PathValue("id"), username); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) GetNodeHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, domain.OpRead); !ok {
		return
	}

	events, err := s.graphService.GetNodeHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, MapEventsToResponse(events))
}

func (s *Server) SearchNodes(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, domain.OpRead); !ok {
		return
	}

	query := r.URL.Query()
	search := graph.NodeSearch{
		Title:       query.Get("title"),
		Scope:       query.Get("scope"),
		Description: query.Get("description"),
		Tags:        splitMulti(query.Get("tags")),
		Types:       splitMulti(query.Get("type")),
		Statuses:    splitMulti(query.Get("status")),
	}

	nodes, err := s.graphService.SearchNodes(r.Context(), search)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	out := make([]NodeDTO, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, MapNodeToResponse(node))
	}

	s.respondJSON(w, http.StatusOK, out)
}

func splitMulti(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
