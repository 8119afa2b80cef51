package server

import (
	"encoding/json"
	"net/http"
	"time"

	"debategraph/src/domain"
)

type promoteRequest struct {
	Force bool `json:"force"`
}

type snapshotDTO struct {
	ID          int64     `json:"id"`
	Version     string    `json:"version"`
	Fingerprint string    `json:"fingerprint"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
}

func (s *Server) GetActiveSchema(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, domain.OpRead); !ok {
		return
	}

	snapshot, err := s.schemaService.ActiveSnapshot(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, struct {
		snapshotDTO
		Config json.RawMessage `json:"config"`
	}{
		snapshotDTO: snapshotDTO{
			ID:          snapshot.ID,
			Version:     snapshot.Version,
			Fingerprint: snapshot.Fingerprint,
			Active:      snapshot.Active,
			CreatedAt:   snapshot.CreatedAt,
			CreatedBy:   snapshot.CreatedBy,
		},
		Config: json.RawMessage(snapshot.Config),
	})
}

func (s *Server) GetSchemaChanges(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, domain.OpRead); !ok {
		return
	}

	report, err := s.schemaService.CheckForChanges(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) PromoteSchema(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authorize(w, r, domain.OpEdit)
	if !ok {
		return
	}

	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	snapshot, err := s.schemaService.Promote(r.Context(), username, req.Force)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, snapshotDTO{
		ID:          snapshot.ID,
		Version:     snapshot.Version,
		Fingerprint: snapshot.Fingerprint,
		Active:      snapshot.Active,
		CreatedAt:   snapshot.CreatedAt,
		CreatedBy:   snapshot.CreatedBy,
	})
}
