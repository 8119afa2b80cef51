package server

import (
	"encoding/json"
	"net/http"

	"debategraph/src/domain"
)

type ratingRequest struct {
	Kind     string  `json:"kind"`
	NodeID   *string `json:"node_id,omitempty"`
	SourceID *string `json:"source_id,omitempty"`
	TargetID *string `json:"target_id,omitempty"`
	EdgeType *string `json:"edge_type,omitempty"`
	Poll     string  `json:"poll"`
	Value    string  `json:"value"`
}

func (s *Server) LogRating(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authorize(w, r, domain.OpRate)
	if !ok {
		return
	}

	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rating := domain.RatingEvent{
		Kind:     domain.EntityKind(req.Kind),
		NodeID:   req.NodeID,
		SourceID: req.SourceID,
		TargetID: req.TargetID,
		EdgeType: req.EdgeType,
		Poll:     req.Poll,
		Value:    req.Value,
		Username: username,
	}
	appended, err := s.ratingService.LogRating(r.Context(), rating)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, MapRatingsToResponse([]domain.RatingEvent{appended})[0])
}

func (s *Server) GetNodeRatings(w http.ResponseWriter, r *http.Request) {
	s.getRatings(w, r, domain.NodeRef(r.PathValue("id")))
}

func (s *Server) GetEdgeRatings(w http.ResponseWriter, r *http.Request) {
	s.getRatings(w, r, domain.EdgeRef(edgeKeyFromPath(r)))
}

func (s *Server) GetNodeMedian(w http.ResponseWriter, r *http.Request) {
	s.getMedian(w, r, domain.NodeRef(r.PathValue("id")))
}

func (s *Server) GetEdgeMedian(w http.ResponseWriter, r *http.Request) {
	s.getMedian(w, r, domain.EdgeRef(edgeKeyFromPath(r)))
}

// getRatings responde os últimos ratings por usuário. Com ?username= a
// resposta vira a opinião individual (lista vazia se nunca avaliou).
func (s *Server) getRatings(w http.ResponseWriter, r *http.Request, ref domain.EntityRef) {
	if _, ok := s.authorize(w, r, domain.OpRead); !ok {
		return
	}

	poll := r.PathValue("poll")

	if username := r.URL.Query().Get("username"); username != "" {
		latest, err := s.ratingService.LatestRating(r.Context(), ref, poll, username)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if latest == nil {
			s.respondJSON(w, http.StatusOK, []RatingDTO{})
			return
		}
		s.respondJSON(w, http.StatusOK, MapRatingsToResponse([]domain.RatingEvent{*latest}))
		return
	}

	latest, err := s.ratingService.AllLatestRatings(r.Context(), ref, poll)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, MapRatingsToResponse(latest))
}

func (s *Server) getMedian(w http.ResponseWriter, r *http.Request, ref domain.EntityRef) {
	if _, ok := s.authorize(w, r, domain.OpRead); !ok {
		return
	}

	poll := r.PathValue("poll")

	latest, err := s.ratingService.AllLatestRatings(r.Context(), ref, poll)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	median, err := s.ratingService.MedianRating(r.Context(), ref, poll)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, MedianDTO{Poll: poll, Median: median, Raters: len(latest)})
}
