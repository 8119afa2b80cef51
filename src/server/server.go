package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"debategraph/src/domain"
	"debategraph/src/services/graph"
	"debategraph/src/services/ratings"
	"debategraph/src/services/schemaver"
)

// Server representa o servidor HTTP da API
type Server struct {
	logger        *slog.Logger
	server        *http.Server
	mux           *http.ServeMux
	port          int
	graphService  *graph.GraphService
	ratingService *ratings.RatingService
	schemaService *schemaver.SchemaService
	permissions   domain.Permissions
}

// NewServer cria uma nova instância do servidor
func NewServer(
	logger *slog.Logger,
	port int,
	graphService *graph.GraphService,
	ratingService *ratings.RatingService,
	schemaService *schemaver.SchemaService,
	permissions domain.Permissions,
) *Server {
	server := &Server{
		mux:           http.NewServeMux(),
		port:          port,
		logger:        logger,
		graphService:  graphService,
		ratingService: ratingService,
		schemaService: schemaService,
		permissions:   permissions,
	}

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Rotas de Leitura
	server.mux.HandleFunc("GET /v1/graph", server.GetGraph)
	server.mux.HandleFunc("GET /v1/graph/subgraph/{id}", server.GetSubgraph)
	server.mux.HandleFunc("GET /v1/nodes/search", server.SearchNodes)
	server.mux.HandleFunc("GET /v1/nodes/{id}", server.GetNode)
	server.mux.HandleFunc("GET /v1/nodes/{id}/history", server.GetNodeHistory)
	server.mux.HandleFunc("GET /v1/edges/{source}/{target}/{type}", server.GetEdge)
	server.mux.HandleFunc("GET /v1/edges/{source}/{target}/{type}/history", server.GetEdgeHistory)

	// Rotas de Escrita
	server.mux.HandleFunc("POST /v1/nodes", server.CreateNode)
	server.mux.HandleFunc("PATCH /v1/nodes/{id}", server.UpdateNode)
	server.mux.HandleFunc("DELETE /v1/nodes/{id}", server.DeleteNode)
	server.mux.HandleFunc("POST /v1/edges", server.CreateEdge)
	server.mux.HandleFunc("PATCH /v1/edges/{source}/{target}/{type}", server.UpdateEdge)
	server.mux.HandleFunc("DELETE /v1/edges/{source}/{target}/{type}", server.DeleteEdge)
	server.mux.HandleFunc("POST /v1/graph/revert", server.RevertGraph)

	// Ratings
	server.mux.HandleFunc("POST /v1/ratings", server.LogRating)
	server.mux.HandleFunc("GET /v1/nodes/{id}/ratings/{poll}", server.GetNodeRatings)
	server.mux.HandleFunc("GET /v1/nodes/{id}/ratings/{poll}/median", server.GetNodeMedian)
	server.mux.HandleFunc("GET /v1/edges/{source}/{target}/{type}/ratings/{poll}", server.GetEdgeRatings)
	server.mux.HandleFunc("GET /v1/edges/{source}/{target}/{type}/ratings/{poll}/median", server.GetEdgeMedian)

	// Schema
	server.mux.HandleFunc("GET /v1/schema/active", server.GetActiveSchema)
	server.mux.HandleFunc("GET /v1/schema/changes", server.GetSchemaChanges)
	server.mux.HandleFunc("POST /v1/schema/promote", server.PromoteSchema)

	return server
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	s.logger.Info("Server started", "port", s.port)

	return s.server.ListenAndServe()
}

// Shutdown encerra o servidor HTTP de forma graciosa
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// identity extrai o username do header; reads não autenticados usam o
// sentinel anonymous.
func (s *Server) identity(r *http.Request) string {
	if username := r.Header.Get("X-Username"); username != "" {
		return username
	}
	return domain.AnonymousUser
}

// authorize consulta o oráculo de permissões. false é falha de
// autorização, nunca erro interno do core.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, op domain.Operation) (string, bool) {
	username := s.identity(r)
	if !s.permissions.Allows(op, username) {
		http.Error(w, "operation not allowed", http.StatusForbidden)
		return username, false
	}
	return username, true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("ERROR: Failed to write JSON response: %v", err)
	}
}

// respondError mapeia a taxonomia de erros do domínio para status HTTP.
// Erros de infraestrutura nunca viram resultado vazio.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEntityNotFound), errors.Is(err, domain.ErrSnapshotNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrSchemaConflict), errors.Is(err, domain.ErrNoSchemaChanges):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrNotImplemented):
		http.Error(w, err.Error(), http.StatusNotImplemented)
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		http.Error(w, domain.ErrUnavailableServer.Error(), http.StatusInternalServerError)
	}
}
