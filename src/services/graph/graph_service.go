package graph

import (
	"context"
	"fmt"
	"log/slog"

	"debategraph/src/domain"
	"debategraph/src/domain/schema"
)

// EventLog é o contrato do Event Log Store consumido pelo materializador.
// Implementado pelo repositório Postgres (com ou sem cache) e pela versão
// em memória dos testes.
type EventLog interface {
	Append(ctx context.Context, event domain.EntityEvent) (domain.EntityEvent, error)
	List(ctx context.Context, filter domain.EventFilter) ([]domain.EntityEvent, error)
}

// Publisher é o fan-out best-effort de eventos apendados. Nunca falha a
// operação primária.
type Publisher interface {
	PublishEntityEvent(ctx context.Context, event domain.EntityEvent)
}

// GraphService materializa o estado corrente do grafo a partir do log
// append-only e executa as escritas como appends validados.
type GraphService struct {
	logger    *slog.Logger
	log       EventLog
	source    schema.ConfigSource
	sinks     []domain.GraphSink
	publisher Publisher
}

func NewGraphService(
	logger *slog.Logger,
	log EventLog,
	source schema.ConfigSource,
	sinks []domain.GraphSink,
	publisher Publisher,
) *GraphService {
	return &GraphService{
		logger:    logger,
		log:       log,
		source:    source,
		sinks:     sinks,
		publisher: publisher,
	}
}

// registry carrega a configuração fresca; nunca cacheada entre chamadas.
func (s *GraphService) registry() (*schema.Registry, error) {
	cfg, err := s.source.Load()
	if err != nil {
		return nil, fmt.Errorf("GraphService.registry - failed to load type config: %w", err)
	}
	return schema.NewRegistry(cfg), nil
}

// CurrentGraph faz o fold completo do log até o estado corrente.
func (s *GraphService) CurrentGraph(ctx context.Context) (*domain.Graph, error) {
	events, err := s.log.List(ctx, domain.EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("GraphService.CurrentGraph - failed to list events: %w", err)
	}

	reg, err := s.registry()
	if err != nil {
		return nil, fmt.Errorf("GraphService.CurrentGraph - %w", err)
	}

	return Materialize(events, reg, s.logger), nil
}

// RevertTo restauraria o grafo a um instante arbitrário do histórico.
// Explicitamente não implementado; nunca um no-op silencioso.
func (s *GraphService) RevertTo(_ context.Context, _ string) error {
	return fmt.Errorf("GraphService.RevertTo - point-in-time revert: %w", domain.ErrNotImplemented)
}

// fanOutEvent entrega o evento apendado aos espelhos e ao publisher.
// Falhas viram warnings: o log é a fonte de verdade, o resto é best-effort.
func (s *GraphService) fanOutEvent(ctx context.Context, event domain.EntityEvent, apply func(domain.GraphSink) error) {
	for _, sink := range s.sinks {
		if err := apply(sink); err != nil {
			s.logger.Warn("GraphService - mirror write failed",
				"event_id", event.ID, "state", event.State, "kind", event.Kind, "error", err)
		}
	}

	if s.publisher != nil {
		s.publisher.PublishEntityEvent(ctx, event)
	}
}
