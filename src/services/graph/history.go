package graph

import (
	"context"
	"fmt"

	"debategraph/src/domain"
)

// GetNodeHistory retorna todos os eventos do nó em ordem cronológica,
// deleções incluídas, para exibição de auditoria.
func (s *GraphService) GetNodeHistory(ctx context.Context, id string) ([]domain.EntityEvent, error) {
	events, err := s.log.List(ctx, domain.EventFilter{NodeID: &id})
	if err != nil {
		return nil, fmt.Errorf("GraphService.GetNodeHistory - failed to list events: %w", err)
	}

	if len(events) == 0 {
		return nil, fmt.Errorf("GraphService.GetNodeHistory - node %s: %w", id, domain.ErrEntityNotFound)
	}

	return events, nil
}

// GetEdgeHistory é o equivalente para uma chave de aresta.
func (s *GraphService) GetEdgeHistory(ctx context.Context, key domain.EdgeKey) ([]domain.EntityEvent, error) {
	events, err := s.log.List(ctx, domain.EventFilter{Edge: &key})
	if err != nil {
		return nil, fmt.Errorf("GraphService.GetEdgeHistory - failed to list events: %w", err)
	}

	if len(events) == 0 {
		return nil, fmt.Errorf("GraphService.GetEdgeHistory - edge %s: %w", key, domain.ErrEntityNotFound)
	}

	return events, nil
}
