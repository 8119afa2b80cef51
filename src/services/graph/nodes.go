package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"debategraph/src/domain"
	"debategraph/src/domain/schema"
)

// Tentativas de alocação aleatória antes de desistir. Colisões de UUID são
// desprezíveis mas não zero; a verificação contra o estado corrente torna a
// propriedade de unicidade garantida, não probabilística.
const maxIDAllocationAttempts = 5

// GetNode retorna a visão materializada do último evento não-deletado do
// nó, ou ErrEntityNotFound.
func (s *GraphService) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	events, err := s.log.List(ctx, domain.EventFilter{NodeID: &id})
	if err != nil {
		return nil, fmt.Errorf("GraphService.GetNode - failed to list events: %w", err)
	}

	latest, ok := latestForNode(events)
	if !ok {
		return nil, fmt.Errorf("GraphService.GetNode - node %s: %w", id, domain.ErrEntityNotFound)
	}

	return &domain.Node{
		ID:         id,
		Type:       latest.Payload.TypeName(),
		Properties: latest.Payload,
		UpdatedAt:  latest.Timestamp,
		UpdatedBy:  latest.Username,
	}, nil
}

// CreateNode valida o payload contra o registry, aloca um identificador se
// ausente e apenda o evento created com o payload completo.
func (s *GraphService) CreateNode(ctx context.Context, node domain.Node, username string) (*domain.Node, error) {
	reg, err := s.registry()
	if err != nil {
		return nil, fmt.Errorf("GraphService.CreateNode - %w", err)
	}

	payload := node.Properties.Clone()
	if payload == nil {
		payload = domain.Properties{}
	}
	if node.Type != "" {
		payload[domain.PropType] = node.Type
	}

	if err := validateNodePayload(reg, payload); err != nil {
		return nil, fmt.Errorf("GraphService.CreateNode - %w", err)
	}

	if node.ID == "" {
		allocated, err := s.allocateNodeID(ctx)
		if err != nil {
			return nil, fmt.Errorf("GraphService.CreateNode - %w", err)
		}
		node.ID = allocated
	} else if _, err := s.GetNode(ctx, node.ID); err == nil {
		return nil, fmt.Errorf("GraphService.CreateNode - node %s already exists: %w", node.ID, domain.ErrValidation)
	}

	event := domain.EntityEvent{
		State:    domain.StateCreated,
		Kind:     domain.KindNode,
		NodeID:   &node.ID,
		Payload:  payload,
		Username: username,
	}

	appended, err := s.log.Append(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("GraphService.CreateNode - append failed: %w", err)
	}

	created := &domain.Node{
		ID:         node.ID,
		Type:       payload.TypeName(),
		Properties: payload,
		UpdatedAt:  appended.Timestamp,
		UpdatedBy:  username,
	}

	s.fanOutEvent(ctx, appended, func(sink domain.GraphSink) error {
		return sink.CreateNode(ctx, *created)
	})

	return created, nil
}

// UpdateNode aplica merge raso: campos do update vencem campo a campo,
// campos omitidos preservam o valor anterior. Updates parciais nunca
// regridem campos não mencionados.
func (s *GraphService) UpdateNode(ctx context.Context, node domain.Node, username string) (*domain.Node, error) {
	current, err := s.GetNode(ctx, node.ID)
	if err != nil {
		return nil, fmt.Errorf("GraphService.UpdateNode - %w", err)
	}

	merged := current.Properties.Clone()
	for k, v := range node.Properties {
		merged[k] = v
	}
	if node.Type != "" {
		merged[domain.PropType] = node.Type
	}

	reg, err := s.registry()
	if err != nil {
		return nil, fmt.Errorf("GraphService.UpdateNode - %w", err)
	}
	if err := validateNodePayload(reg, merged); err != nil {
		return nil, fmt.Errorf("GraphService.UpdateNode - %w", err)
	}

	event := domain.EntityEvent{
		State:    domain.StateUpdated,
		Kind:     domain.KindNode,
		NodeID:   &node.ID,
		Payload:  merged,
		Username: username,
	}

	appended, err := s.log.Append(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("GraphService.UpdateNode - append failed: %w", err)
	}

	updated := &domain.Node{
		ID:         node.ID,
		Type:       merged.TypeName(),
		Properties: merged,
		UpdatedAt:  appended.Timestamp,
		UpdatedBy:  username,
	}

	s.fanOutEvent(ctx, appended, func(sink domain.GraphSink) error {
		return sink.UpdateNode(ctx, *updated)
	})

	return updated, nil
}

// DeleteNode exige existência corrente e apenda um evento deleted com
// payload vazio.
func (s *GraphService) DeleteNode(ctx context.Context, id string, username string) error {
	if _, err := s.GetNode(ctx, id); err != nil {
		return fmt.Errorf("GraphService.DeleteNode - %w", err)
	}

	event := domain.EntityEvent{
		State:    domain.StateDeleted,
		Kind:     domain.KindNode,
		NodeID:   &id,
		Username: username,
	}

	appended, err := s.log.Append(ctx, event)
	if err != nil {
		return fmt.Errorf("GraphService.DeleteNode - append failed: %w", err)
	}

	s.fanOutEvent(ctx, appended, func(sink domain.GraphSink) error {
		return sink.DeleteNode(ctx, id)
	})

	return nil
}

func (s *GraphService) allocateNodeID(ctx context.Context) (string, error) {
	events, err := s.log.List(ctx, domain.EventFilter{})
	if err != nil {
		return "", fmt.Errorf("failed to list events for id allocation: %w", err)
	}
	latestNodes, _ := LatestPerKey(events)

	for attempt := 0; attempt < maxIDAllocationAttempts; attempt++ {
		candidate := uuid.NewString()
		if latest, ok := latestNodes[candidate]; !ok || latest.State == domain.StateDeleted {
			return candidate, nil
		}
		s.logger.Warn("GraphService.allocateNodeID - uuid collision, retrying", "attempt", attempt+1)
	}

	return "", fmt.Errorf("exhausted %d attempts to allocate a unique node id", maxIDAllocationAttempts)
}

func validateNodePayload(reg *schema.Registry, payload domain.Properties) error {
	typeName := payload.TypeName()
	if typeName == "" {
		return fmt.Errorf("%w: missing node type", domain.ErrValidation)
	}

	nodeType, ok := reg.NodeType(typeName)
	if !ok {
		return fmt.Errorf("%w: unknown node type %q", domain.ErrValidation, typeName)
	}

	for key := range payload {
		if key == domain.PropType {
			continue
		}
		if !propertyAllowed(nodeType.Properties, key) {
			return fmt.Errorf("%w: property %q is not declared for node type %q", domain.ErrValidation, key, typeName)
		}
	}

	return nil
}

func propertyAllowed(declared []string, key string) bool {
	for _, p := range declared {
		if p == key {
			return true
		}
	}
	return false
}
