package graph

import (
	"context"
	"fmt"

	"debategraph/src/domain"
	"debategraph/src/domain/schema"
)

// GetEdge retorna a visão materializada da aresta (source, target, type),
// ou ErrEntityNotFound.
func (s *GraphService) GetEdge(ctx context.Context, key domain.EdgeKey) (*domain.Edge, error) {
	events, err := s.log.List(ctx, domain.EventFilter{Edge: &key})
	if err != nil {
		return nil, fmt.Errorf("GraphService.GetEdge - failed to list events: %w", err)
	}

	latest, ok := latestForEdge(events)
	if !ok {
		return nil, fmt.Errorf("GraphService.GetEdge - edge %s: %w", key, domain.ErrEntityNotFound)
	}

	return &domain.Edge{
		Source:     key.Source,
		Target:     key.Target,
		Type:       key.Type,
		Properties: latest.Payload,
		UpdatedAt:  latest.Timestamp,
		UpdatedBy:  latest.Username,
	}, nil
}

// CreateEdge exige que ambos os endpoints existam no estado corrente e que
// o par de tipos satisfaça as restrições do tipo de aresta. A verificação é
// feita na escrita, nunca revalidada retroativamente.
func (s *GraphService) CreateEdge(ctx context.Context, edge domain.Edge, username string) (*domain.Edge, error) {
	reg, err := s.registry()
	if err != nil {
		return nil, fmt.Errorf("GraphService.CreateEdge - %w", err)
	}

	if edge.Type == "" {
		return nil, fmt.Errorf("GraphService.CreateEdge - %w: edge type is required", domain.ErrValidation)
	}
	if !reg.HasEdgeType(edge.Type) {
		return nil, fmt.Errorf("GraphService.CreateEdge - %w: unknown edge type %q", domain.ErrValidation, edge.Type)
	}

	sourceNode, err := s.GetNode(ctx, edge.Source)
	if err != nil {
		return nil, fmt.Errorf("GraphService.CreateEdge - source endpoint: %w", err)
	}
	targetNode, err := s.GetNode(ctx, edge.Target)
	if err != nil {
		return nil, fmt.Errorf("GraphService.CreateEdge - target endpoint: %w", err)
	}

	if !reg.AllowsEndpoint(edge.Type, sourceNode.Type, targetNode.Type) {
		return nil, fmt.Errorf("GraphService.CreateEdge - %w: edge type %q does not allow endpoints (%s -> %s)",
			domain.ErrValidation, edge.Type, sourceNode.Type, targetNode.Type)
	}

	key := edge.Key()
	if _, err := s.GetEdge(ctx, key); err == nil {
		return nil, fmt.Errorf("GraphService.CreateEdge - edge %s already exists: %w", key, domain.ErrValidation)
	}

	payload := edge.Properties.Clone()
	if payload == nil {
		payload = domain.Properties{}
	}
	payload[domain.PropType] = edge.Type

	if err := validateEdgePayload(reg, payload); err != nil {
		return nil, fmt.Errorf("GraphService.CreateEdge - %w", err)
	}

	event := domain.EntityEvent{
		State:    domain.StateCreated,
		Kind:     domain.KindEdge,
		SourceID: &key.Source,
		TargetID: &key.Target,
		EdgeType: &key.Type,
		Payload:  payload,
		Username: username,
	}

	appended, err := s.log.Append(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("GraphService.CreateEdge - append failed: %w", err)
	}

	created := &domain.Edge{
		Source:     key.Source,
		Target:     key.Target,
		Type:       key.Type,
		Properties: payload,
		UpdatedAt:  appended.Timestamp,
		UpdatedBy:  username,
	}

	s.fanOutEvent(ctx, appended, func(sink domain.GraphSink) error {
		return sink.CreateEdge(ctx, *created)
	})

	return created, nil
}

// UpdateEdge aplica o mesmo merge raso dos nós, chaveado pelo triplo.
func (s *GraphService) UpdateEdge(ctx context.Context, edge domain.Edge, username string) (*domain.Edge, error) {
	key := edge.Key()

	current, err := s.GetEdge(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("GraphService.UpdateEdge - %w", err)
	}

	merged := current.Properties.Clone()
	for k, v := range edge.Properties {
		merged[k] = v
	}
	// O tipo é identidade da aresta; o merge não pode trocá-lo.
	merged[domain.PropType] = key.Type

	reg, err := s.registry()
	if err != nil {
		return nil, fmt.Errorf("GraphService.UpdateEdge - %w", err)
	}
	if err := validateEdgePayload(reg, merged); err != nil {
		return nil, fmt.Errorf("GraphService.UpdateEdge - %w", err)
	}

	event := domain.EntityEvent{
		State:    domain.StateUpdated,
		Kind:     domain.KindEdge,
		SourceID: &key.Source,
		TargetID: &key.Target,
		EdgeType: &key.Type,
		Payload:  merged,
		Username: username,
	}

	appended, err := s.log.Append(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("GraphService.UpdateEdge - append failed: %w", err)
	}

	updated := &domain.Edge{
		Source:     key.Source,
		Target:     key.Target,
		Type:       key.Type,
		Properties: merged,
		UpdatedAt:  appended.Timestamp,
		UpdatedBy:  username,
	}

	s.fanOutEvent(ctx, appended, func(sink domain.GraphSink) error {
		return sink.UpdateEdge(ctx, *updated)
	})

	return updated, nil
}

// DeleteEdge exige o triplo completo: deletar sem tipo seria ambíguo quando
// mais de um tipo conecta o mesmo par ordenado.
func (s *GraphService) DeleteEdge(ctx context.Context, key domain.EdgeKey, username string) error {
	if key.Type == "" {
		return fmt.Errorf("GraphService.DeleteEdge - %w: edge type is required", domain.ErrValidation)
	}

	if _, err := s.GetEdge(ctx, key); err != nil {
		return fmt.Errorf("GraphService.DeleteEdge - %w", err)
	}

	event := domain.EntityEvent{
		State:    domain.StateDeleted,
		Kind:     domain.KindEdge,
		SourceID: &key.Source,
		TargetID: &key.Target,
		EdgeType: &key.Type,
		Username: username,
	}

	appended, err := s.log.Append(ctx, event)
	if err != nil {
		return fmt.Errorf("GraphService.DeleteEdge - append failed: %w", err)
	}

	s.fanOutEvent(ctx, appended, func(sink domain.GraphSink) error {
		return sink.DeleteEdge(ctx, key)
	})

	return nil
}

func validateEdgePayload(reg *schema.Registry, payload domain.Properties) error {
	typeName := payload.TypeName()
	if typeName == "" {
		return fmt.Errorf("%w: missing edge type", domain.ErrValidation)
	}

	edgeType, ok := reg.EdgeType(typeName)
	if !ok {
		return fmt.Errorf("%w: unknown edge type %q", domain.ErrValidation, typeName)
	}

	for key := range payload {
		if key == domain.PropType {
			continue
		}
		if !propertyAllowed(edgeType.Properties, key) {
			return fmt.Errorf("%w: property %q is not declared for edge type %q", domain.ErrValidation, key, typeName)
		}
	}

	return nil
}
