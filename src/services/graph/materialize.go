package graph

import (
	"log/slog"

	"debategraph/src/domain"
	"debategraph/src/domain/schema"
)

// Materialize é o fold puro: reduz o log ao estado corrente. Agrupa
// eventos de nó por node id e de aresta por (source, target, type), mantém
// só o evento mais recente de cada grupo, descarta grupos cujo último
// evento é uma deleção e descarta entidades de tipo ausente do registry
// (warning, nunca erro: drift de schema não derruba leituras).
//
// events deve vir ordenado por (timestamp ASC, id ASC), como o log sempre
// entrega.
func Materialize(events []domain.EntityEvent, reg *schema.Registry, logger *slog.Logger) *domain.Graph {
	latestNodes, latestEdges := LatestPerKey(events)

	g := domain.NewGraph()

	for id, event := range latestNodes {
		if event.State == domain.StateDeleted {
			continue
		}
		typeName := event.Payload.TypeName()
		if !reg.HasNodeType(typeName) {
			if logger != nil {
				logger.Warn("Materialize - skipping node of unknown type",
					"node_id", id, "type", typeName)
			}
			continue
		}
		g.Nodes[id] = &domain.Node{
			ID:         id,
			Type:       typeName,
			Properties: event.Payload,
			UpdatedAt:  event.Timestamp,
			UpdatedBy:  event.Username,
		}
	}

	for key, event := range latestEdges {
		if event.State == domain.StateDeleted {
			continue
		}
		if !reg.HasEdgeType(key.Type) {
			if logger != nil {
				logger.Warn("Materialize - skipping edge of unknown type",
					"source", key.Source, "target", key.Target, "type", key.Type)
			}
			continue
		}
		g.Edges[key] = &domain.Edge{
			Source:     key.Source,
			Target:     key.Target,
			Type:       key.Type,
			Properties: event.Payload,
			UpdatedAt:  event.Timestamp,
			UpdatedBy:  event.Username,
		}
	}

	return g
}

// LatestPerKey agrupa o log por chave de entidade e fica com o último
// evento de cada grupo (timestamp, empate por id).
func LatestPerKey(events []domain.EntityEvent) (map[string]domain.EntityEvent, map[domain.EdgeKey]domain.EntityEvent) {
	latestNodes := make(map[string]domain.EntityEvent)
	latestEdges := make(map[domain.EdgeKey]domain.EntityEvent)

	for _, event := range events {
		switch event.Kind {
		case domain.KindNode:
			if event.NodeID == nil {
				continue
			}
			id := *event.NodeID
			if prev, ok := latestNodes[id]; !ok || prev.Before(event) {
				latestNodes[id] = event
			}
		case domain.KindEdge:
			key := event.EdgeKeyOf()
			if prev, ok := latestEdges[key]; !ok || prev.Before(event) {
				latestEdges[key] = event
			}
		}
	}

	return latestNodes, latestEdges
}

// latestForNode reduz os eventos de um único nó; ok=false quando o nó
// nunca existiu ou o último evento é deleção.
func latestForNode(events []domain.EntityEvent) (domain.EntityEvent, bool) {
	var latest domain.EntityEvent
	found := false
	for _, event := range events {
		if event.Kind != domain.KindNode {
			continue
		}
		if !found || latest.Before(event) {
			latest = event
			found = true
		}
	}
	if !found || latest.State == domain.StateDeleted {
		return domain.EntityEvent{}, false
	}
	return latest, true
}

// latestForEdge é o equivalente para uma chave de aresta.
func latestForEdge(events []domain.EntityEvent) (domain.EntityEvent, bool) {
	var latest domain.EntityEvent
	found := false
	for _, event := range events {
		if event.Kind != domain.KindEdge {
			continue
		}
		if !found || latest.Before(event) {
			latest = event
			found = true
		}
	}
	if !found || latest.State == domain.StateDeleted {
		return domain.EntityEvent{}, false
	}
	return latest, true
}
