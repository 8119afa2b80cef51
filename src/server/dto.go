package server

import (
	"sort"
	"time"

	"debategraph/src/domain"
)

type NodeDTO struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Properties domain.Properties `json:"properties"`
	UpdatedAt  time.Time         `json:"updated_at"`
	UpdatedBy  string            `json:"updated_by"`
}

type EdgeDTO struct {
	Source     string            `json:"source"`
	Target     string            `json:"target"`
	Type       string            `json:"type"`
	Properties domain.Properties `json:"properties"`
	UpdatedAt  time.Time         `json:"updated_at"`
	UpdatedBy  string            `json:"updated_by"`
}

type GraphDTO struct {
	Nodes []NodeDTO `json:"nodes"`
	Edges []EdgeDTO `json:"edges"`
}

type EventDTO struct {
	ID        int64             `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	State     string            `json:"state"`
	Kind      string            `json:"kind"`
	Payload   domain.Properties `json:"payload,omitempty"`
	Username  string            `json:"username"`
}

type RatingDTO struct {
	Poll      string    `json:"poll"`
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Username  string    `json:"username"`
}

// MedianDTO preserva o null de "zero avaliadores" até o JSON.
type MedianDTO struct {
	Poll   string  `json:"poll"`
	Median *string `json:"median"`
	Raters int     `json:"raters"`
}

func MapNodeToResponse(node *domain.Node) NodeDTO {
	return NodeDTO{
		ID:         node.ID,
		Type:       node.Type,
		Properties: node.Properties,
		UpdatedAt:  node.UpdatedAt,
		UpdatedBy:  node.UpdatedBy,
	}
}

func MapEdgeToResponse(edge *domain.Edge) EdgeDTO {
	return EdgeDTO{
		Source:     edge.Source,
		Target:     edge.Target,
		Type:       edge.Type,
		Properties: edge.Properties,
		UpdatedAt:  edge.UpdatedAt,
		UpdatedBy:  edge.UpdatedBy,
	}
}

// MapGraphToResponse ordena nós por id e arestas pelo triplo para manter a
// saída estável entre chamadas.
func MapGraphToResponse(g *domain.Graph) GraphDTO {
	dto := GraphDTO{
		Nodes: make([]NodeDTO, 0, len(g.Nodes)),
		Edges: make([]EdgeDTO, 0, len(g.Edges)),
	}

	for _, node := range g.Nodes {
		dto.Nodes = append(dto.Nodes, MapNodeToResponse(node))
	}
	sort.Slice(dto.Nodes, func(i, j int) bool { return dto.Nodes[i].ID < dto.Nodes[j].ID })

	for _, edge := range g.Edges {
		dto.Edges = append(dto.Edges, MapEdgeToResponse(edge))
	}
	sort.Slice(dto.Edges, func(i, j int) bool {
		a, b := dto.Edges[i], dto.Edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Type < b.Type
	})

	return dto
}

func MapEventsToResponse(events []domain.EntityEvent) []EventDTO {
	out := make([]EventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, EventDTO{
			ID:        event.ID,
			Timestamp: event.Timestamp,
			State:     string(event.State),
			Kind:      string(event.Kind),
			Payload:   event.Payload,
			Username:  event.Username,
		})
	}
	return out
}

func MapRatingsToResponse(events []domain.RatingEvent) []RatingDTO {
	out := make([]RatingDTO, 0, len(events))
	for _, event := range events {
		out = append(out, RatingDTO{
			Poll:      event.Poll,
			Value:     event.Value,
			Timestamp: event.Timestamp,
			Username:  event.Username,
		})
	}
	return out
}
