package graph

import (
	"context"
	"fmt"

	"debategraph/src/domain"
)

// InducedSubgraph faz BFS sobre a visão NÃO-direcionada da adjacência do
// grafo corrente, limitada a levels saltos, e retorna os nós visitados mais
// as arestas cujos dois endpoints foram visitados. Nó inicial inexistente é
// erro; nó sem vizinhos retorna o singleton.
func (s *GraphService) InducedSubgraph(ctx context.Context, startNodeID string, levels int) (*domain.Graph, error) {
	full, err := s.CurrentGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("GraphService.InducedSubgraph - %w", err)
	}

	if _, ok := full.Nodes[startNodeID]; !ok {
		return nil, fmt.Errorf("GraphService.InducedSubgraph - start node %s: %w", startNodeID, domain.ErrEntityNotFound)
	}

	// Adjacência não-direcionada: cada aresta liga nos dois sentidos,
	// independente da direção declarada.
	adjacency := make(map[string][]string)
	for key := range full.Edges {
		adjacency[key.Source] = append(adjacency[key.Source], key.Target)
		adjacency[key.Target] = append(adjacency[key.Target], key.Source)
	}

	visited := map[string]bool{startNodeID: true}
	frontier := []string{startNodeID}

	for depth := 0; depth < levels && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			for _, neighbor := range adjacency[id] {
				if visited[neighbor] {
					continue
				}
				if _, ok := full.Nodes[neighbor]; !ok {
					// Endpoint de um tipo descartado na materialização.
					continue
				}
				visited[neighbor] = true
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	sub := domain.NewGraph()
	for id := range visited {
		sub.Nodes[id] = full.Nodes[id]
	}
	for key, edge := range full.Edges {
		if visited[key.Source] && visited[key.Target] {
			sub.Edges[key] = edge
		}
	}

	return sub, nil
}
