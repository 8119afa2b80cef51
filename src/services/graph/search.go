package graph

import (
	"context"
	"fmt"
	"strings"

	"debategraph/src/domain"
)

// NodeSearch são os filtros do scan linear sobre os nós correntes.
// Campos de texto exigem que cada token do filtro apareça como substring
// case-insensitive do campo; tags exigem que cada tag pedida case algum tag
// do nó; tipos e status casam por igualdade/pertinência.
type NodeSearch struct {
	Title       string
	Scope       string
	Description string
	Tags        []string
	Types       []string
	Statuses    []string
}

// SearchNodes varre os nós do grafo corrente aplicando todos os filtros.
func (s *GraphService) SearchNodes(ctx context.Context, search NodeSearch) ([]*domain.Node, error) {
	graph, err := s.CurrentGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("GraphService.SearchNodes - %w", err)
	}

	var matches []*domain.Node
	for _, node := range graph.Nodes {
		if nodeMatches(node, search) {
			matches = append(matches, node)
		}
	}

	return matches, nil
}

func nodeMatches(node *domain.Node, search NodeSearch) bool {
	if !tokensMatchField(node.Properties, "title", search.Title) {
		return false
	}
	if !tokensMatchField(node.Properties, "scope", search.Scope) {
		return false
	}
	if !tokensMatchField(node.Properties, "description", search.Description) {
		return false
	}
	if len(search.Tags) > 0 && !tagsMatch(node.Properties, search.Tags) {
		return false
	}
	if len(search.Types) > 0 && !containsFold(search.Types, node.Type) {
		return false
	}
	if len(search.Statuses) > 0 {
		status, _ := node.Properties["status"].(string)
		if !containsFold(search.Statuses, status) {
			return false
		}
	}
	return true
}

// tokensMatchField exige cada token (split por whitespace) do filtro como
// substring case-insensitive do valor do campo.
func tokensMatchField(props domain.Properties, field, filter string) bool {
	if filter == "" {
		return true
	}
	value, _ := props[field].(string)
	lowered := strings.ToLower(value)
	for _, token := range strings.Fields(filter) {
		if !strings.Contains(lowered, strings.ToLower(token)) {
			return false
		}
	}
	return true
}

// tagsMatch exige que cada tag pedida case (case-insensitive) algum tag do
// nó. O payload guarda tags como lista JSON.
func tagsMatch(props domain.Properties, requested []string) bool {
	var nodeTags []string
	switch raw := props["tags"].(type) {
	case []interface{}:
		for _, t := range raw {
			if s, ok := t.(string); ok {
				nodeTags = append(nodeTags, s)
			}
		}
	case []string:
		nodeTags = raw
	default:
		return false
	}

	for _, want := range requested {
		if !containsFold(nodeTags, want) {
			return false
		}
	}
	return true
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
