package stubs

import (
	"debategraph/src/domain"

	"github.com/brianvoe/gofakeit/v6"
)

// EdgeStub produz arestas de entrada. Os endpoints vêm de fora porque a
// identidade é o triplo (source, target, type).
type EdgeStub struct {
	edge domain.Edge
}

func NewEdgeStub(source, target string) EdgeStub {
	edge := domain.Edge{
		Source: source,
		Target: target,
		Type:   "supports",
		Properties: domain.Properties{
			"strength": "strong",
			"notes":    gofakeit.Sentence(6),
		},
	}

	return EdgeStub{edge: edge}
}

func (es EdgeStub) WithType(edgeType string) EdgeStub {
	es.edge.Type = edgeType
	return es
}

func (es EdgeStub) WithProperties(properties domain.Properties) EdgeStub {
	es.edge.Properties = properties
	return es
}

func (es EdgeStub) Get() domain.Edge {
	return es.edge
}
