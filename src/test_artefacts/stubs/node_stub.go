package stubs

import (
	"debategraph/src/domain"

	"github.com/brianvoe/gofakeit/v6"
)

// NodeStub produz nós de entrada para o materializador: tipo claim com
// propriedades plausíveis por padrão.
type NodeStub struct {
	node domain.Node
}

func NewNodeStub() NodeStub {
	node := domain.Node{
		Type: "claim",
		Properties: domain.Properties{
			"title":       gofakeit.Sentence(4),
			"description": gofakeit.Paragraph(1, 2, 8, " "),
			"status":      "open",
		},
	}

	return NodeStub{node: node}
}

func (ns NodeStub) WithID(id string) NodeStub {
	ns.node.ID = id
	return ns
}

func (ns NodeStub) WithType(nodeType string) NodeStub {
	ns.node.Type = nodeType
	return ns
}

func (ns NodeStub) WithProperties(properties domain.Properties) NodeStub {
	ns.node.Properties = properties
	return ns
}

func (ns NodeStub) WithProperty(key string, value interface{}) NodeStub {
	ns.node.Properties = ns.node.Properties.Clone()
	if ns.node.Properties == nil {
		ns.node.Properties = domain.Properties{}
	}
	ns.node.Properties[key] = value
	return ns
}

func (ns NodeStub) Get() domain.Node {
	return ns.node
}
