package stubs

import (
	"debategraph/src/domain/schema"
)

// DebateConfigStub monta a configuração de tipos canônica dos testes: um
// grafo de debate com claims, arguments e sources.
type DebateConfigStub struct {
	config schema.TypeConfig
}

func NewDebateConfigStub() DebateConfigStub {
	return DebateConfigStub{
		config: schema.TypeConfig{
			NodeTypes: []schema.NodeTypeDef{
				{Name: "claim", Properties: []string{"title", "description", "scope", "tags", "status"}},
				{Name: "argument", Properties: []string{"title", "description", "tags", "status"}},
				{Name: "source", Properties: []string{"title", "url", "tags"}},
			},
			EdgeTypes: []schema.EdgeTypeDef{
				{
					Name:        "supports",
					Properties:  []string{"strength", "notes"},
					SourceTypes: []string{"argument"},
					TargetTypes: []string{"claim"},
				},
				{
					Name:        "refutes",
					Properties:  []string{"strength", "notes"},
					SourceTypes: []string{"argument"},
					TargetTypes: []string{"claim"},
				},
				{
					Name:       "cites",
					Properties: []string{"quote"},
				},
			},
			Polls: []schema.PollDef{
				{
					Name:      "agreement",
					Scale:     []string{"strongly-disagree", "disagree", "neutral", "agree", "strongly-agree"},
					NodeTypes: []string{"claim", "argument"},
				},
				{
					Name:      "relevance",
					Scale:     []string{"irrelevant", "somewhat-relevant", "highly-relevant"},
					EdgeTypes: []string{"supports", "refutes"},
				},
			},
		},
	}
}

func (cs DebateConfigStub) WithNodeType(def schema.NodeTypeDef) DebateConfigStub {
	cs.config.NodeTypes = append(cs.config.NodeTypes, def)
	return cs
}

func (cs DebateConfigStub) WithEdgeType(def schema.EdgeTypeDef) DebateConfigStub {
	cs.config.EdgeTypes = append(cs.config.EdgeTypes, def)
	return cs
}

func (cs DebateConfigStub) WithPoll(def schema.PollDef) DebateConfigStub {
	cs.config.Polls = append(cs.config.Polls, def)
	return cs
}

func (cs DebateConfigStub) WithoutPoll(name string) DebateConfigStub {
	polls := make([]schema.PollDef, 0, len(cs.config.Polls))
	for _, p := range cs.config.Polls {
		if p.Name != name {
			polls = append(polls, p)
		}
	}
	cs.config.Polls = polls
	return cs
}

func (cs DebateConfigStub) WithoutNodeType(name string) DebateConfigStub {
	types := make([]schema.NodeTypeDef, 0, len(cs.config.NodeTypes))
	for _, nt := range cs.config.NodeTypes {
		if nt.Name != name {
			types = append(types, nt)
		}
	}
	cs.config.NodeTypes = types
	return cs
}

func (cs DebateConfigStub) Get() *schema.TypeConfig {
	cfg := cs.config
	return &cfg
}

// Source embrulha a configuração num ConfigSource estático.
func (cs DebateConfigStub) Source() *schema.StaticConfigSource {
	return schema.NewStaticConfigSource(cs.Get())
}
