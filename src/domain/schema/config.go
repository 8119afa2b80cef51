package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"debategraph/src/domain"
)

// TypeConfig é a configuração declarativa de tipos: quais tipos de nó e
// aresta existem, quais propriedades cada um aceita, restrições de
// endpoints e os polls de rating aplicáveis.
type TypeConfig struct {
	NodeTypes []NodeTypeDef `json:"node_types"`
	EdgeTypes []EdgeTypeDef `json:"edge_types"`
	Polls     []PollDef     `json:"polls"`
}

type NodeTypeDef struct {
	Name       string   `json:"name"`
	Properties []string `json:"properties"`
}

type EdgeTypeDef struct {
	Name       string   `json:"name"`
	Properties []string `json:"properties"`
	// SourceTypes/TargetTypes restringem os tipos de nó permitidos nos
	// endpoints. Vazio significa sem restrição.
	SourceTypes []string `json:"source_types,omitempty"`
	TargetTypes []string `json:"target_types,omitempty"`
}

// PollDef declares one rating dimension. Scale is ordered from the lowest
// ordinal to the highest (e.g. strongly-disagree .. strongly-agree).
type PollDef struct {
	Name        string   `json:"name"`
	Scale       []string `json:"scale"`
	NodeTypes   []string `json:"node_types,omitempty"`
	EdgeTypes   []string `json:"edge_types,omitempty"`
	Aggregation string   `json:"aggregation,omitempty"`
}

// Ordinal returns the position of a label on the scale.
func (p PollDef) Ordinal(label string) (int, bool) {
	for i, s := range p.Scale {
		if s == label {
			return i, true
		}
	}
	return 0, false
}

// Label maps an ordinal position back to its scale label.
func (p PollDef) Label(ordinal int) (string, bool) {
	if ordinal < 0 || ordinal >= len(p.Scale) {
		return "", false
	}
	return p.Scale[ordinal], true
}

// Validate checks structural sanity: unique names, non-empty poll scales.
func (c *TypeConfig) Validate() error {
	seenNodes := make(map[string]bool, len(c.NodeTypes))
	for _, nt := range c.NodeTypes {
		if nt.Name == "" {
			return fmt.Errorf("%w: node type with empty name", domain.ErrValidation)
		}
		if seenNodes[nt.Name] {
			return fmt.Errorf("%w: duplicate node type %q", domain.ErrValidation, nt.Name)
		}
		seenNodes[nt.Name] = true
	}

	seenEdges := make(map[string]bool, len(c.EdgeTypes))
	for _, et := range c.EdgeTypes {
		if et.Name == "" {
			return fmt.Errorf("%w: edge type with empty name", domain.ErrValidation)
		}
		if seenEdges[et.Name] {
			return fmt.Errorf("%w: duplicate edge type %q", domain.ErrValidation, et.Name)
		}
		seenEdges[et.Name] = true
	}

	seenPolls := make(map[string]bool, len(c.Polls))
	for _, p := range c.Polls {
		if p.Name == "" {
			return fmt.Errorf("%w: poll with empty name", domain.ErrValidation)
		}
		if seenPolls[p.Name] {
			return fmt.Errorf("%w: duplicate poll %q", domain.ErrValidation, p.Name)
		}
		seenPolls[p.Name] = true
		if len(p.Scale) == 0 {
			return fmt.Errorf("%w: poll %q declares an empty scale", domain.ErrValidation, p.Name)
		}
		seenLabels := make(map[string]bool, len(p.Scale))
		for _, label := range p.Scale {
			if seenLabels[label] {
				return fmt.Errorf("%w: poll %q repeats scale label %q", domain.ErrValidation, p.Name, label)
			}
			seenLabels[label] = true
		}
	}

	return nil
}

// Fingerprint é o hash de conteúdo da configuração inteira: sha256 sobre
// a forma canônica (tipos ordenados por nome, propriedades ordenadas).
// A ordem das escalas dos polls é significativa e preservada.
func (c *TypeConfig) Fingerprint() string {
	canonical := c.canonicalize()
	raw, err := json.Marshal(canonical)
	if err != nil {
		// TypeConfig é composto só de strings e slices; Marshal não falha.
		panic(err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func (c *TypeConfig) canonicalize() TypeConfig {
	out := TypeConfig{
		NodeTypes: make([]NodeTypeDef, len(c.NodeTypes)),
		EdgeTypes: make([]EdgeTypeDef, len(c.EdgeTypes)),
		Polls:     make([]PollDef, len(c.Polls)),
	}

	for i, nt := range c.NodeTypes {
		out.NodeTypes[i] = NodeTypeDef{Name: nt.Name, Properties: sortedCopy(nt.Properties)}
	}
	sort.Slice(out.NodeTypes, func(i, j int) bool { return out.NodeTypes[i].Name < out.NodeTypes[j].Name })

	for i, et := range c.EdgeTypes {
		out.EdgeTypes[i] = EdgeTypeDef{
			Name:        et.Name,
			Properties:  sortedCopy(et.Properties),
			SourceTypes: sortedCopy(et.SourceTypes),
			TargetTypes: sortedCopy(et.TargetTypes),
		}
	}
	sort.Slice(out.EdgeTypes, func(i, j int) bool { return out.EdgeTypes[i].Name < out.EdgeTypes[j].Name })

	for i, p := range c.Polls {
		out.Polls[i] = PollDef{
			Name:        p.Name,
			Scale:       append([]string(nil), p.Scale...),
			NodeTypes:   sortedCopy(p.NodeTypes),
			EdgeTypes:   sortedCopy(p.EdgeTypes),
			Aggregation: p.Aggregation,
		}
	}
	sort.Slice(out.Polls, func(i, j int) bool { return out.Polls[i].Name < out.Polls[j].Name })

	return out
}

func sortedCopy(in []string) []string {
	if in == nil {
		return nil
	}
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
