package domain

import (
	"fmt"
	"time"
)

// EntityKind discrimina entre nós e arestas no log de eventos.
type EntityKind string

const (
	KindNode EntityKind = "node"
	KindEdge EntityKind = "edge"
)

// LifecycleState é a transição registrada por um evento.
type LifecycleState string

const (
	StateCreated LifecycleState = "created"
	StateUpdated LifecycleState = "updated"
	StateDeleted LifecycleState = "deleted"
)

// PropType is the reserved payload key holding the entity's declared type name.
const PropType = "type"

// Properties is the open map of type-specific fields carried by an event.
type Properties map[string]interface{}

// TypeName returns the declared type under the reserved key, if present.
func (p Properties) TypeName() string {
	if p == nil {
		return ""
	}
	if v, ok := p[PropType].(string); ok {
		return v
	}
	return ""
}

// Clone returns a shallow copy. Nested values are shared.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// EdgeKey é a identidade de uma aresta: o triplo ordenado (source, target, type).
type EdgeKey struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("%s->%s[%s]", k.Source, k.Target, k.Type)
}

// EntityEvent é uma linha imutável do log: uma transição de ciclo de vida
// de exatamente um nó ou exatamente uma aresta. O estado atual do grafo é
// sempre derivado destas linhas, nunca de uma tabela mutável.
type EntityEvent struct {
	ID        int64          `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	State     LifecycleState `json:"state"`
	Kind      EntityKind     `json:"kind"`
	NodeID    *string        `json:"node_id,omitempty"`
	SourceID  *string        `json:"source_id,omitempty"`
	TargetID  *string        `json:"target_id,omitempty"`
	EdgeType  *string        `json:"edge_type,omitempty"`
	Payload   Properties     `json:"payload,omitempty"`
	Username  string         `json:"username"`
}

// Validate enforces the field-presence invariants before an append.
func (e EntityEvent) Validate() error {
	switch e.State {
	case StateCreated, StateUpdated, StateDeleted:
	default:
		return fmt.Errorf("%w: invalid lifecycle state %q", ErrValidation, e.State)
	}

	switch e.Kind {
	case KindNode:
		if e.NodeID == nil || *e.NodeID == "" {
			return fmt.Errorf("%w: node event requires node_id", ErrValidation)
		}
		if e.SourceID != nil || e.TargetID != nil || e.EdgeType != nil {
			return fmt.Errorf("%w: node event must not carry edge identifiers", ErrValidation)
		}
	case KindEdge:
		if e.SourceID == nil || *e.SourceID == "" || e.TargetID == nil || *e.TargetID == "" {
			return fmt.Errorf("%w: edge event requires source_id and target_id", ErrValidation)
		}
		if e.EdgeType == nil || *e.EdgeType == "" {
			return fmt.Errorf("%w: edge event requires edge_type", ErrValidation)
		}
		if e.NodeID != nil {
			return fmt.Errorf("%w: edge event must not carry node_id", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: invalid entity kind %q", ErrValidation, e.Kind)
	}

	if e.State == StateDeleted {
		if len(e.Payload) != 0 {
			return fmt.Errorf("%w: delete event must carry an empty payload", ErrValidation)
		}
	} else {
		if e.Payload.TypeName() == "" {
			return fmt.Errorf("%w: payload must declare a type under %q", ErrValidation, PropType)
		}
	}

	if e.Username == "" {
		return fmt.Errorf("%w: acting username is required", ErrValidation)
	}

	return nil
}

// EdgeKeyOf returns the edge identity of an edge event.
func (e EntityEvent) EdgeKeyOf() EdgeKey {
	key := EdgeKey{}
	if e.SourceID != nil {
		key.Source = *e.SourceID
	}
	if e.TargetID != nil {
		key.Target = *e.TargetID
	}
	if e.EdgeType != nil {
		key.Type = *e.EdgeType
	}
	return key
}

// Before reports whether e was logged before other, with the insertion id as
// tiebreak for equal timestamps.
func (e EntityEvent) Before(other EntityEvent) bool {
	if e.Timestamp.Equal(other.Timestamp) {
		return e.ID < other.ID
	}
	return e.Timestamp.Before(other.Timestamp)
}

// RatingEvent é a opinião de um usuário sobre uma entidade em um poll,
// em um instante. O log guarda o histórico completo; apenas o evento mais
// recente por usuário conta nos agregados.
type RatingEvent struct {
	ID        int64      `json:"id"`
	Kind      EntityKind `json:"kind"`
	NodeID    *string    `json:"node_id,omitempty"`
	SourceID  *string    `json:"source_id,omitempty"`
	TargetID  *string    `json:"target_id,omitempty"`
	EdgeType  *string    `json:"edge_type,omitempty"`
	Poll      string     `json:"poll"`
	Value     string     `json:"value"`
	Timestamp time.Time  `json:"timestamp"`
	Username  string     `json:"username"`
}

// Validate enforces the same field-presence rule as EntityEvent.
func (r RatingEvent) Validate() error {
	switch r.Kind {
	case KindNode:
		if r.NodeID == nil || *r.NodeID == "" {
			return fmt.Errorf("%w: node rating requires node_id", ErrValidation)
		}
		if r.SourceID != nil || r.TargetID != nil || r.EdgeType != nil {
			return fmt.Errorf("%w: node rating must not carry edge identifiers", ErrValidation)
		}
	case KindEdge:
		if r.SourceID == nil || *r.SourceID == "" || r.TargetID == nil || *r.TargetID == "" {
			return fmt.Errorf("%w: edge rating requires source_id and target_id", ErrValidation)
		}
		if r.EdgeType == nil || *r.EdgeType == "" {
			return fmt.Errorf("%w: edge rating requires edge_type", ErrValidation)
		}
		if r.NodeID != nil {
			return fmt.Errorf("%w: edge rating must not carry node_id", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: invalid entity kind %q", ErrValidation, r.Kind)
	}

	if r.Poll == "" {
		return fmt.Errorf("%w: poll label is required", ErrValidation)
	}
	if r.Value == "" {
		return fmt.Errorf("%w: rating value is required", ErrValidation)
	}
	if r.Username == "" {
		return fmt.Errorf("%w: acting username is required", ErrValidation)
	}

	return nil
}

// Before orders rating events like entity events: timestamp, then id.
func (r RatingEvent) Before(other RatingEvent) bool {
	if r.Timestamp.Equal(other.Timestamp) {
		return r.ID < other.ID
	}
	return r.Timestamp.Before(other.Timestamp)
}

// EdgeKeyOf returns the edge identity of an edge rating.
func (r RatingEvent) EdgeKeyOf() EdgeKey {
	key := EdgeKey{}
	if r.SourceID != nil {
		key.Source = *r.SourceID
	}
	if r.TargetID != nil {
		key.Target = *r.TargetID
	}
	if r.EdgeType != nil {
		key.Type = *r.EdgeType
	}
	return key
}
