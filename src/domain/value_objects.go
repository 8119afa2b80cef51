package domain

import (
	"errors"
	"time"
)

var (
	ErrEntityNotFound = errors.New("entity not found")

	ErrValidation = errors.New("validation failed")

	// ErrSchemaConflict indica uma promoção de schema com warnings não
	// reconhecidos; exige o flag force explícito.
	ErrSchemaConflict = errors.New("schema promotion has unacknowledged warnings")

	ErrNoSchemaChanges = errors.New("no schema changes detected")

	ErrSnapshotNotFound = errors.New("no active schema snapshot")

	ErrNotImplemented = errors.New("not implemented")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")
)

// ############################################################
// ############ PROCESSO DE LEITURA DO EVENT LOG ##############
// ############################################################

// EventFilter restringe uma consulta ao log de eventos de entidades.
// Campos nulos não filtram. Resultados sempre ordenados por
// (timestamp ASC, id ASC).
type EventFilter struct {
	Kind           *EntityKind
	NodeID         *string
	Edge           *EdgeKey
	ExcludeDeleted bool
}

// RatingFilter restringe uma consulta ao log de ratings.
type RatingFilter struct {
	Kind     *EntityKind
	NodeID   *string
	Edge     *EdgeKey
	Poll     *string
	Username *string
}

// EntityRef aponta para um nó ou uma aresta sem carregar estado. É a chave
// dos agregados de rating.
type EntityRef struct {
	Kind   EntityKind
	NodeID string
	Edge   EdgeKey
}

func NodeRef(id string) EntityRef {
	return EntityRef{Kind: KindNode, NodeID: id}
}

func EdgeRef(key EdgeKey) EntityRef {
	return EntityRef{Kind: KindEdge, Edge: key}
}

func (r EntityRef) String() string {
	if r.Kind == KindNode {
		return r.NodeID
	}
	return r.Edge.String()
}

// RatingFilterFor monta o filtro do log de ratings para esta entidade.
func (r EntityRef) RatingFilterFor(poll string, username *string) RatingFilter {
	kind := r.Kind
	filter := RatingFilter{Kind: &kind, Poll: &poll, Username: username}
	if r.Kind == KindNode {
		id := r.NodeID
		filter.NodeID = &id
	} else {
		edge := r.Edge
		filter.Edge = &edge
	}
	return filter
}

// ############################################################
// ################ ESTADO MATERIALIZADO ######################
// ############################################################

// Node is the materialized view of a node key: the payload of its latest
// non-deleted event. Derived on read, never persisted.
type Node struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	UpdatedAt  time.Time  `json:"updated_at"`
	UpdatedBy  string     `json:"updated_by"`
}

// Edge is the materialized view of an edge key (source, target, type).
type Edge struct {
	Source     string     `json:"source"`
	Target     string     `json:"target"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	UpdatedAt  time.Time  `json:"updated_at"`
	UpdatedBy  string     `json:"updated_by"`
}

// Key returns the edge identity triple.
func (e Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, Target: e.Target, Type: e.Type}
}

// Graph é o estado corrente derivado do fold do log.
type Graph struct {
	Nodes map[string]*Node
	Edges map[EdgeKey]*Edge
}

func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[string]*Node),
		Edges: make(map[EdgeKey]*Edge),
	}
}

// ############################################################
// ################# SCHEMA VERSIONING ########################
// ############################################################

// SchemaSnapshot é uma cópia persistida da configuração de tipos com seu
// fingerprint e versão semântica. No máximo um snapshot está ativo.
type SchemaSnapshot struct {
	ID          int64     `json:"id"`
	Version     string    `json:"version"`
	Fingerprint string    `json:"fingerprint"`
	Config      []byte    `json:"config"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
}

// ChangeKind tags a structural schema difference.
type ChangeKind string

const (
	ChangeNodeTypeAdded      ChangeKind = "node_type_added"
	ChangeNodeTypeRemoved    ChangeKind = "node_type_removed"
	ChangeEdgeTypeAdded      ChangeKind = "edge_type_added"
	ChangeEdgeTypeRemoved    ChangeKind = "edge_type_removed"
	ChangePropertyAdded      ChangeKind = "property_added"
	ChangePropertyRemoved    ChangeKind = "property_removed"
	ChangeEndpointConstraint ChangeKind = "endpoint_constraint_changed"
	ChangePollAdded          ChangeKind = "poll_added"
	ChangePollRemoved        ChangeKind = "poll_removed"
	ChangePollScaleChanged   ChangeKind = "poll_scale_changed"
	ChangePollDefinition     ChangeKind = "poll_definition_changed"
)

// SchemaChange é um registro estruturado de uma diferença entre a
// configuração viva e o snapshot ativo.
type SchemaChange struct {
	Kind        ChangeKind `json:"kind"`
	Subject     string     `json:"subject"`
	Detail      string     `json:"detail,omitempty"`
	Destructive bool       `json:"destructive"`
	Risk        string     `json:"risk,omitempty"`
}

// SchemaMigration é a trilha de auditoria de uma promoção. Append-only,
// nunca base de materialização.
type SchemaMigration struct {
	ID          int64          `json:"id"`
	FromVersion string         `json:"from_version"`
	ToVersion   string         `json:"to_version"`
	Changes     []SchemaChange `json:"changes"`
	Warnings    []string       `json:"warnings,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	Username    string         `json:"username"`
}
