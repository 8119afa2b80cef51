package domain

import "context"

// Operation é o tipo de operação submetido ao oráculo de permissões.
type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpEdit   Operation = "edit"
	OpDelete Operation = "delete"
	OpRate   Operation = "rate"
)

// AnonymousUser is the sentinel identity for unauthenticated reads.
const AnonymousUser = "anonymous"

// Permissions is the collaborator consulted before every protected call.
// A false result is an authorization failure, never a core error.
type Permissions interface {
	Allows(op Operation, username string) bool
}

// AllowAll grants every operation. Used when no oracle is wired.
type AllowAll struct{}

func (AllowAll) Allows(Operation, string) bool { return true }

// GraphSink é o contrato do espelho opcional (ex.: um banco de grafos
// nativo). Recebe o mesmo CRUD do materializador após um append bem
// sucedido; falhas do espelho nunca revertem o log autoritativo.
type GraphSink interface {
	CreateNode(ctx context.Context, node Node) error
	UpdateNode(ctx context.Context, node Node) error
	DeleteNode(ctx context.Context, id string) error
	CreateEdge(ctx context.Context, edge Edge) error
	UpdateEdge(ctx context.Context, edge Edge) error
	DeleteEdge(ctx context.Context, key EdgeKey) error
	Reset(ctx context.Context) error
}
