package memory

import (
	"context"
	"sync"

	"debategraph/src/domain"
)

// RecordingSink registra as chamadas recebidas do fan-out de espelhos.
type RecordingSink struct {
	mu    sync.Mutex
	Calls []string
	// Err, quando setado, é devolvido por toda operação. Simula um espelho
	// fora do ar.
	Err error
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) record(call string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, call)
	return s.Err
}

func (s *RecordingSink) CreateNode(_ context.Context, node domain.Node) error {
	return s.record("create_node:" + node.ID)
}

func (s *RecordingSink) UpdateNode(_ context.Context, node domain.Node) error {
	return s.record("update_node:" + node.ID)
}

func (s *RecordingSink) DeleteNode(_ context.Context, id string) error {
	return s.record("delete_node:" + id)
}

func (s *RecordingSink) CreateEdge(_ context.Context, edge domain.Edge) error {
	return s.record("create_edge:" + edge.Key().String())
}

func (s *RecordingSink) UpdateEdge(_ context.Context, edge domain.Edge) error {
	return s.record("update_edge:" + edge.Key().String())
}

func (s *RecordingSink) DeleteEdge(_ context.Context, key domain.EdgeKey) error {
	return s.record("delete_edge:" + key.String())
}

func (s *RecordingSink) Reset(_ context.Context) error {
	return s.record("reset")
}

func (s *RecordingSink) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}
