package memory

import (
	"context"
	"sync"
	"time"

	"debategraph/src/domain"
)

// SnapshotStore guarda snapshots de schema em memória com a mesma regra do
// índice parcial do Postgres: no máximo um ativo.
type SnapshotStore struct {
	mu         sync.Mutex
	snapshots  []domain.SchemaSnapshot
	migrations []domain.SchemaMigration
	nextID     int64
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{nextID: 1}
}

func (s *SnapshotStore) ActiveSnapshot(_ context.Context) (*domain.SchemaSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.snapshots {
		if s.snapshots[i].Active {
			snapshot := s.snapshots[i]
			return &snapshot, nil
		}
	}
	return nil, domain.ErrSnapshotNotFound
}

// Promote desativa o snapshot corrente e insere o novo como ativo, na mesma
// seção crítica. migration nil é o bootstrap.
func (s *SnapshotStore) Promote(_ context.Context, snapshot domain.SchemaSnapshot, migration *domain.SchemaMigration) (*domain.SchemaSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.snapshots {
		s.snapshots[i].Active = false
	}

	snapshot.ID = s.nextID
	s.nextID++
	snapshot.Active = true
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}
	s.snapshots = append(s.snapshots, snapshot)

	if migration != nil {
		stored := *migration
		stored.ID = int64(len(s.migrations) + 1)
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = snapshot.CreatedAt
		}
		s.migrations = append(s.migrations, stored)
	}

	promoted := snapshot
	return &promoted, nil
}

func (s *SnapshotStore) Migrations() []domain.SchemaMigration {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.SchemaMigration, len(s.migrations))
	copy(out, s.migrations)
	return out
}
