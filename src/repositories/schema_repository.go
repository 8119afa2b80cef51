package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"debategraph/src/domain"
	"debategraph/src/infra/postgres"
)

// SchemaRepository persiste snapshots de schema e a trilha de migrações.
// A promoção é transacional: desativar, inserir e auditar são tudo-ou-nada,
// e o índice único parcial garante no máximo um snapshot ativo.
type SchemaRepository struct {
	pool *pgxpool.Pool
}

func NewSchemaRepository(pool *pgxpool.Pool) *SchemaRepository {
	return &SchemaRepository{pool: pool}
}

func (r *SchemaRepository) ActiveSnapshot(ctx context.Context) (*domain.SchemaSnapshot, error) {
	query := `
		SELECT id, version, fingerprint, config, active, created_at, created_by
		FROM schema_snapshots
		WHERE active;
	`

	var snap domain.SchemaSnapshot
	err := r.pool.QueryRow(ctx, query).Scan(
		&snap.ID, &snap.Version, &snap.Fingerprint, &snap.Config,
		&snap.Active, &snap.CreatedAt, &snap.CreatedBy,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, fmt.Errorf("SchemaRepository.ActiveSnapshot - %w", domain.ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("SchemaRepository.ActiveSnapshot - query failed: %w", err)
	}

	return &snap, nil
}

// Promote desativa o snapshot ativo (se houver), insere o novo como ativo e
// grava a migração de auditoria, em uma única transação. migration nil é o
// bootstrap de primeira execução, que não gera auditoria.
func (r *SchemaRepository) Promote(ctx context.Context, snapshot domain.SchemaSnapshot, migration *domain.SchemaMigration) (*domain.SchemaSnapshot, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("SchemaRepository.Promote - failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE schema_snapshots SET active = FALSE WHERE active;`); err != nil {
		return nil, fmt.Errorf("SchemaRepository.Promote - failed to deactivate current snapshot: %w", err)
	}

	insertSnapshot := `
		INSERT INTO schema_snapshots (version, fingerprint, config, active, created_by)
		VALUES ($1, $2, $3, TRUE, $4)
		RETURNING id, created_at;
	`
	row := tx.QueryRow(ctx, insertSnapshot, snapshot.Version, snapshot.Fingerprint, snapshot.Config, snapshot.CreatedBy)
	if err := row.Scan(&snapshot.ID, &snapshot.CreatedAt); err != nil {
		return nil, fmt.Errorf("SchemaRepository.Promote - failed to insert snapshot: %w", err)
	}
	snapshot.Active = true

	if migration != nil {
		changesJSON, err := json.Marshal(migration.Changes)
		if err != nil {
			return nil, fmt.Errorf("SchemaRepository.Promote - failed to marshal changes: %w", err)
		}
		warnings := migration.Warnings
		if warnings == nil {
			warnings = []string{}
		}
		warningsJSON, err := json.Marshal(warnings)
		if err != nil {
			return nil, fmt.Errorf("SchemaRepository.Promote - failed to marshal warnings: %w", err)
		}

		insertMigration := `
			INSERT INTO schema_migrations (from_version, to_version, changes, warnings, username)
			VALUES ($1, $2, $3, $4, $5);
		`
		if _, err := tx.Exec(ctx, insertMigration,
			migration.FromVersion, migration.ToVersion, changesJSON, warningsJSON, migration.Username); err != nil {
			return nil, fmt.Errorf("SchemaRepository.Promote - failed to insert migration record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("SchemaRepository.Promote - failed to commit: %w", err)
	}

	return &snapshot, nil
}

func (r *SchemaRepository) Migrations(ctx context.Context) ([]domain.SchemaMigration, error) {
	query := `
		SELECT id, from_version, to_version, changes, warnings, created_at, username
		FROM schema_migrations
		ORDER BY id ASC;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("SchemaRepository.Migrations - query failed: %w", err)
	}
	defer rows.Close()

	var migrations []domain.SchemaMigration
	for rows.Next() {
		var mig domain.SchemaMigration
		var changesRaw, warningsRaw []byte

		if err := rows.Scan(&mig.ID, &mig.FromVersion, &mig.ToVersion, &changesRaw, &warningsRaw, &mig.CreatedAt, &mig.Username); err != nil {
			return nil, fmt.Errorf("SchemaRepository.Migrations - failed to scan migration: %w", err)
		}

		if err := json.Unmarshal(changesRaw, &mig.Changes); err != nil {
			return nil, fmt.Errorf("SchemaRepository.Migrations - failed to unmarshal changes for migration %d: %w", mig.ID, err)
		}
		if err := json.Unmarshal(warningsRaw, &mig.Warnings); err != nil {
			return nil, fmt.Errorf("SchemaRepository.Migrations - failed to unmarshal warnings for migration %d: %w", mig.ID, err)
		}

		migrations = append(migrations, mig)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SchemaRepository.Migrations - error iterating rows: %w", err)
	}

	return migrations, nil
}
