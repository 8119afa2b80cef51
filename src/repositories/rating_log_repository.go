package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"debategraph/src/domain"
	"debategraph/src/infra/postgres"
)

// RatingLogRepository é o log append-only de opiniões. Mesmo contrato de
// ordenação do log de entidades: (ts ASC, id ASC).
type RatingLogRepository struct {
	pool *pgxpool.Pool
}

func NewRatingLogRepository(pool *pgxpool.Pool) *RatingLogRepository {
	return &RatingLogRepository{pool: pool}
}

func (r *RatingLogRepository) Append(ctx context.Context, rating domain.RatingEvent) (domain.RatingEvent, error) {
	if err := rating.Validate(); err != nil {
		return domain.RatingEvent{}, fmt.Errorf("RatingLogRepository.Append - invalid rating: %w", err)
	}

	query := `
		INSERT INTO rating_events (kind, node_id, source_id, target_id, edge_type, poll, value, username)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, ts;
	`

	row := r.pool.QueryRow(ctx, query,
		string(rating.Kind),
		postgres.NewNullString(rating.NodeID),
		postgres.NewNullString(rating.SourceID),
		postgres.NewNullString(rating.TargetID),
		postgres.NewNullString(rating.EdgeType),
		rating.Poll,
		rating.Value,
		rating.Username,
	)

	if err := row.Scan(&rating.ID, &rating.Timestamp); err != nil {
		return domain.RatingEvent{}, fmt.Errorf("RatingLogRepository.Append - insert failed: %w", err)
	}

	return rating, nil
}

func (r *RatingLogRepository) List(ctx context.Context, filter domain.RatingFilter) ([]domain.RatingEvent, error) {
	query := `
		SELECT id, ts, kind, node_id, source_id, target_id, edge_type, poll, value, username
		FROM rating_events
	`

	where, args := buildRatingWhere(filter)
	query += where + " ORDER BY ts ASC, id ASC;"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("RatingLogRepository.List - query failed: %w", err)
	}
	defer rows.Close()

	var ratings []domain.RatingEvent
	for rows.Next() {
		var rating domain.RatingEvent
		var kind string

		if err := rows.Scan(&rating.ID, &rating.Timestamp, &kind,
			&rating.NodeID, &rating.SourceID, &rating.TargetID, &rating.EdgeType,
			&rating.Poll, &rating.Value, &rating.Username); err != nil {
			return nil, fmt.Errorf("RatingLogRepository.List - failed to scan rating: %w", err)
		}

		rating.Kind = domain.EntityKind(kind)
		ratings = append(ratings, rating)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("RatingLogRepository.List - error iterating rows: %w", err)
	}

	return ratings, nil
}

// CountByPoll conta todos os eventos de rating de um poll. Alimenta o
// impact scan quando um poll é removido ou muda de escala.
func (r *RatingLogRepository) CountByPoll(ctx context.Context, poll string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rating_events WHERE poll = $1;`, poll).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("RatingLogRepository.CountByPoll - query failed: %w", err)
	}
	return count, nil
}

func buildRatingWhere(filter domain.RatingFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Kind != nil {
		clauses = append(clauses, "kind = "+arg(string(*filter.Kind)))
	}
	if filter.NodeID != nil {
		clauses = append(clauses, "node_id = "+arg(*filter.NodeID))
	}
	if filter.Edge != nil {
		clauses = append(clauses, "source_id = "+arg(filter.Edge.Source))
		clauses = append(clauses, "target_id = "+arg(filter.Edge.Target))
		clauses = append(clauses, "edge_type = "+arg(filter.Edge.Type))
	}
	if filter.Poll != nil {
		clauses = append(clauses, "poll = "+arg(*filter.Poll))
	}
	if filter.Username != nil {
		clauses = append(clauses, "username = "+arg(*filter.Username))
	}

	if len(clauses) == 0 {
		return "", nil
	}

	where := " WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}
