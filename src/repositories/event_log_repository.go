package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"debategraph/src/domain"
	"debategraph/src/infra/postgres"
)

// EventLogRepository é o Event Log Store: uma coleção append-only de
// eventos de ciclo de vida. Nenhum update ou delete in-place, nunca.
type EventLogRepository struct {
	pool *pgxpool.Pool
}

func NewEventLogRepository(pool *pgxpool.Pool) *EventLogRepository {
	return &EventLogRepository{pool: pool}
}

func (r *EventLogRepository) Append(ctx context.Context, event domain.EntityEvent) (domain.EntityEvent, error) {
	if err := event.Validate(); err != nil {
		return domain.EntityEvent{}, fmt.Errorf("EventLogRepository.Append - invalid event: %w", err)
	}

	payload := event.Payload
	if payload == nil {
		payload = domain.Properties{}
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return domain.EntityEvent{}, fmt.Errorf("EventLogRepository.Append - failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO entity_events (state, kind, node_id, source_id, target_id, edge_type, payload, username)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, ts;
	`

	row := r.pool.QueryRow(ctx, query,
		string(event.State),
		string(event.Kind),
		postgres.NewNullString(event.NodeID),
		postgres.NewNullString(event.SourceID),
		postgres.NewNullString(event.TargetID),
		postgres.NewNullString(event.EdgeType),
		payloadJSON,
		event.Username,
	)

	if err := row.Scan(&event.ID, &event.Timestamp); err != nil {
		return domain.EntityEvent{}, fmt.Errorf("EventLogRepository.Append - insert failed: %w", err)
	}

	return event, nil
}

func (r *EventLogRepository) List(ctx context.Context, filter domain.EventFilter) ([]domain.EntityEvent, error) {
	query := `
		SELECT id, ts, state, kind, node_id, source_id, target_id, edge_type, payload, username
		FROM entity_events
	`

	where, args := buildEventWhere(filter)
	query += where + " ORDER BY ts ASC, id ASC;"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("EventLogRepository.List - query failed: %w", err)
	}
	defer rows.Close()

	var events []domain.EntityEvent
	for rows.Next() {
		var event domain.EntityEvent
		var payloadRaw []byte
		var state, kind string

		if err := rows.Scan(&event.ID, &event.Timestamp, &state, &kind,
			&event.NodeID, &event.SourceID, &event.TargetID, &event.EdgeType,
			&payloadRaw, &event.Username); err != nil {
			return nil, fmt.Errorf("EventLogRepository.List - failed to scan event: %w", err)
		}

		event.State = domain.LifecycleState(state)
		event.Kind = domain.EntityKind(kind)

		if len(payloadRaw) > 0 {
			if err := json.Unmarshal(payloadRaw, &event.Payload); err != nil {
				return nil, fmt.Errorf("EventLogRepository.List - failed to unmarshal payload for event %d: %w", event.ID, err)
			}
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("EventLogRepository.List - error iterating rows: %w", err)
	}

	return events, nil
}

// HeadID retorna o maior id do log (0 para log vazio). Usado como chave de
// cache derivada: o mesmo head implica o mesmo fold.
func (r *EventLogRepository) HeadID(ctx context.Context) (int64, error) {
	var head int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM entity_events;`).Scan(&head)
	if err != nil {
		return 0, fmt.Errorf("EventLogRepository.HeadID - query failed: %w", err)
	}
	return head, nil
}

// CountLiveByType conta entidades vivas (último evento não-deletado) de um
// tipo declarado. Alimenta o impact scan do detector de schema.
func (r *EventLogRepository) CountLiveByType(ctx context.Context, kind domain.EntityKind, typeName string) (int, error) {
	searchJSON, err := postgres.BuildSearchJSON(domain.PropType, typeName)
	if err != nil {
		return 0, fmt.Errorf("EventLogRepository.CountLiveByType - failed to build search JSON: %w", err)
	}

	var query string
	switch kind {
	case domain.KindNode:
		query = `
			SELECT COUNT(*) FROM (
				SELECT DISTINCT ON (node_id) state, payload
				FROM entity_events
				WHERE kind = 'node'
				ORDER BY node_id, ts DESC, id DESC
			) latest
			WHERE latest.state <> 'deleted' AND latest.payload @> $1;
		`
	case domain.KindEdge:
		query = `
			SELECT COUNT(*) FROM (
				SELECT DISTINCT ON (source_id, target_id, edge_type) state, edge_type
				FROM entity_events
				WHERE kind = 'edge'
				ORDER BY source_id, target_id, edge_type, ts DESC, id DESC
			) latest
			WHERE latest.state <> 'deleted' AND latest.edge_type = $1;
		`
		searchJSON = typeName
	default:
		return 0, fmt.Errorf("EventLogRepository.CountLiveByType - invalid kind %q", kind)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, searchJSON).Scan(&count); err != nil {
		return 0, fmt.Errorf("EventLogRepository.CountLiveByType - query failed: %w", err)
	}

	return count, nil
}

func buildEventWhere(filter domain.EventFilter) (string, []interface{}) {
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
	if filter.ExcludeDeleted {
		clauses = append(clauses, "state <> 'deleted'")
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
