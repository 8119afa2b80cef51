package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"debategraph/src/domain"
	"debategraph/src/infra/redis"
)

// CachedEventLogRepository envolve o EventLogRepository com um cache
// read-through para o full scan de materialização. A chave é derivada do
// head do log (max id), então um hit é por construção idêntico ao fold do
// mesmo estado do log: nada de janela de consistência eventual, nada de
// invalidação. O TTL só descarta memória.
type CachedEventLogRepository struct {
	logger      *slog.Logger
	inner       *EventLogRepository
	redisClient *redis.RedisClient
}

func NewCachedEventLogRepository(
	logger *slog.Logger,
	inner *EventLogRepository,
	redisClient *redis.RedisClient,
) *CachedEventLogRepository {
	return &CachedEventLogRepository{
		logger:      logger,
		inner:       inner,
		redisClient: redisClient,
	}
}

func (r *CachedEventLogRepository) Append(ctx context.Context, event domain.EntityEvent) (domain.EntityEvent, error) {
	return r.inner.Append(ctx, event)
}

func (r *CachedEventLogRepository) HeadID(ctx context.Context) (int64, error) {
	return r.inner.HeadID(ctx)
}

func (r *CachedEventLogRepository) CountLiveByType(ctx context.Context, kind domain.EntityKind, typeName string) (int, error) {
	return r.inner.CountLiveByType(ctx, kind, typeName)
}

func (r *CachedEventLogRepository) List(ctx context.Context, filter domain.EventFilter) ([]domain.EntityEvent, error) {
	// Só o full scan (filtro vazio) vale a pena cachear; consultas pontuais
	// já são baratas via índice.
	if !isFullScan(filter) || r.redisClient == nil {
		return r.inner.List(ctx, filter)
	}

	head, err := r.inner.HeadID(ctx)
	if err != nil {
		return nil, fmt.Errorf("CachedEventLogRepository.List - failed to resolve log head: %w", err)
	}

	cacheKey := fmt.Sprintf("debategraph:events:head:%d", head)

	cached, found, err := r.redisClient.GetKey(ctx, cacheKey)
	if err != nil {
		// Erro de cache degrada para o Postgres, nunca falha a leitura.
		r.logger.Warn("CachedEventLogRepository.List - cache error, falling back to postgres",
			"key", cacheKey, "error", err)
	}
	if found && err == nil {
		var events []domain.EntityEvent
		if err := json.Unmarshal([]byte(cached), &events); err == nil {
			return events, nil
		}
		r.logger.Warn("CachedEventLogRepository.List - corrupt cache entry ignored", "key", cacheKey)
	}

	events, err := r.inner.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	go func() {
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		serialized, err := json.Marshal(events)
		if err != nil {
			r.logger.Warn("CachedEventLogRepository.List - failed to serialize for cache", "error", err)
			return
		}
		if err := r.redisClient.SetKey(ctxWithTimeout, cacheKey, string(serialized)); err != nil {
			r.logger.Warn("CachedEventLogRepository.List - failed to populate cache",
				"key", cacheKey, "error", err)
		}
	}()

	return events, nil
}

func isFullScan(filter domain.EventFilter) bool {
	return filter.Kind == nil && filter.NodeID == nil && filter.Edge == nil && !filter.ExcludeDeleted
}
