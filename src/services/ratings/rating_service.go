package ratings

import (
	"context"
	"fmt"
	"log/slog"

	"debategraph/src/domain"
	"debategraph/src/domain/schema"
)

// RatingLog é o contrato do log append-only de ratings.
type RatingLog interface {
	Append(ctx context.Context, rating domain.RatingEvent) (domain.RatingEvent, error)
	List(ctx context.Context, filter domain.RatingFilter) ([]domain.RatingEvent, error)
}

// Publisher é o fan-out best-effort de ratings apendados.
type Publisher interface {
	PublishRatingEvent(ctx context.Context, rating domain.RatingEvent)
}

// RatingService agrega opiniões por (entidade, poll): último rating por
// usuário e mediana sobre esses últimos. Estruturalmente paralelo ao
// materializador, mas chaveado por usuário e com estatística ordinal em vez
// de só last-write-wins.
type RatingService struct {
	logger    *slog.Logger
	log       RatingLog
	source    schema.ConfigSource
	publisher Publisher
}

func NewRatingService(
	logger *slog.Logger,
	log RatingLog,
	source schema.ConfigSource,
	publisher Publisher,
) *RatingService {
	return &RatingService{
		logger:    logger,
		log:       log,
		source:    source,
		publisher: publisher,
	}
}

func (s *RatingService) poll(name string) (schema.PollDef, error) {
	cfg, err := s.source.Load()
	if err != nil {
		return schema.PollDef{}, fmt.Errorf("failed to load type config: %w", err)
	}
	poll, ok := schema.NewRegistry(cfg).Poll(name)
	if !ok {
		return schema.PollDef{}, fmt.Errorf("%w: unknown poll %q", domain.ErrValidation, name)
	}
	return poll, nil
}

// LogRating apenda a opinião. Sem restrição de unicidade: o mesmo usuário
// pode reavaliar a mesma entidade/poll quantas vezes quiser; cada submissão
// vira um novo ponto do histórico.
func (s *RatingService) LogRating(ctx context.Context, rating domain.RatingEvent) (domain.RatingEvent, error) {
	if err := rating.Validate(); err != nil {
		return domain.RatingEvent{}, fmt.Errorf("RatingService.LogRating - %w", err)
	}

	poll, err := s.poll(rating.Poll)
	if err != nil {
		return domain.RatingEvent{}, fmt.Errorf("RatingService.LogRating - %w", err)
	}
	if _, ok := poll.Ordinal(rating.Value); !ok {
		return domain.RatingEvent{}, fmt.Errorf("RatingService.LogRating - %w: value %q is not on the scale of poll %q",
			domain.ErrValidation, rating.Value, rating.Poll)
	}

	appended, err := s.log.Append(ctx, rating)
	if err != nil {
		return domain.RatingEvent{}, fmt.Errorf("RatingService.LogRating - append failed: %w", err)
	}

	if s.publisher != nil {
		s.publisher.PublishRatingEvent(ctx, appended)
	}

	return appended, nil
}

// LatestRating retorna a opinião mais recente de um usuário para a
// entidade/poll, ou nil se ele nunca avaliou. Nunca erro por ausência.
func (s *RatingService) LatestRating(ctx context.Context, ref domain.EntityRef, poll string, username string) (*domain.RatingEvent, error) {
	events, err := s.log.List(ctx, ref.RatingFilterFor(poll, &username))
	if err != nil {
		return nil, fmt.Errorf("RatingService.LatestRating - failed to list ratings: %w", err)
	}

	latest, ok := latestOf(events)
	if !ok {
		return nil, nil
	}
	return &latest, nil
}

// AllLatestRatings agrupa por usuário e fica com o evento de maior
// timestamp de cada um. Cardinalidade = número de avaliadores distintos.
func (s *RatingService) AllLatestRatings(ctx context.Context, ref domain.EntityRef, poll string) ([]domain.RatingEvent, error) {
	events, err := s.log.List(ctx, ref.RatingFilterFor(poll, nil))
	if err != nil {
		return nil, fmt.Errorf("RatingService.AllLatestRatings - failed to list ratings: %w", err)
	}

	return latestPerUser(events), nil
}

// MedianRating calcula a mediana ordinal sobre os últimos ratings por
// usuário e devolve o rótulo da escala, ou nil com zero avaliadores.
// Contagem par desempata pela mediana inferior; a consistência importa mais
// do que o lado escolhido.
func (s *RatingService) MedianRating(ctx context.Context, ref domain.EntityRef, poll string) (*string, error) {
	pollDef, err := s.poll(poll)
	if err != nil {
		return nil, fmt.Errorf("RatingService.MedianRating - %w", err)
	}

	latest, err := s.AllLatestRatings(ctx, ref, poll)
	if err != nil {
		return nil, fmt.Errorf("RatingService.MedianRating - %w", err)
	}

	return medianLabel(latest, pollDef, s.logger, ref)
}

// MediansForManyNodes é equivalente, por contrato, a chamar MedianRating
// independentemente para cada id: o lote é otimização, nunca mudança
// semântica.
func (s *RatingService) MediansForManyNodes(ctx context.Context, nodeIDs []string, poll string) (map[string]*string, error) {
	out := make(map[string]*string, len(nodeIDs))
	for _, id := range nodeIDs {
		median, err := s.MedianRating(ctx, domain.NodeRef(id), poll)
		if err != nil {
			return nil, fmt.Errorf("RatingService.MediansForManyNodes - node %s: %w", id, err)
		}
		out[id] = median
	}
	return out, nil
}

// MediansForManyEdges usa a chave composta (source, target, type) com o
// mesmo algoritmo de dois estágios.
func (s *RatingService) MediansForManyEdges(ctx context.Context, keys []domain.EdgeKey, poll string) (map[domain.EdgeKey]*string, error) {
	out := make(map[domain.EdgeKey]*string, len(keys))
	for _, key := range keys {
		median, err := s.MedianRating(ctx, domain.EdgeRef(key), poll)
		if err != nil {
			return nil, fmt.Errorf("RatingService.MediansForManyEdges - edge %s: %w", key, err)
		}
		out[key] = median
	}
	return out, nil
}

func medianLabel(latest []domain.RatingEvent, pollDef schema.PollDef, logger *slog.Logger, ref domain.EntityRef) (*string, error) {
	ordinals := make([]int, 0, len(latest))
	for _, rating := range latest {
		ordinal, ok := pollDef.Ordinal(rating.Value)
		if !ok {
			// Valor fora da escala corrente (o poll mudou depois do voto).
			// Drift de schema não derruba leituras.
			if logger != nil {
				logger.Warn("RatingService - skipping rating off the current scale",
					"entity", ref.String(), "poll", pollDef.Name, "value", rating.Value)
			}
			continue
		}
		ordinals = append(ordinals, ordinal)
	}

	median, ok := medianOrdinal(ordinals)
	if !ok {
		return nil, nil
	}

	label, ok := pollDef.Label(median)
	if !ok {
		return nil, fmt.Errorf("median ordinal %d is outside the scale of poll %q", median, pollDef.Name)
	}
	return &label, nil
}
