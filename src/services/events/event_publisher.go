package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"debategraph/src/domain"
	"debategraph/src/infra/kafka"
)

// EventPublisher faz o fan-out best-effort dos eventos apendados para o
// Kafka. Falha de publicação vira log, nunca erro da operação primária: o
// log relacional já é durável quando chegamos aqui.
type EventPublisher struct {
	logger      *slog.Logger
	kafkaClient *kafka.KafkaClient
	entityTopic string
	ratingTopic string
}

func NewEventPublisher(
	logger *slog.Logger,
	kafkaClient *kafka.KafkaClient,
	entityTopic string,
	ratingTopic string,
) *EventPublisher {
	return &EventPublisher{
		logger:      logger,
		kafkaClient: kafkaClient,
		entityTopic: entityTopic,
		ratingTopic: ratingTopic,
	}
}

func (p *EventPublisher) PublishEntityEvent(_ context.Context, event domain.EntityEvent) {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("EventPublisher - failed to marshal entity event",
			"event_id", event.ID, "error", err)
		return
	}

	msg := kafka.Message{
		// Particiona pela chave da entidade para ordenar por entidade.
		Key:   entityPartitionKey(event),
		Value: value,
		Headers: map[string]string{
			"event_type":     fmt.Sprintf("entity.%s", event.State),
			"entity_kind":    string(event.Kind),
			"source_service": "debategraph-api",
			"schema_version": "v1",
		},
	}

	if err := p.kafkaClient.Producer([]kafka.Message{msg}, p.entityTopic); err != nil {
		p.logger.Warn("EventPublisher - failed to publish entity event",
			"event_id", event.ID, "topic", p.entityTopic, "error", err)
		return
	}

	p.logger.Debug("EventPublisher - published entity event",
		"event_id", event.ID, "topic", p.entityTopic)
}

func (p *EventPublisher) PublishRatingEvent(_ context.Context, rating domain.RatingEvent) {
	value, err := json.Marshal(rating)
	if err != nil {
		p.logger.Error("EventPublisher - failed to marshal rating event",
			"rating_id", rating.ID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   ratingPartitionKey(rating),
		Value: value,
		Headers: map[string]string{
			"event_type":     "rating.logged",
			"entity_kind":    string(rating.Kind),
			"poll":           rating.Poll,
			"source_service": "debategraph-api",
			"schema_version": "v1",
		},
	}

	if err := p.kafkaClient.Producer([]kafka.Message{msg}, p.ratingTopic); err != nil {
		p.logger.Warn("EventPublisher - failed to publish rating event",
			"rating_id", rating.ID, "topic", p.ratingTopic, "error", err)
		return
	}

	p.logger.Debug("EventPublisher - published rating event",
		"rating_id", rating.ID, "topic", p.ratingTopic)
}

func entityPartitionKey(event domain.EntityEvent) string {
	if event.Kind == domain.KindNode && event.NodeID != nil {
		return *event.NodeID
	}
	return event.EdgeKeyOf().String()
}

func ratingPartitionKey(rating domain.RatingEvent) string {
	if rating.Kind == domain.KindNode && rating.NodeID != nil {
		return *rating.NodeID
	}
	return rating.EdgeKeyOf().String()
}
