package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"debategraph/src/domain"
)

// EventLog é um log de eventos de entidades em memória com a mesma
// semântica do repositório Postgres: ids monotônicos, timestamps do
// momento do append e ordenação (timestamp ASC, id ASC) na leitura.
// Usado pelos testes para exercitar os serviços sem banco.
type EventLog struct {
	mu     sync.Mutex
	events []domain.EntityEvent
	nextID int64
	clock  time.Time
}

func NewEventLog() *EventLog {
	return &EventLog{
		nextID: 1,
		clock:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Append atribui id e timestamp como o banco faria. Um timestamp já
// preenchido é respeitado, o que deixa os testes forjarem a ordem do log.
func (l *EventLog) Append(_ context.Context, event domain.EntityEvent) (domain.EntityEvent, error) {
	if err := event.Validate(); err != nil {
		return domain.EntityEvent{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	event.ID = l.nextID
	l.nextID++

	if event.Timestamp.IsZero() {
		l.clock = l.clock.Add(time.Second)
		event.Timestamp = l.clock
	}

	l.events = append(l.events, event)
	return event, nil
}

func (l *EventLog) List(_ context.Context, filter domain.EventFilter) ([]domain.EntityEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.EntityEvent, 0, len(l.events))
	for _, event := range l.events {
		if !matchesEventFilter(event, filter) {
			continue
		}
		out = append(out, event)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (l *EventLog) HeadID(_ context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextID - 1, nil
}

// CountLiveByType conta as entidades cuja visão last-write-wins está viva
// com o tipo dado. Espelha a subquery DISTINCT ON do repositório real.
func (l *EventLog) CountLiveByType(_ context.Context, kind domain.EntityKind, typeName string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	latestNodes := make(map[string]domain.EntityEvent)
	latestEdges := make(map[domain.EdgeKey]domain.EntityEvent)
	for _, event := range l.events {
		switch event.Kind {
		case domain.KindNode:
			prev, ok := latestNodes[*event.NodeID]
			if !ok || prev.Before(event) {
				latestNodes[*event.NodeID] = event
			}
		case domain.KindEdge:
			key := event.EdgeKeyOf()
			prev, ok := latestEdges[key]
			if !ok || prev.Before(event) {
				latestEdges[key] = event
			}
		}
	}

	count := 0
	if kind == domain.KindNode {
		for _, event := range latestNodes {
			if event.State != domain.StateDeleted && event.Payload.TypeName() == typeName {
				count++
			}
		}
		return count, nil
	}

	for key, event := range latestEdges {
		if event.State != domain.StateDeleted && key.Type == typeName {
			count++
		}
	}
	return count, nil
}

// Len devolve o tamanho do log, para asserções de "nenhum append aconteceu".
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func matchesEventFilter(event domain.EntityEvent, filter domain.EventFilter) bool {
	if filter.Kind != nil && event.Kind != *filter.Kind {
		return false
	}
	if filter.NodeID != nil {
		if event.NodeID == nil || *event.NodeID != *filter.NodeID {
			return false
		}
	}
	if filter.Edge != nil {
		if event.Kind != domain.KindEdge || event.EdgeKeyOf() != *filter.Edge {
			return false
		}
	}
	if filter.ExcludeDeleted && event.State == domain.StateDeleted {
		return false
	}
	return true
}
