package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"debategraph/src/domain"
)

// RatingLog é o equivalente em memória do repositório de ratings.
type RatingLog struct {
	mu     sync.Mutex
	events []domain.RatingEvent
	nextID int64
	clock  time.Time
}

func NewRatingLog() *RatingLog {
	return &RatingLog{
		nextID: 1,
		clock:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (l *RatingLog) Append(_ context.Context, rating domain.RatingEvent) (domain.RatingEvent, error) {
	if err := rating.Validate(); err != nil {
		return domain.RatingEvent{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rating.ID = l.nextID
	l.nextID++

	if rating.Timestamp.IsZero() {
		l.clock = l.clock.Add(time.Second)
		rating.Timestamp = l.clock
	}

	l.events = append(l.events, rating)
	return rating, nil
}

func (l *RatingLog) List(_ context.Context, filter domain.RatingFilter) ([]domain.RatingEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.RatingEvent, 0, len(l.events))
	for _, rating := range l.events {
		if !matchesRatingFilter(rating, filter) {
			continue
		}
		out = append(out, rating)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (l *RatingLog) CountByPoll(_ context.Context, poll string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, rating := range l.events {
		if rating.Poll == poll {
			count++
		}
	}
	return count, nil
}

func (l *RatingLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func matchesRatingFilter(rating domain.RatingEvent, filter domain.RatingFilter) bool {
	if filter.Kind != nil && rating.Kind != *filter.Kind {
		return false
	}
	if filter.NodeID != nil {
		if rating.NodeID == nil || *rating.NodeID != *filter.NodeID {
			return false
		}
	}
	if filter.Edge != nil {
		if rating.Kind != domain.KindEdge || rating.EdgeKeyOf() != *filter.Edge {
			return false
		}
	}
	if filter.Poll != nil && rating.Poll != *filter.Poll {
		return false
	}
	if filter.Username != nil && rating.Username != *filter.Username {
		return false
	}
	return true
}
