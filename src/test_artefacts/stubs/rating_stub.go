package stubs

import (
	"debategraph/src/domain"

	"github.com/brianvoe/gofakeit/v6"
)

// RatingStub produz eventos de rating para um nó no poll agreement.
type RatingStub struct {
	rating domain.RatingEvent
}

func NewRatingStub(nodeID string) RatingStub {
	rating := domain.RatingEvent{
		Kind:     domain.KindNode,
		NodeID:   &nodeID,
		Poll:     "agreement",
		Value:    "neutral",
		Username: gofakeit.Username(),
	}

	return RatingStub{rating: rating}
}

func NewEdgeRatingStub(key domain.EdgeKey) RatingStub {
	rating := domain.RatingEvent{
		Kind:     domain.KindEdge,
		SourceID: &key.Source,
		TargetID: &key.Target,
		EdgeType: &key.Type,
		Poll:     "relevance",
		Value:    "somewhat-relevant",
		Username: gofakeit.Username(),
	}

	return RatingStub{rating: rating}
}

func (rs RatingStub) WithPoll(poll string) RatingStub {
	rs.rating.Poll = poll
	return rs
}

func (rs RatingStub) WithValue(value string) RatingStub {
	rs.rating.Value = value
	return rs
}

func (rs RatingStub) WithUsername(username string) RatingStub {
	rs.rating.Username = username
	return rs
}

func (rs RatingStub) Get() domain.RatingEvent {
	return rs.rating
}
