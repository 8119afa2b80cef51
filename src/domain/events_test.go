package domain_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"debategraph/src/domain"
)

func strPtr(s string) *string { return &s }

var _ = Describe("EntityEvent validation", func() {
	nodeEvent := func() domain.EntityEvent {
		return domain.EntityEvent{
			State:    domain.StateCreated,
			Kind:     domain.KindNode,
			NodeID:   strPtr("claim-1"),
			Payload:  domain.Properties{"type": "claim", "title": "a claim"},
			Username: "alice",
		}
	}

	edgeEvent := func() domain.EntityEvent {
		return domain.EntityEvent{
			State:    domain.StateCreated,
			Kind:     domain.KindEdge,
			SourceID: strPtr("arg-1"),
			TargetID: strPtr("claim-1"),
			EdgeType: strPtr("supports"),
			Payload:  domain.Properties{"type": "supports"},
			Username: "alice",
		}
	}

	It("accepts well-formed node and edge events", func() {
		Expect(nodeEvent().Validate()).To(Succeed())
		Expect(edgeEvent().Validate()).To(Succeed())
	})

	It("requires node_id on node events", func() {
		event := nodeEvent()
		event.NodeID = nil
		Expect(event.Validate()).To(MatchError(domain.ErrValidation))
	})

	It("rejects edge identifiers on node events", func() {
		event := nodeEvent()
		event.SourceID = strPtr("arg-1")
		Expect(event.Validate()).To(MatchError(domain.ErrValidation))
	})

	It("requires the full triple on edge events", func() {
		event := edgeEvent()
		event.EdgeType = nil
		Expect(event.Validate()).To(MatchError(domain.ErrValidation))

		event = edgeEvent()
		event.TargetID = strPtr("")
		Expect(event.Validate()).To(MatchError(domain.ErrValidation))
	})

	It("rejects node_id on edge events", func() {
		event := edgeEvent()
		event.NodeID = strPtr("claim-1")
		Expect(event.Validate()).To(MatchError(domain.ErrValidation))
	})

	It("requires an empty payload on delete events", func() {
		event := nodeEvent()
		event.State = domain.StateDeleted
		Expect(event.Validate()).To(MatchError(domain.ErrValidation))

		event.Payload = nil
		Expect(event.Validate()).To(Succeed())
	})

	It("requires a declared type outside of deletes", func() {
		event := nodeEvent()
		delete(event.Payload, "type")
		Expect(event.Validate()).To(MatchError(domain.ErrValidation))
	})

	It("requires the acting username", func() {
		event := nodeEvent()
		event.Username = ""
		Expect(event.Validate()).To(MatchError(domain.ErrValidation))
	})

	It("rejects unknown lifecycle states and kinds", func() {
		event := nodeEvent()
		event.State = "archived"
		Expect(event.Validate()).To(MatchError(domain.ErrValidation))

		event = nodeEvent()
		event.Kind = "hyperedge"
		Expect(event.Validate()).To(MatchError(domain.ErrValidation))
	})
})

var _ = Describe("Event ordering", func() {
	It("orders by timestamp with the id as tiebreak", func() {
		base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

		earlier := domain.EntityEvent{ID: 9, Timestamp: base}
		later := domain.EntityEvent{ID: 1, Timestamp: base.Add(time.Second)}
		Expect(earlier.Before(later)).To(BeTrue())
		Expect(later.Before(earlier)).To(BeFalse())

		// Mesmo timestamp: o id de inserção decide.
		twin := domain.EntityEvent{ID: 10, Timestamp: base}
		Expect(earlier.Before(twin)).To(BeTrue())
		Expect(twin.Before(earlier)).To(BeFalse())
	})
})

var _ = Describe("Properties", func() {
	It("reads the declared type under the reserved key", func() {
		props := domain.Properties{"type": "claim"}
		Expect(props.TypeName()).To(Equal("claim"))

		Expect(domain.Properties(nil).TypeName()).To(BeEmpty())
		Expect(domain.Properties{"type": 42}.TypeName()).To(BeEmpty())
	})

	It("clones shallowly", func() {
		props := domain.Properties{"title": "original"}
		clone := props.Clone()
		clone["title"] = "changed"

		Expect(props["title"]).To(Equal("original"))
	})
})
