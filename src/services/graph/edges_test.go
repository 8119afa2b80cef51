package graph_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"debategraph/src/domain"
	"debategraph/src/services/graph"
	"debategraph/src/test_artefacts/comparer"
	"debategraph/src/test_artefacts/memory"
	"debategraph/src/test_artefacts/stubs"
)

var _ = Describe("Edge operations", func() {
	var (
		eventLog     *memory.EventLog
		graphService *graph.GraphService
		ctx          context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		eventLog = memory.NewEventLog()

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		graphService = graph.NewGraphService(logger, eventLog, stubs.NewDebateConfigStub().Source(), nil, nil)

		// Endpoints compartilhados pelos casos.
		_, err := graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("claim-1").Get(), "alice")
		Expect(err).NotTo(HaveOccurred())
		_, err = graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("arg-1").WithType("argument").WithProperties(domain.Properties{
			"title": "an argument",
		}).Get(), "alice")
		Expect(err).NotTo(HaveOccurred())
	})

	Context("when creating edges", func() {
		It("creates an edge between two live endpoints", func() {
			// ACT
			created, err := graphService.CreateEdge(ctx, stubs.NewEdgeStub("arg-1", "claim-1").Get(), "alice")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Key()).To(Equal(domain.EdgeKey{Source: "arg-1", Target: "claim-1", Type: "supports"}))

			fetched, err := graphService.GetEdge(ctx, created.Key())
			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Diff(*created, *fetched, comparer.IgnoreFieldsFor[domain.Edge]("UpdatedAt"), comparer.PropertiesSemantic())).To(BeEmpty())
		})

		It("rejects an edge whose endpoint does not exist, leaving the log untouched", func() {
			// ARRANGE
			logLen := eventLog.Len()

			// ACT
			_, err := graphService.CreateEdge(ctx, stubs.NewEdgeStub("arg-1", "ghost").Get(), "alice")

			// ASSERT
			Expect(err).To(MatchError(domain.ErrEntityNotFound))
			Expect(eventLog.Len()).To(Equal(logLen))
		})

		It("rejects an edge whose endpoint types violate the constraint", func() {
			// ACT: supports exige source argument, não claim.
			_, err := graphService.CreateEdge(ctx, stubs.NewEdgeStub("claim-1", "arg-1").Get(), "alice")

			// ASSERT
			Expect(err).To(MatchError(domain.ErrValidation))
		})

		It("rejects a duplicate of a live triple", func() {
			// ARRANGE
			_, err := graphService.CreateEdge(ctx, stubs.NewEdgeStub("arg-1", "claim-1").Get(), "alice")
			Expect(err).NotTo(HaveOccurred())

			// ACT
			_, err = graphService.CreateEdge(ctx, stubs.NewEdgeStub("arg-1", "claim-1").Get(), "bob")

			// ASSERT
			Expect(err).To(MatchError(domain.ErrValidation))
		})

		It("treats edges differing only in type as distinct", func() {
			// ARRANGE
			_, err := graphService.CreateEdge(ctx, stubs.NewEdgeStub("arg-1", "claim-1").Get(), "alice")
			Expect(err).NotTo(HaveOccurred())

			// ACT
			refuting, err := graphService.CreateEdge(ctx, stubs.NewEdgeStub("arg-1", "claim-1").WithType("refutes").Get(), "bob")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(refuting.Type).To(Equal("refutes"))

			g, err := graphService.CurrentGraph(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Edges).To(HaveLen(2))
		})

		It("rejects an unknown edge type", func() {
			// ACT
			_, err := graphService.CreateEdge(ctx, stubs.NewEdgeStub("arg-1", "claim-1").WithType("contradicts").Get(), "alice")

			// ASSERT
			Expect(err).To(MatchError(domain.ErrValidation))
		})
	})

	Context("when updating edges", func() {
		It("merges shallowly and preserves the identity type", func() {
			// ARRANGE
			created, err := graphService.CreateEdge(ctx, stubs.NewEdgeStub("arg-1", "claim-1").WithProperties(domain.Properties{
				"strength": "weak",
				"notes":    "initial notes",
			}).Get(), "alice")
			Expect(err).NotTo(HaveOccurred())

			// ACT
			updated, err := graphService.UpdateEdge(ctx, domain.Edge{
				Source:     created.Source,
				Target:     created.Target,
				Type:       created.Type,
				Properties: domain.Properties{"strength": "strong"},
			}, "bob")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Properties["strength"]).To(Equal("strong"))
			Expect(updated.Properties["notes"]).To(Equal("initial notes"))
			Expect(updated.Type).To(Equal("supports"))
		})

		It("returns not found for a triple that never existed", func() {
			// ACT
			_, err := graphService.UpdateEdge(ctx, domain.Edge{
				Source:     "arg-1",
				Target:     "claim-1",
				Type:       "supports",
				Properties: domain.Properties{"strength": "strong"},
			}, "alice")

			// ASSERT
			Expect(err).To(MatchError(domain.ErrEntityNotFound))
		})
	})

	Context("when deleting edges", func() {
		It("requires the full triple", func() {
			// ACT
			err := graphService.DeleteEdge(ctx, domain.EdgeKey{Source: "arg-1", Target: "claim-1"}, "alice")

			// ASSERT
			Expect(err).To(MatchError(domain.ErrValidation))
		})

		It("hides the edge after deletion and allows re-creation", func() {
			// ARRANGE
			created, err := graphService.CreateEdge(ctx, stubs.NewEdgeStub("arg-1", "claim-1").Get(), "alice")
			Expect(err).NotTo(HaveOccurred())
			key := created.Key()

			// ACT
			Expect(graphService.DeleteEdge(ctx, key, "alice")).To(Succeed())

			// ASSERT
			_, err = graphService.GetEdge(ctx, key)
			Expect(err).To(MatchError(domain.ErrEntityNotFound))

			revived, err := graphService.CreateEdge(ctx, stubs.NewEdgeStub("arg-1", "claim-1").WithProperties(domain.Properties{
				"strength": "moderate",
			}).Get(), "bob")
			Expect(err).NotTo(HaveOccurred())
			Expect(revived.Properties["strength"]).To(Equal("moderate"))
			Expect(revived.Properties).NotTo(HaveKey("notes"))
		})
	})

	Context("when reading edge history", func() {
		It("returns the full lifecycle of the triple", func() {
			// ARRANGE
			created, err := graphService.CreateEdge(ctx, stubs.NewEdgeStub("arg-1", "claim-1").Get(), "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(graphService.DeleteEdge(ctx, created.Key(), "bob")).To(Succeed())

			// ACT
			history, err := graphService.GetEdgeHistory(ctx, created.Key())

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(2))
			Expect(history[0].State).To(Equal(domain.StateCreated))
			Expect(history[1].State).To(Equal(domain.StateDeleted))
		})
	})
})
