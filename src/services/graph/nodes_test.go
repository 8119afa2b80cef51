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

var _ = Describe("Node operations", func() {
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
	})

	Context("when creating nodes", func() {
		When("no id is provided", func() {
			It("allocates a fresh identifier and materializes the node", func() {
				// ARRANGE
				node := stubs.NewNodeStub().Get()

				// ACT
				created, err := graphService.CreateNode(ctx, node, "alice")

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(created.ID).NotTo(BeEmpty())
				Expect(created.Type).To(Equal("claim"))
				Expect(created.UpdatedBy).To(Equal("alice"))

				fetched, err := graphService.GetNode(ctx, created.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(cmp.Diff(*created, *fetched, comparer.PropertiesSemantic(), comparer.TimeWithinTolerance(1000))).To(BeEmpty())
			})
		})

		When("an explicit id is provided", func() {
			It("keeps the caller's id", func() {
				// ACT
				created, err := graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("claim-1").Get(), "alice")

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(created.ID).To(Equal("claim-1"))
			})

			It("rejects a second create for a live id", func() {
				// ARRANGE
				_, err := graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("claim-1").Get(), "alice")
				Expect(err).NotTo(HaveOccurred())
				logLen := eventLog.Len()

				// ACT
				_, err = graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("claim-1").Get(), "bob")

				// ASSERT
				Expect(err).To(MatchError(domain.ErrValidation))
				Expect(eventLog.Len()).To(Equal(logLen))
			})
		})

		When("the payload violates the type config", func() {
			It("rejects an unknown node type without appending", func() {
				// ACT
				_, err := graphService.CreateNode(ctx, stubs.NewNodeStub().WithType("verdict").Get(), "alice")

				// ASSERT
				Expect(err).To(MatchError(domain.ErrValidation))
				Expect(eventLog.Len()).To(BeZero())
			})

			It("rejects an undeclared property without appending", func() {
				// ACT
				_, err := graphService.CreateNode(ctx, stubs.NewNodeStub().WithProperty("severity", "high").Get(), "alice")

				// ASSERT
				Expect(err).To(MatchError(domain.ErrValidation))
				Expect(eventLog.Len()).To(BeZero())
			})
		})
	})

	Context("when updating nodes", func() {
		It("merges shallowly: incoming fields win, omitted fields survive", func() {
			// ARRANGE
			created, err := graphService.CreateNode(ctx, stubs.NewNodeStub().WithProperties(domain.Properties{
				"title":       "original title",
				"description": "original description",
				"status":      "open",
			}).Get(), "alice")
			Expect(err).NotTo(HaveOccurred())

			// ACT
			updated, err := graphService.UpdateNode(ctx, domain.Node{
				ID:         created.ID,
				Properties: domain.Properties{"status": "resolved"},
			}, "bob")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Properties["status"]).To(Equal("resolved"))
			Expect(updated.Properties["title"]).To(Equal("original title"))
			Expect(updated.Properties["description"]).To(Equal("original description"))
			Expect(updated.UpdatedBy).To(Equal("bob"))
		})

		It("returns not found for an id that never existed", func() {
			// ACT
			_, err := graphService.UpdateNode(ctx, domain.Node{
				ID:         "ghost",
				Properties: domain.Properties{"status": "open"},
			}, "alice")

			// ASSERT
			Expect(err).To(MatchError(domain.ErrEntityNotFound))
			Expect(eventLog.Len()).To(BeZero())
		})

		It("re-validates the merged payload against the registry", func() {
			// ARRANGE
			created, err := graphService.CreateNode(ctx, stubs.NewNodeStub().Get(), "alice")
			Expect(err).NotTo(HaveOccurred())

			// ACT
			_, err = graphService.UpdateNode(ctx, domain.Node{
				ID:         created.ID,
				Properties: domain.Properties{"severity": "high"},
			}, "alice")

			// ASSERT
			Expect(err).To(MatchError(domain.ErrValidation))
		})
	})

	Context("when deleting nodes", func() {
		It("hides the node from reads after the delete event", func() {
			// ARRANGE
			created, err := graphService.CreateNode(ctx, stubs.NewNodeStub().Get(), "alice")
			Expect(err).NotTo(HaveOccurred())

			// ACT
			err = graphService.DeleteNode(ctx, created.ID, "alice")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			_, err = graphService.GetNode(ctx, created.ID)
			Expect(err).To(MatchError(domain.ErrEntityNotFound))
		})

		It("rejects deleting a node that does not exist", func() {
			// ACT
			err := graphService.DeleteNode(ctx, "ghost", "alice")

			// ASSERT
			Expect(err).To(MatchError(domain.ErrEntityNotFound))
			Expect(eventLog.Len()).To(BeZero())
		})

		It("allows re-creating the same id after deletion with fresh state", func() {
			// ARRANGE
			created, err := graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("claim-1").WithProperties(domain.Properties{
				"title": "first life",
			}).Get(), "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(graphService.DeleteNode(ctx, created.ID, "alice")).To(Succeed())

			// ACT
			revived, err := graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("claim-1").WithProperties(domain.Properties{
				"title": "second life",
			}).Get(), "bob")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(revived.ID).To(Equal("claim-1"))

			fetched, err := graphService.GetNode(ctx, "claim-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(fetched.Properties["title"]).To(Equal("second life"))
			Expect(fetched.Properties).NotTo(HaveKey("status"))
		})
	})

	Context("when reading node history", func() {
		It("returns every lifecycle event including deletions, oldest first", func() {
			// ARRANGE
			created, err := graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("claim-1").Get(), "alice")
			Expect(err).NotTo(HaveOccurred())
			_, err = graphService.UpdateNode(ctx, domain.Node{
				ID:         created.ID,
				Properties: domain.Properties{"status": "resolved"},
			}, "bob")
			Expect(err).NotTo(HaveOccurred())
			Expect(graphService.DeleteNode(ctx, created.ID, "carol")).To(Succeed())

			// ACT
			history, err := graphService.GetNodeHistory(ctx, created.ID)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(3))
			Expect(history[0].State).To(Equal(domain.StateCreated))
			Expect(history[1].State).To(Equal(domain.StateUpdated))
			Expect(history[2].State).To(Equal(domain.StateDeleted))
		})

		It("returns not found for an id with no events", func() {
			// ACT
			_, err := graphService.GetNodeHistory(ctx, "ghost")

			// ASSERT
			Expect(err).To(MatchError(domain.ErrEntityNotFound))
		})
	})
})
