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

var _ = Describe("CurrentGraph", func() {
	var (
		eventLog     *memory.EventLog
		configSource *memory.MutableConfigSource
		graphService *graph.GraphService
		sink         *memory.RecordingSink
		ctx          context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		eventLog = memory.NewEventLog()
		configSource = memory.NewMutableConfigSource(stubs.NewDebateConfigStub().Get())
		sink = memory.NewRecordingSink()

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		graphService = graph.NewGraphService(logger, eventLog, configSource, []domain.GraphSink{sink}, nil)
	})

	Context("when folding the event log", func() {
		It("returns the empty graph for an empty log", func() {
			// ACT
			g, err := graphService.CurrentGraph(ctx)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Nodes).To(BeEmpty())
			Expect(g.Edges).To(BeEmpty())
		})

		It("keeps only the latest event per key", func() {
			// ARRANGE
			created, err := graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("claim-1").WithProperties(domain.Properties{
				"title": "v1",
			}).Get(), "alice")
			Expect(err).NotTo(HaveOccurred())
			_, err = graphService.UpdateNode(ctx, domain.Node{
				ID:         created.ID,
				Properties: domain.Properties{"title": "v2"},
			}, "bob")
			Expect(err).NotTo(HaveOccurred())

			// ACT
			g, err := graphService.CurrentGraph(ctx)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Nodes).To(HaveLen(1))
			Expect(g.Nodes["claim-1"].Properties["title"]).To(Equal("v2"))
			Expect(g.Nodes["claim-1"].UpdatedBy).To(Equal("bob"))
		})

		It("omits deleted entities", func() {
			// ARRANGE
			_, err := graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("claim-1").Get(), "alice")
			Expect(err).NotTo(HaveOccurred())
			_, err = graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("claim-2").Get(), "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(graphService.DeleteNode(ctx, "claim-1", "alice")).To(Succeed())

			// ACT
			g, err := graphService.CurrentGraph(ctx)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Nodes).To(HaveKey("claim-2"))
			Expect(g.Nodes).NotTo(HaveKey("claim-1"))
		})

		It("is idempotent: folding the same log twice yields the same graph", func() {
			// ARRANGE
			_, err := graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("claim-1").Get(), "alice")
			Expect(err).NotTo(HaveOccurred())
			_, err = graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("arg-1").WithType("argument").WithProperties(domain.Properties{
				"title": "an argument",
			}).Get(), "alice")
			Expect(err).NotTo(HaveOccurred())
			_, err = graphService.CreateEdge(ctx, stubs.NewEdgeStub("arg-1", "claim-1").Get(), "alice")
			Expect(err).NotTo(HaveOccurred())

			// ACT
			first, err := graphService.CurrentGraph(ctx)
			Expect(err).NotTo(HaveOccurred())
			second, err := graphService.CurrentGraph(ctx)
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			Expect(cmp.Diff(first.Nodes, second.Nodes, comparer.PropertiesSemantic())).To(BeEmpty())
			Expect(cmp.Diff(first.Edges, second.Edges, comparer.PropertiesSemantic())).To(BeEmpty())
		})

		It("skips entities whose type left the config, without failing the read", func() {
			// ARRANGE
			_, err := graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("claim-1").Get(), "alice")
			Expect(err).NotTo(HaveOccurred())
			_, err = graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("src-1").WithType("source").WithProperties(domain.Properties{
				"title": "a source",
			}).Get(), "alice")
			Expect(err).NotTo(HaveOccurred())

			configSource.Set(stubs.NewDebateConfigStub().WithoutNodeType("source").Get())

			// ACT
			g, err := graphService.CurrentGraph(ctx)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Nodes).To(HaveKey("claim-1"))
			Expect(g.Nodes).NotTo(HaveKey("src-1"))
		})
	})

	Context("when mirroring writes to graph sinks", func() {
		It("delivers each successful append to the sink", func() {
			// ARRANGE
			created, err := graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("claim-1").Get(), "alice")
			Expect(err).NotTo(HaveOccurred())

			// ACT
			Expect(graphService.DeleteNode(ctx, created.ID, "alice")).To(Succeed())

			// ASSERT
			Expect(sink.Calls).To(Equal([]string{"create_node:claim-1", "delete_node:claim-1"}))
		})

		It("does not fail the write when the sink is down", func() {
			// ARRANGE
			sink.Err = context.DeadlineExceeded

			// ACT
			_, err := graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("claim-1").Get(), "alice")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(eventLog.Len()).To(Equal(1))
		})
	})
})

var _ = Describe("InducedSubgraph", func() {
	var (
		graphService *graph.GraphService
		ctx          context.Context
	)

	// claim-1 <- arg-1 <- src-1 (via cites), claim-2 isolado.
	BeforeEach(func() {
		ctx = context.Background()

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		graphService = graph.NewGraphService(logger, memory.NewEventLog(), stubs.NewDebateConfigStub().Source(), nil, nil)

		_, err := graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("claim-1").Get(), "alice")
		Expect(err).NotTo(HaveOccurred())
		_, err = graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("claim-2").Get(), "alice")
		Expect(err).NotTo(HaveOccurred())
		_, err = graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("arg-1").WithType("argument").WithProperties(domain.Properties{
			"title": "an argument",
		}).Get(), "alice")
		Expect(err).NotTo(HaveOccurred())
		_, err = graphService.CreateNode(ctx, stubs.NewNodeStub().WithID("src-1").WithType("source").WithProperties(domain.Properties{
			"title": "a source",
		}).Get(), "alice")
		Expect(err).NotTo(HaveOccurred())

		_, err = graphService.CreateEdge(ctx, stubs.NewEdgeStub("arg-1", "claim-1").Get(), "alice")
		Expect(err).NotTo(HaveOccurred())
		_, err = graphService.CreateEdge(ctx, stubs.NewEdgeStub("src-1", "arg-1").WithType("cites").WithProperties(domain.Properties{
			"quote": "as seen in",
		}).Get(), "alice")
		Expect(err).NotTo(HaveOccurred())
	})

	When("levels is zero", func() {
		It("returns the singleton start node with no edges", func() {
			// ACT
			sub, err := graphService.InducedSubgraph(ctx, "claim-1", 0)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(sub.Nodes).To(HaveLen(1))
			Expect(sub.Nodes).To(HaveKey("claim-1"))
			Expect(sub.Edges).To(BeEmpty())
		})
	})

	When("levels bounds the traversal", func() {
		It("crosses edges in both directions up to the limit", func() {
			// ACT: claim-1 -> arg-1 em um salto, contra a direção declarada.
			sub, err := graphService.InducedSubgraph(ctx, "claim-1", 1)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(sub.Nodes).To(HaveLen(2))
			Expect(sub.Nodes).To(HaveKey("arg-1"))
			Expect(sub.Edges).To(HaveLen(1))
		})

		It("includes only edges with both endpoints inside the boundary", func() {
			// ACT
			sub, err := graphService.InducedSubgraph(ctx, "claim-1", 2)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(sub.Nodes).To(HaveLen(3))
			Expect(sub.Nodes).To(HaveKey("src-1"))
			Expect(sub.Edges).To(HaveLen(2))
			Expect(sub.Nodes).NotTo(HaveKey("claim-2"))
		})
	})

	When("the start node does not exist", func() {
		It("returns not found", func() {
			// ACT
			_, err := graphService.InducedSubgraph(ctx, "ghost", 1)

			// ASSERT
			Expect(err).To(MatchError(domain.ErrEntityNotFound))
		})
	})

	When("the start node has no neighbors", func() {
		It("returns the singleton", func() {
			// ACT
			sub, err := graphService.InducedSubgraph(ctx, "claim-2", 3)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(sub.Nodes).To(HaveLen(1))
			Expect(sub.Edges).To(BeEmpty())
		})
	})
})
