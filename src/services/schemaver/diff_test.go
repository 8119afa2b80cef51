package schemaver_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"debategraph/src/domain"
	"debategraph/src/domain/schema"
	"debategraph/src/services/schemaver"
	"debategraph/src/test_artefacts/stubs"
)

var _ = Describe("Diff", func() {
	It("reports no changes between a config and itself", func() {
		// ARRANGE
		cfg := stubs.NewDebateConfigStub().Get()

		// ACT
		changes := schemaver.Diff(cfg, cfg)

		// ASSERT
		Expect(changes).To(BeEmpty())
	})

	It("flags additions as non-destructive", func() {
		// ARRANGE
		old := stubs.NewDebateConfigStub().Get()
		new := stubs.NewDebateConfigStub().
			WithNodeType(schema.NodeTypeDef{Name: "verdict", Properties: []string{"title"}}).
			WithPoll(schema.PollDef{Name: "credibility", Scale: []string{"low", "medium", "high"}}).
			Get()

		// ACT
		changes := schemaver.Diff(old, new)

		// ASSERT
		Expect(changes).To(HaveLen(2))
		for _, change := range changes {
			Expect(change.Destructive).To(BeFalse())
		}
		Expect(changes[0].Kind).To(Equal(domain.ChangeNodeTypeAdded))
		Expect(changes[0].Subject).To(Equal("verdict"))
		Expect(changes[1].Kind).To(Equal(domain.ChangePollAdded))
		Expect(changes[1].Subject).To(Equal("credibility"))
	})

	It("flags a removed node type as destructive with a risk description", func() {
		// ARRANGE
		old := stubs.NewDebateConfigStub().Get()
		new := stubs.NewDebateConfigStub().WithoutNodeType("source").Get()

		// ACT
		changes := schemaver.Diff(old, new)

		// ASSERT
		Expect(changes).To(HaveLen(1))
		Expect(changes[0].Kind).To(Equal(domain.ChangeNodeTypeRemoved))
		Expect(changes[0].Subject).To(Equal("source"))
		Expect(changes[0].Destructive).To(BeTrue())
		Expect(changes[0].Risk).NotTo(BeEmpty())
	})

	It("flags a removed property as destructive, an added one as not", func() {
		// ARRANGE
		old := stubs.NewDebateConfigStub().Get()
		new := stubs.NewDebateConfigStub().Get()
		for i := range new.NodeTypes {
			if new.NodeTypes[i].Name == "claim" {
				// scope sai, summary entra.
				new.NodeTypes[i].Properties = []string{"title", "description", "tags", "status", "summary"}
			}
		}

		// ACT
		changes := schemaver.Diff(old, new)

		// ASSERT
		Expect(changes).To(HaveLen(2))
		Expect(changes[0].Kind).To(Equal(domain.ChangePropertyAdded))
		Expect(changes[0].Detail).To(Equal("summary"))
		Expect(changes[0].Destructive).To(BeFalse())
		Expect(changes[1].Kind).To(Equal(domain.ChangePropertyRemoved))
		Expect(changes[1].Detail).To(Equal("scope"))
		Expect(changes[1].Destructive).To(BeTrue())
	})

	It("flags endpoint constraint changes as destructive", func() {
		// ARRANGE
		old := stubs.NewDebateConfigStub().Get()
		new := stubs.NewDebateConfigStub().Get()
		for i := range new.EdgeTypes {
			if new.EdgeTypes[i].Name == "supports" {
				new.EdgeTypes[i].SourceTypes = []string{"argument", "source"}
			}
		}

		// ACT
		changes := schemaver.Diff(old, new)

		// ASSERT
		Expect(changes).To(HaveLen(1))
		Expect(changes[0].Kind).To(Equal(domain.ChangeEndpointConstraint))
		Expect(changes[0].Subject).To(Equal("supports"))
		Expect(changes[0].Destructive).To(BeTrue())
	})

	It("treats scale reordering as a scale change", func() {
		// ARRANGE
		old := stubs.NewDebateConfigStub().Get()
		new := stubs.NewDebateConfigStub().Get()
		for i := range new.Polls {
			if new.Polls[i].Name == "relevance" {
				new.Polls[i].Scale = []string{"highly-relevant", "somewhat-relevant", "irrelevant"}
			}
		}

		// ACT
		changes := schemaver.Diff(old, new)

		// ASSERT
		Expect(changes).To(HaveLen(1))
		Expect(changes[0].Kind).To(Equal(domain.ChangePollScaleChanged))
		Expect(changes[0].Destructive).To(BeTrue())
	})

	It("treats applicability changes as a non-destructive definition change", func() {
		// ARRANGE
		old := stubs.NewDebateConfigStub().Get()
		new := stubs.NewDebateConfigStub().Get()
		for i := range new.Polls {
			if new.Polls[i].Name == "agreement" {
				new.Polls[i].NodeTypes = []string{"claim"}
			}
		}

		// ACT
		changes := schemaver.Diff(old, new)

		// ASSERT
		Expect(changes).To(HaveLen(1))
		Expect(changes[0].Kind).To(Equal(domain.ChangePollDefinition))
		Expect(changes[0].Destructive).To(BeFalse())
	})
})
