package ratings_test

import (
	"context"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"debategraph/src/domain"
	"debategraph/src/services/ratings"
	"debategraph/src/test_artefacts/memory"
	"debategraph/src/test_artefacts/stubs"
)

var _ = Describe("RatingService", func() {
	var (
		ratingLog     *memory.RatingLog
		ratingService *ratings.RatingService
		ctx           context.Context
	)

	rate := func(nodeID, username, value string) {
		_, err := ratingService.LogRating(ctx, stubs.NewRatingStub(nodeID).WithUsername(username).WithValue(value).Get())
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		ctx = context.Background()
		ratingLog = memory.NewRatingLog()

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		ratingService = ratings.NewRatingService(logger, ratingLog, stubs.NewDebateConfigStub().Source(), nil)
	})

	Context("when logging ratings", func() {
		It("appends a valid rating", func() {
			// ACT
			appended, err := ratingService.LogRating(ctx, stubs.NewRatingStub("claim-1").WithValue("agree").Get())

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(appended.ID).NotTo(BeZero())
			Expect(appended.Timestamp).NotTo(BeZero())
		})

		It("rejects an unknown poll without appending", func() {
			// ACT
			_, err := ratingService.LogRating(ctx, stubs.NewRatingStub("claim-1").WithPoll("credibility").Get())

			// ASSERT
			Expect(err).To(MatchError(domain.ErrValidation))
			Expect(ratingLog.Len()).To(BeZero())
		})

		It("rejects a value off the poll scale", func() {
			// ACT
			_, err := ratingService.LogRating(ctx, stubs.NewRatingStub("claim-1").WithValue("meh").Get())

			// ASSERT
			Expect(err).To(MatchError(domain.ErrValidation))
			Expect(ratingLog.Len()).To(BeZero())
		})

		It("accepts repeated ratings from the same user as history", func() {
			// ACT
			rate("claim-1", "alice", "agree")
			rate("claim-1", "alice", "disagree")

			// ASSERT
			Expect(ratingLog.Len()).To(Equal(2))
		})
	})

	Context("when reading the latest rating per user", func() {
		It("returns the most recent submission of that user", func() {
			// ARRANGE
			rate("claim-1", "alice", "agree")
			rate("claim-1", "alice", "strongly-disagree")

			// ACT
			latest, err := ratingService.LatestRating(ctx, domain.NodeRef("claim-1"), "agreement", "alice")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(latest).NotTo(BeNil())
			Expect(latest.Value).To(Equal("strongly-disagree"))
		})

		It("returns nil for a user who never rated", func() {
			// ACT
			latest, err := ratingService.LatestRating(ctx, domain.NodeRef("claim-1"), "agreement", "alice")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(latest).To(BeNil())
		})

		It("keeps one entry per user across the whole entity", func() {
			// ARRANGE
			rate("claim-1", "alice", "agree")
			rate("claim-1", "bob", "disagree")
			rate("claim-1", "alice", "neutral")

			// ACT
			all, err := ratingService.AllLatestRatings(ctx, domain.NodeRef("claim-1"), "agreement")

			// ASSERT
			Expect(all).To(HaveLen(2))
			Expect(err).NotTo(HaveOccurred())

			byUser := map[string]string{}
			for _, r := range all {
				byUser[r.Username] = r.Value
			}
			Expect(byUser).To(Equal(map[string]string{"alice": "neutral", "bob": "disagree"}))
		})
	})

	Context("when computing medians", func() {
		It("returns nil for zero raters", func() {
			// ACT
			median, err := ratingService.MedianRating(ctx, domain.NodeRef("claim-1"), "agreement")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(median).To(BeNil())
		})

		It("returns the middle label for an odd count", func() {
			// ARRANGE
			rate("claim-1", "alice", "strongly-disagree")
			rate("claim-1", "bob", "neutral")
			rate("claim-1", "carol", "strongly-agree")

			// ACT
			median, err := ratingService.MedianRating(ctx, domain.NodeRef("claim-1"), "agreement")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(*median).To(Equal("neutral"))
		})

		It("takes the lower middle label for an even count", func() {
			// ARRANGE
			rate("claim-1", "alice", "disagree")
			rate("claim-1", "bob", "agree")

			// ACT
			median, err := ratingService.MedianRating(ctx, domain.NodeRef("claim-1"), "agreement")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(*median).To(Equal("disagree"))
		})

		It("counts only the latest rating of each user", func() {
			// ARRANGE: o voto antigo de alice não pode pesar.
			rate("claim-1", "alice", "strongly-agree")
			rate("claim-1", "alice", "strongly-disagree")
			rate("claim-1", "bob", "strongly-disagree")
			rate("claim-1", "carol", "strongly-agree")

			// ACT
			median, err := ratingService.MedianRating(ctx, domain.NodeRef("claim-1"), "agreement")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(*median).To(Equal("strongly-disagree"))
		})

		It("isolates ratings per entity", func() {
			// ARRANGE
			rate("claim-1", "alice", "strongly-agree")
			rate("claim-2", "alice", "strongly-disagree")

			// ACT
			median1, err := ratingService.MedianRating(ctx, domain.NodeRef("claim-1"), "agreement")
			Expect(err).NotTo(HaveOccurred())
			median2, err := ratingService.MedianRating(ctx, domain.NodeRef("claim-2"), "agreement")
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			Expect(*median1).To(Equal("strongly-agree"))
			Expect(*median2).To(Equal("strongly-disagree"))
		})
	})

	Context("when rating edges", func() {
		It("aggregates by the identity triple", func() {
			// ARRANGE
			key := domain.EdgeKey{Source: "arg-1", Target: "claim-1", Type: "supports"}
			_, err := ratingService.LogRating(ctx, stubs.NewEdgeRatingStub(key).WithUsername("alice").WithValue("highly-relevant").Get())
			Expect(err).NotTo(HaveOccurred())
			_, err = ratingService.LogRating(ctx, stubs.NewEdgeRatingStub(key).WithUsername("bob").WithValue("irrelevant").Get())
			Expect(err).NotTo(HaveOccurred())

			// Mesmo par, outro tipo: não pode entrar no agregado.
			other := domain.EdgeKey{Source: "arg-1", Target: "claim-1", Type: "refutes"}
			_, err = ratingService.LogRating(ctx, stubs.NewEdgeRatingStub(other).WithUsername("carol").WithValue("highly-relevant").Get())
			Expect(err).NotTo(HaveOccurred())

			// ACT
			all, err := ratingService.AllLatestRatings(ctx, domain.EdgeRef(key), "relevance")
			Expect(err).NotTo(HaveOccurred())
			median, err := ratingService.MedianRating(ctx, domain.EdgeRef(key), "relevance")
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			Expect(all).To(HaveLen(2))
			Expect(*median).To(Equal("irrelevant"))
		})
	})

	Context("when computing medians in batch", func() {
		It("matches the scalar computation for every key", func() {
			// ARRANGE
			rate("claim-1", "alice", "agree")
			rate("claim-1", "bob", "strongly-agree")
			rate("claim-2", "alice", "disagree")

			// ACT
			batch, err := ratingService.MediansForManyNodes(ctx, []string{"claim-1", "claim-2", "claim-3"}, "agreement")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(batch).To(HaveLen(3))

			for _, id := range []string{"claim-1", "claim-2", "claim-3"} {
				scalar, err := ratingService.MedianRating(ctx, domain.NodeRef(id), "agreement")
				Expect(err).NotTo(HaveOccurred())
				if scalar == nil {
					Expect(batch[id]).To(BeNil())
				} else {
					Expect(*batch[id]).To(Equal(*scalar))
				}
			}
			Expect(batch["claim-3"]).To(BeNil())
		})
	})

	Context("when the poll scale shrank after votes were cast", func() {
		It("skips off-scale values instead of failing the read", func() {
			// ARRANGE
			rate("claim-1", "alice", "strongly-agree")
			rate("claim-1", "bob", "neutral")

			// Remove o topo da escala.
			cfg := stubs.NewDebateConfigStub().Get()
			for i := range cfg.Polls {
				if cfg.Polls[i].Name == "agreement" {
					cfg.Polls[i].Scale = []string{"strongly-disagree", "disagree", "neutral", "agree"}
				}
			}

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			shrunkService := ratings.NewRatingService(logger, ratingLog, memory.NewMutableConfigSource(cfg), nil)

			// ACT
			median, err := shrunkService.MedianRating(ctx, domain.NodeRef("claim-1"), "agreement")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(*median).To(Equal("neutral"))
		})
	})
})
