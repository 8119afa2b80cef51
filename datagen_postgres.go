//go:build datagen_postgres
// +build datagen_postgres

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"debategraph/src/helper/env"
	"debategraph/src/infra/postgres"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Gerador de carga: debates sintéticos direto nas tabelas de log, para
// medir materialização e agregação com volume realista.

type DebateBundle struct {
	EntityRows [][]any
	RatingRows [][]any
}

var (
	agreementScale = []string{"strongly-disagree", "disagree", "neutral", "agree", "strongly-agree"}
	relevanceScale = []string{"irrelevant", "somewhat-relevant", "highly-relevant"}
	statuses       = []string{"open", "under-review", "resolved"}
	tagPool        = []string{"economy", "health", "climate", "education", "technology", "policy"}
)

func newSQLClient() (*pgxpool.Pool, error) {
	dbHost := env.MustGetString("DB_HOST")
	dbPort := env.GetString("DB_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	return postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, 50)
}

func main() {
	numDebates := flag.Int("debates", 1000, "Número de debates a gerar. -1 para infinito.")
	argsPerClaim := flag.Int("args-per-claim", 4, "Argumentos por claim")
	ratersPerEntity := flag.Int("raters", 12, "Avaliadores por entidade")
	numConsumers := flag.Int("consumers", 8, "Workers de insert")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := newSQLClient()
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	dataChan := make(chan DebateBundle, *numConsumers*4)

	var wg sync.WaitGroup
	var totalEvents, totalErrors int64
	startTime := time.Now()

	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				elapsed := time.Since(startTime).Seconds()
				processed := atomic.LoadInt64(&totalEvents)
				log.Printf("events=%d errors=%d rate=%.0f/s",
					processed, atomic.LoadInt64(&totalErrors), float64(processed)/elapsed)
			}
		}
	}()

	wg.Add(1)
	go producer(ctx, &wg, dataChan, *numDebates, *argsPerClaim, *ratersPerEntity)

	var consumerWg sync.WaitGroup
	for i := 0; i < *numConsumers; i++ {
		consumerWg.Add(1)
		go consumer(ctx, &consumerWg, db, dataChan, &totalEvents, &totalErrors)
	}

	wg.Wait()
	close(dataChan)
	consumerWg.Wait()

	log.Printf("done: events=%d errors=%d in %s",
		atomic.LoadInt64(&totalEvents), atomic.LoadInt64(&totalErrors), time.Since(startTime))
}

func producer(ctx context.Context, wg *sync.WaitGroup, dataChan chan<- DebateBundle, numDebates, argsPerClaim, ratersPerEntity int) {
	defer wg.Done()

	for i := 0; numDebates < 0 || i < numDebates; i++ {
		select {
		case <-ctx.Done():
			return
		case dataChan <- generateDebate(argsPerClaim, ratersPerEntity):
		}
	}
}

func consumer(ctx context.Context, wg *sync.WaitGroup, db *pgxpool.Pool, dataChan <-chan DebateBundle, totalEvents, totalErrors *int64) {
	defer wg.Done()

	for bundle := range dataChan {
		if err := insertBundle(ctx, db, bundle); err != nil {
			atomic.AddInt64(totalErrors, 1)
			log.Printf("insert failed: %v", err)
			continue
		}
		atomic.AddInt64(totalEvents, int64(len(bundle.EntityRows)+len(bundle.RatingRows)))
	}
}

func insertBundle(ctx context.Context, db *pgxpool.Pool, bundle DebateBundle) error {
	_, err := db.CopyFrom(ctx,
		pgx.Identifier{"entity_events"},
		[]string{"state", "kind", "node_id", "source_id", "target_id", "edge_type", "payload", "username"},
		pgx.CopyFromRows(bundle.EntityRows),
	)
	if err != nil {
		return fmt.Errorf("copy entity_events: %w", err)
	}

	if len(bundle.RatingRows) == 0 {
		return nil
	}

	_, err = db.CopyFrom(ctx,
		pgx.Identifier{"rating_events"},
		[]string{"kind", "node_id", "source_id", "target_id", "edge_type", "poll", "value", "username"},
		pgx.CopyFromRows(bundle.RatingRows),
	)
	if err != nil {
		return fmt.Errorf("copy rating_events: %w", err)
	}
	return nil
}

// generateDebate monta um claim, seus argumentos, as arestas e os ratings.
func generateDebate(argsPerClaim, ratersPerEntity int) DebateBundle {
	bundle := DebateBundle{}

	claimID := uuid.NewString()
	author := faker.Username()

	bundle.EntityRows = append(bundle.EntityRows, []any{
		"created", "node", claimID, nil, nil, nil,
		map[string]any{
			"type":        "claim",
			"title":       faker.Sentence(),
			"description": faker.Paragraph(),
			"scope":       faker.Word(),
			"tags":        pickTags(),
			"status":      statuses[rand.Intn(len(statuses))],
		},
		author,
	})
	bundle.RatingRows = append(bundle.RatingRows, nodeRatings(claimID, "agreement", agreementScale, ratersPerEntity)...)

	for i := 0; i < argsPerClaim; i++ {
		argID := uuid.NewString()
		argAuthor := faker.Username()

		bundle.EntityRows = append(bundle.EntityRows, []any{
			"created", "node", argID, nil, nil, nil,
			map[string]any{
				"type":        "argument",
				"title":       faker.Sentence(),
				"description": faker.Paragraph(),
				"tags":        pickTags(),
				"status":      statuses[rand.Intn(len(statuses))],
			},
			argAuthor,
		})

		edgeType := "supports"
		if rand.Float64() < 0.4 {
			edgeType = "refutes"
		}
		bundle.EntityRows = append(bundle.EntityRows, []any{
			"created", "edge", nil, argID, claimID, edgeType,
			map[string]any{
				"type":     edgeType,
				"strength": []string{"weak", "moderate", "strong"}[rand.Intn(3)],
				"notes":    faker.Sentence(),
			},
			argAuthor,
		})

		bundle.RatingRows = append(bundle.RatingRows, nodeRatings(argID, "agreement", agreementScale, ratersPerEntity/2)...)
		bundle.RatingRows = append(bundle.RatingRows, edgeRatings(argID, claimID, edgeType, "relevance", relevanceScale, ratersPerEntity/2)...)
	}

	return bundle
}

func nodeRatings(nodeID, poll string, scale []string, raters int) [][]any {
	rows := make([][]any, 0, raters)
	for i := 0; i < raters; i++ {
		rows = append(rows, []any{
			"node", nodeID, nil, nil, nil, poll, scale[rand.Intn(len(scale))], faker.Username(),
		})
	}
	return rows
}

func edgeRatings(sourceID, targetID, edgeType, poll string, scale []string, raters int) [][]any {
	rows := make([][]any, 0, raters)
	for i := 0; i < raters; i++ {
		rows = append(rows, []any{
			"edge", nil, sourceID, targetID, edgeType, poll, scale[rand.Intn(len(scale))], faker.Username(),
		})
	}
	return rows
}

func pickTags() []string {
	n := 1 + rand.Intn(3)
	tags := make([]string, 0, n)
	for _, idx := range rand.Perm(len(tagPool))[:n] {
		tags = append(tags, tagPool[idx])
	}
	return tags
}
