package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"debategraph/src/domain"
	"debategraph/src/domain/schema"
	"debategraph/src/helper/env"
	"debategraph/src/infra/kafka"
	"debategraph/src/infra/neo4j"
	"debategraph/src/infra/postgres"
	"debategraph/src/infra/redis"
	"debategraph/src/repositories"
	"debategraph/src/server"
	"debategraph/src/services/events"
	"debategraph/src/services/graph"
	"debategraph/src/services/ratings"
	"debategraph/src/services/schemaver"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

func main() {
	// Configurar logger
	log.SetOutput(os.Stdout)
	log.Println("Starting API server with Uber Fx...")

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newSQLClient,
			newRedisClient,
			newKafkaClient,
			newConfigSource,
			newEventLogRepository,
			newCachedEventLogRepository,
			newRatingLogRepository,
			newSchemaRepository,
			newEventPublisher,
			newEntityPublisher,
			newRatingPublisher,
			newGraphSinks,
			newGraphService,
			newRatingService,
			newSchemaService,
			newPermissions,
			newServer,
		),

		// Invocations
		fx.Invoke(ensureStorage),
		fx.Invoke(registerServerHooks),
	)

	// Start the application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wait for app to exit gracefully
	<-app.Done()
}

func newLogger() *slog.Logger {
	logLevel := env.GetString("LOG_LEVEL", "info")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// newSQLClient configures and returns a pgxpool connection pool
func newSQLClient() (*pgxpool.Pool, error) {
	dbHost := env.MustGetString("DB_HOST")
	dbPort := env.GetString("DB_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 25)

	return postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
}

// newRedisClient é opcional: sem REDIS_ADDRS o serviço roda sem cache de
// materialização.
func newRedisClient() *redis.RedisClient {
	addrs := env.GetString("REDIS_ADDRS", "")
	if addrs == "" {
		return nil
	}

	poolSize := env.GetInt("REDIS_POOL_SIZE", 10)
	ttlSeconds := env.GetInt("REDIS_TTL_SECONDS", 300)
	return redis.NewRedisClient(addrs, poolSize, time.Duration(ttlSeconds)*time.Second)
}

// newKafkaClient é opcional: sem KAFKA_BROKERS os appends não são
// publicados downstream.
func newKafkaClient(logger *slog.Logger) *kafka.KafkaClient {
	brokers := env.GetString("KAFKA_BROKERS", "")
	if brokers == "" {
		return nil
	}

	client, err := kafka.NewKafkaClient(brokers)
	if err != nil {
		logger.Warn("Kafka unavailable, continuing without event publishing", "error", err)
		return nil
	}
	return client
}

func newConfigSource() schema.ConfigSource {
	path := env.GetString("TYPE_CONFIG_PATH", "config/types.json")
	return schema.NewFileConfigSource(path)
}

func newEventLogRepository(pool *pgxpool.Pool) *repositories.EventLogRepository {
	return repositories.NewEventLogRepository(pool)
}

func newCachedEventLogRepository(
	logger *slog.Logger,
	inner *repositories.EventLogRepository,
	redisClient *redis.RedisClient,
) *repositories.CachedEventLogRepository {
	return repositories.NewCachedEventLogRepository(logger, inner, redisClient)
}

func newRatingLogRepository(pool *pgxpool.Pool) *repositories.RatingLogRepository {
	return repositories.NewRatingLogRepository(pool)
}

func newSchemaRepository(pool *pgxpool.Pool) *repositories.SchemaRepository {
	return repositories.NewSchemaRepository(pool)
}

func newEventPublisher(logger *slog.Logger, kafkaClient *kafka.KafkaClient) *events.EventPublisher {
	if kafkaClient == nil {
		return nil
	}

	entityTopic := env.GetString("KAFKA_ENTITY_EVENTS_TOPIC", "debategraph.entity-events")
	ratingTopic := env.GetString("KAFKA_RATING_EVENTS_TOPIC", "debategraph.rating-events")
	return events.NewEventPublisher(logger, kafkaClient, entityTopic, ratingTopic)
}

// newEntityPublisher devolve interface nil (não ponteiro nil embrulhado)
// quando Kafka está desligado.
func newEntityPublisher(publisher *events.EventPublisher) graph.Publisher {
	if publisher == nil {
		return nil
	}
	return publisher
}

func newRatingPublisher(publisher *events.EventPublisher) ratings.Publisher {
	if publisher == nil {
		return nil
	}
	return publisher
}

// newGraphSinks monta os espelhos de leitura. Hoje só o Neo4j, ligado por
// NEO4J_URI.
func newGraphSinks(lc fx.Lifecycle, logger *slog.Logger) ([]domain.GraphSink, error) {
	uri := env.GetString("NEO4J_URI", "")
	if uri == "" {
		return nil, nil
	}

	driver, err := neo4j.NewDriver(uri, env.MustGetString("NEO4J_USER"), env.MustGetString("NEO4J_PASSWORD"))
	if err != nil {
		logger.Warn("Neo4j unavailable, continuing without graph mirror", "error", err)
		return nil, nil
	}

	mirror := neo4j.NewMirrorStore(driver)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return mirror.Close()
		},
	})

	return []domain.GraphSink{mirror}, nil
}

func newGraphService(
	logger *slog.Logger,
	eventLog *repositories.CachedEventLogRepository,
	source schema.ConfigSource,
	sinks []domain.GraphSink,
	publisher graph.Publisher,
) *graph.GraphService {
	return graph.NewGraphService(logger, eventLog, source, sinks, publisher)
}

func newRatingService(
	logger *slog.Logger,
	ratingLog *repositories.RatingLogRepository,
	source schema.ConfigSource,
	publisher ratings.Publisher,
) *ratings.RatingService {
	return ratings.NewRatingService(logger, ratingLog, source, publisher)
}

func newSchemaService(
	logger *slog.Logger,
	source schema.ConfigSource,
	snapshots *repositories.SchemaRepository,
	entities *repositories.CachedEventLogRepository,
	ratingCounts *repositories.RatingLogRepository,
) *schemaver.SchemaService {
	return schemaver.NewSchemaService(logger, source, snapshots, entities, ratingCounts)
}

func newPermissions() domain.Permissions {
	return domain.AllowAll{}
}

func newServer(
	logger *slog.Logger,
	graphService *graph.GraphService,
	ratingService *ratings.RatingService,
	schemaService *schemaver.SchemaService,
	permissions domain.Permissions,
) *server.Server {

	port := 8888 // default value
	if portStr := os.Getenv("SERVER_ADDR"); portStr != "" {
		if val, err := strconv.Atoi(portStr); err == nil {
			port = val
		}
	}

	server := server.NewServer(logger, port, graphService, ratingService, schemaService, permissions)

	return server
}

// ensureStorage aplica o DDL e garante o snapshot de schema v1.0.0 antes do
// servidor aceitar tráfego.
func ensureStorage(lc fx.Lifecycle, pool *pgxpool.Pool, schemaService *schemaver.SchemaService) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				return err
			}
			return schemaService.EnsureInitialized(ctx, domain.AnonymousUser)
		},
	})
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(lc fx.Lifecycle, srv *server.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Start server in a separate goroutine
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Create timeout context for graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			log.Println("Shutting down server...")
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Server forced to shutdown: %v", err)
				return err
			}
			log.Println("Server exited gracefully")
			return nil
		},
	})
}
