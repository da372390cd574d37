package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/pagetalk-ai/pagetalk/internal/anthropic"
	"github.com/pagetalk-ai/pagetalk/internal/api/handlers"
	"github.com/pagetalk-ai/pagetalk/internal/config"
	"github.com/pagetalk-ai/pagetalk/internal/database"
	"github.com/pagetalk-ai/pagetalk/internal/extractor"
	"github.com/pagetalk-ai/pagetalk/internal/hf"
	"github.com/pagetalk-ai/pagetalk/internal/ollama"
	"github.com/pagetalk-ai/pagetalk/internal/openai"
	"github.com/pagetalk-ai/pagetalk/internal/repository"
	"github.com/pagetalk-ai/pagetalk/internal/server"
	"github.com/pagetalk-ai/pagetalk/internal/service"
	"github.com/pagetalk-ai/pagetalk/internal/telemetry"
)

const janitorInterval = 10 * time.Minute

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the pagetalk API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	// Semantic index tier, only when Postgres is configured.
	var index service.ChunkIndexInterface
	var chunkRepo *repository.ChunkRepository
	if cfg.HasPostgres() {
		pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		log.Println("connected to database")

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			if err := runMigrations(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		chunkRepo = repository.NewChunkRepository(pool)
		index = chunkRepo
	}

	// Raw document store: Redis when configured, always backed by memory.
	memStore := repository.NewMemoryContextStore(cfg.SessionTTL)
	var store service.ContextStoreInterface = memStore
	var redisStore *repository.RedisContextStore
	if cfg.HasRedis() {
		redisStore, err = repository.NewRedisContextStore(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			log.Printf("redis unavailable, using in-memory session store: %v", err)
		} else {
			store = repository.NewContextStoreChain(redisStore, memStore)
			log.Println("connected to redis")
		}
	}

	janitor := service.NewJanitor(memStore, janitorInterval)
	go janitor.Start(ctx)

	var embedder service.EmbeddingClient
	var openaiClient *openai.Client
	if cfg.HasOpenAI() {
		openaiClient = openai.NewClientWithConfig(openai.Config{
			APIKey:    cfg.OpenAIAPIKey,
			ChatModel: cfg.OpenAIModel,
		})
		embedder = openaiClient
	}

	contextSvc := service.NewContextService(index, embedder, store)

	strategies, ollamaClient := buildStrategies(cfg, openaiClient)
	answerSvc := service.NewAnswerService(contextSvc, strategies)

	fetcher := extractor.NewFetcher(extractor.FetcherConfig{Timeout: cfg.FetchTimeout})
	ext := extractor.New(fetcher)

	routerCfg := server.RouterConfig{
		ExtractHandler:  handlers.NewExtractHandler(ext, contextSvc, cfg.MaxURLs),
		QuestionHandler: handlers.NewQuestionHandler(answerSvc),
		SessionHandler:  handlers.NewSessionHandler(contextSvc),
		HealthHandler:   handlers.NewHealthHandler(componentChecks(cfg, chunkRepo, redisStore, ollamaClient)),
		AllowedOrigins:  cfg.AllowedOrigins,
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	janitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// buildStrategies assembles the answering cascade from configuration: hosted
// chat providers first, then the local model when no hosted provider is
// configured, then the hosted QA endpoint, and always the extractive
// fallback last.
func buildStrategies(cfg *config.Config, openaiClient *openai.Client) ([]service.Strategy, *ollama.Client) {
	var strategies []service.Strategy
	var ollamaClient *ollama.Client

	if openaiClient != nil {
		strategies = append(strategies, service.NewCompleterStrategy(service.StrategyOpenAI, openaiClient))
		log.Println("answer strategy enabled: openai")
	}
	if cfg.HasAnthropic() {
		client := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		strategies = append(strategies, service.NewCompleterStrategy(service.StrategyAnthropic, client))
		log.Println("answer strategy enabled: anthropic")
	}
	if cfg.HasAltProvider() {
		client := openai.NewClientWithConfig(openai.Config{
			APIKey:    cfg.AltAPIKey,
			BaseURL:   cfg.AltBaseURL,
			ChatModel: cfg.AltModel,
		})
		strategies = append(strategies, service.NewCompleterStrategy(service.StrategyAlt, client))
		log.Println("answer strategy enabled: alt provider")
	}
	if cfg.OllamaEnabled && !cfg.HasHostedProvider() {
		ollamaClient = ollama.NewClient(cfg.OllamaBaseURL, cfg.OllamaModel)
		strategies = append(strategies, service.NewOllamaStrategy(ollamaClient))
		log.Println("answer strategy enabled: ollama")
	}
	if cfg.HFEnabled {
		strategies = append(strategies, service.NewHuggingFaceStrategy(hf.NewClient(cfg.HFAPIKey)))
		log.Println("answer strategy enabled: huggingface")
	}
	strategies = append(strategies, service.NewExtractiveStrategy())

	return strategies, ollamaClient
}

func componentChecks(cfg *config.Config, chunkRepo *repository.ChunkRepository, redisStore *repository.RedisContextStore, ollamaClient *ollama.Client) map[string]handlers.ComponentCheck {
	checks := map[string]handlers.ComponentCheck{
		"postgres": func(ctx context.Context) bool {
			return chunkRepo != nil && chunkRepo.Ping(ctx) == nil
		},
		"redis": func(ctx context.Context) bool {
			return redisStore != nil && redisStore.Ping(ctx) == nil
		},
		"ollama": func(ctx context.Context) bool {
			return ollamaClient != nil && ollamaClient.Reachable(ctx)
		},
		"openai":      staticCheck(cfg.HasOpenAI()),
		"anthropic":   staticCheck(cfg.HasAnthropic()),
		"alt":         staticCheck(cfg.HasAltProvider()),
		"huggingface": staticCheck(cfg.HFEnabled),
		"extractive":  staticCheck(true),
	}
	return checks
}

func staticCheck(ok bool) handlers.ComponentCheck {
	return func(context.Context) bool { return ok }
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else {
		log.Printf("migrations: database at version %d", version)
	}

	return nil
}
