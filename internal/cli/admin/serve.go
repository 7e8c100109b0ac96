package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/roadmapbot/internal/api/handlers"
	"github.com/cloo-solutions/roadmapbot/internal/api/middleware"
	"github.com/cloo-solutions/roadmapbot/internal/config"
	"github.com/cloo-solutions/roadmapbot/internal/database"
	"github.com/cloo-solutions/roadmapbot/internal/gemini"
	"github.com/cloo-solutions/roadmapbot/internal/jobs"
	"github.com/cloo-solutions/roadmapbot/internal/logging"
	"github.com/cloo-solutions/roadmapbot/internal/notion"
	"github.com/cloo-solutions/roadmapbot/internal/openai"
	"github.com/cloo-solutions/roadmapbot/internal/profile"
	"github.com/cloo-solutions/roadmapbot/internal/repository"
	"github.com/cloo-solutions/roadmapbot/internal/routing"
	"github.com/cloo-solutions/roadmapbot/internal/server"
	"github.com/cloo-solutions/roadmapbot/internal/service"
	"github.com/cloo-solutions/roadmapbot/internal/storage"
	"github.com/cloo-solutions/roadmapbot/internal/telemetry"
	"github.com/cloo-solutions/roadmapbot/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	retentionInterval = time.Hour
	shutdownTimeout   = 30 * time.Second
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the roadmap assistant API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	shutdownTelemetry := telemetry.Init(telemetry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Debug:       cfg.Debug,
	}, logger)
	defer shutdownTelemetry()

	if portFlag, _ := cmd.Flags().GetString("port"); cmd.Flags().Changed("port") {
		cfg.Port = portFlag
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var decisionRepo *repository.DecisionRepository
	if cfg.HasDatabase() {
		pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		logger.Info("connected to database")

		if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); !noMigrate {
			if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		decisionRepo = repository.NewDecisionRepository(pool)
	} else {
		logger.Info("decision log disabled (ROADMAP_DATABASE_URL not set)")
	}

	profiles, err := profile.NewStore(cfg.ProfilePath, logger)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	gen, models, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	if gen == nil {
		logger.Warn("generation backend not configured; routed questions will fail",
			zap.String("provider", cfg.GenerationProvider))
	} else {
		logger.Info("generation backend ready", zap.String("provider", gen.Name()))
	}

	router := routing.NewRouter(gen, profiles, routing.Config{
		Timeout: cfg.GenerateTimeout,
		Retries: cfg.GenerateRetries,
	})

	var source service.DocumentSource
	if cfg.HasNotion() {
		source = notion.NewFlattener(notion.NewAPIClient(cfg.NotionToken), cfg.KnowledgeMaxDepth, cfg.KnowledgeMaxBlocks)
	} else {
		logger.Warn("knowledge source not configured (ROADMAP_NOTION_TOKEN and ROADMAP_NOTION_PAGE_ID)")
	}
	knowledgeSvc := service.NewKnowledgeService(source, cfg.NotionPageID, logger).
		WithFetchTimeout(cfg.KnowledgeFetchTimeout)

	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		logger.Info("snapshot bucket ready", zap.String("bucket", cfg.S3Bucket))
		knowledgeSvc.WithSnapshotStore(s3Client)
	}

	var assistantSvc *service.AssistantService
	if decisionRepo != nil {
		assistantSvc = service.NewAssistantService(router, models, decisionRepo, logger)
	} else {
		assistantSvc = service.NewAssistantService(router, models, nil, logger)
	}

	handler := server.NewRouter(server.RouterConfig{
		Logger:           logger,
		AdminToken:       cfg.AdminToken,
		RateLimiter:      middleware.NewClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		TrustProxy:       cfg.TrustProxy,
		KnowledgeHandler: handlers.NewKnowledgeHandler(knowledgeSvc),
		RouteHandler:     handlers.NewRouteHandler(assistantSvc),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return profiles.Watch(gctx)
	})

	if decisionRepo != nil && cfg.DecisionRetention > 0 {
		pruner := jobs.NewRetentionProcessor(assistantSvc, cfg.DecisionRetention, logger)
		worker := jobs.NewWorker("decision-retention", pruner, retentionInterval, logger)
		g.Go(func() error {
			worker.Start(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}

// newGenerator returns the configured generation backend, or nils when the
// selected provider has no credential.
func newGenerator(ctx context.Context, cfg *config.Config) (routing.Generator, service.ModelLister, error) {
	if !cfg.HasGeneration() {
		return nil, nil, nil
	}

	switch cfg.GenerationProvider {
	case config.ProviderOpenAI:
		c := openai.NewClientWithConfig(openai.Config{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel})
		return c, c, nil
	default:
		c, err := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	}
}

func runMigrations(databaseURL string, logger *zap.Logger) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info("migrations: no migrations applied")
	case err != nil:
		return fmt.Errorf("failed to get migration version: %w", err)
	case dirty:
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	default:
		logger.Info("migrations: database is up to date", zap.Uint("version", version))
	}

	return nil
}

func openPool(ctx context.Context) (*pgxpool.Pool, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasDatabase() {
		return nil, nil, fmt.Errorf("ROADMAP_DATABASE_URL is not set")
	}
	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, cfg, nil
}
