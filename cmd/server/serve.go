package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/artem13815/shortlist/docs"

	"github.com/artem13815/shortlist/api/http"
	"github.com/artem13815/shortlist/api/http/handlers"
	"github.com/artem13815/shortlist/pkg/account"
	"github.com/artem13815/shortlist/pkg/health"
	"github.com/artem13815/shortlist/pkg/health/checkers"
	"github.com/artem13815/shortlist/pkg/job"
	"github.com/artem13815/shortlist/pkg/queue/rabbitmq"
	pgrepo "github.com/artem13815/shortlist/pkg/repository/postgres"
	"github.com/artem13815/shortlist/pkg/security/jwt"
	"github.com/artem13815/shortlist/pkg/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API; jobs run in-process unless AMQP_URL is set",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.URL == "" {
		return errNoDatabase
	}
	pool, err := postgres.ConnectAndMigrate(ctx, cfg.Database.URL, log)
	if err != nil {
		return err
	}
	defer pool.Close()
	store := pgrepo.NewJobRepository(pool)
	accounts := pgrepo.NewAccountRepository(pool, account.DefaultFreeTrial)

	readiness := []health.Checker{checkers.NewPostgresChecker(pool)}

	rdb, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		readiness = append(readiness, checkers.NewRedisChecker(rdb))
	}

	var (
		dispatcher job.Dispatcher
		local      *job.LocalDispatcher
	)
	if cfg.AMQP.URL != "" {
		mq, err := rabbitmq.Dial(cfg.AMQP.URL, cfg.AMQP.Queue, log)
		if err != nil {
			return err
		}
		defer mq.Close()
		dispatcher = mq
		readiness = append(readiness, checkers.NewPingChecker("amqp", mq))
		log.Info("jobs are published to the queue", zap.String("queue", cfg.AMQP.Queue))
	} else {
		embedder, model := newEmbedder(cfg.Embedding, rdb, cfg.Redis.CacheTTL, log)
		orch, err := newOrchestrator(ctx, cfg, store, embedder, log)
		if err != nil {
			return err
		}
		local = job.NewLocalDispatcher(ctx, orch, cfg.Worker.Concurrency, log)
		dispatcher = local
		readiness = append(readiness, checkers.NewModelChecker(model))
		log.Info("jobs run in-process", zap.Int("concurrency", cfg.Worker.Concurrency))
	}

	uc := job.NewService(store, accounts, dispatcher, log)
	jobsHandler := handlers.NewJobsHandler(uc, handlers.UploadLimits{
		Dir:          cfg.HTTP.UploadDir,
		MaxFileBytes: cfg.MaxFileBytes(),
		MaxFiles:     cfg.HTTP.MaxFilesPerJob,
	}, log)
	healthHandler := handlers.NewHealthHandler(health.NewService(readiness...))

	app := fiber.New(fiber.Config{
		AppName:               appName,
		BodyLimit:             int(cfg.MaxFileBytes())*cfg.HTTP.MaxFilesPerJob + 1<<20,
		DisableStartupMessage: true,
	})
	http.Register(app, healthHandler, jobsHandler, jwt.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.Issuer))

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("port", cfg.HTTP.Port))
		errCh <- app.Listen(":" + cfg.HTTP.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if local != nil {
		local.Wait()
	}
	return nil
}
