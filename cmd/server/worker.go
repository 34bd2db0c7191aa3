package main

import (
	"context"
	"errors"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/artem13815/shortlist/pkg/health"
	"github.com/artem13815/shortlist/pkg/health/checkers"
	"github.com/artem13815/shortlist/pkg/queue/rabbitmq"
	pgrepo "github.com/artem13815/shortlist/pkg/repository/postgres"
	"github.com/artem13815/shortlist/pkg/storage/postgres"
)

const readinessInterval = 10 * time.Second

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume ranking jobs from the queue; serves gRPC health on WORKER_GRPC_ADDR",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return work(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func work(parent context.Context) error {
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
	if cfg.AMQP.URL == "" {
		return errors.New("AMQP_URL не задан: воркеру нужна очередь заданий")
	}
	pool, err := postgres.ConnectAndMigrate(ctx, cfg.Database.URL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	readiness := []health.Checker{checkers.NewPostgresChecker(pool)}
	if rdb != nil {
		defer rdb.Close()
		readiness = append(readiness, checkers.NewRedisChecker(rdb))
	}

	mq, err := rabbitmq.Dial(cfg.AMQP.URL, cfg.AMQP.Queue, log)
	if err != nil {
		return err
	}
	defer mq.Close()
	readiness = append(readiness, checkers.NewPingChecker("amqp", mq))

	embedder, model := newEmbedder(cfg.Embedding, rdb, cfg.Redis.CacheTTL, log)
	if err := model.Load(); err != nil {
		return err
	}
	readiness = append(readiness, checkers.NewModelChecker(model))
	orch, err := newOrchestrator(ctx, cfg, pgrepo.NewJobRepository(pool), embedder, log)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", cfg.Worker.GRPCAddr)
	if err != nil {
		return err
	}
	srv := grpc.NewServer()
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	go func() {
		if err := srv.Serve(lis); err != nil {
			log.Error("grpc health server stopped", zap.Error(err))
		}
	}()
	go watchReadiness(ctx, health.NewService(readiness...), hs, log)

	log.Info("worker started",
		zap.String("queue", cfg.AMQP.Queue),
		zap.Int("concurrency", cfg.Worker.Concurrency),
		zap.String("grpc_addr", cfg.Worker.GRPCAddr),
	)
	err = mq.Consume(ctx, orch, cfg.Worker.Concurrency)

	hs.Shutdown()
	srv.GracefulStop()
	log.Info("worker stopped")
	return err
}

// watchReadiness mirrors dependency health into the gRPC health service.
func watchReadiness(ctx context.Context, svc health.ReadinessUseCase, hs *grpchealth.Server, log *zap.Logger) {
	check := func() {
		cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		status := healthpb.HealthCheckResponse_SERVING
		if err := svc.Ready(cctx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			log.Warn("worker not ready", zap.Error(err))
		}
		hs.SetServingStatus("", status)
		hs.SetServingStatus(appName+".worker", status)
	}
	check()
	t := time.NewTicker(readinessInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			check()
		}
	}
}
