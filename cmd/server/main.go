package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"slecriteria/internal/platform/config"
	"slecriteria/internal/platform/httpserver"
	"slecriteria/internal/platform/logger"
	"slecriteria/internal/platform/metrics"
	"slecriteria/internal/platform/redis"
	"slecriteria/internal/scoring"
	scoringhandler "slecriteria/internal/scoring/handler"
	scoringmetrics "slecriteria/internal/scoring/metrics"
	"slecriteria/internal/testcase/cache"
	testcasehandler "slecriteria/internal/testcase/handler"
	testcasemetrics "slecriteria/internal/testcase/metrics"
	"slecriteria/internal/testcase/service"
	"slecriteria/internal/testcase/store"
	httptransport "slecriteria/internal/transport/http"
	"slecriteria/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("configuration rejected", "error", err)
		os.Exit(2)
	}
	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := metrics.NewRegistry()
	checks := map[string]httptransport.HealthCheck{}

	runStore, closeStore, err := buildStore(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeStore()
	if db, ok := runStore.(*store.SQLStore); ok {
		checks["database"] = db.Ping
	}

	suiteCache, redisCheck, closeCache, err := buildCache(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeCache()
	if redisCheck != nil {
		checks["redis"] = redisCheck
	}

	scoringSvc := scoring.NewService(
		scoring.WithLogger(log),
		scoring.WithMetrics(scoringmetrics.NewWithRegistry(reg)),
	)
	suiteSvc := service.NewService(cfg.Suite.Path, runStore,
		service.WithCache(suiteCache),
		service.WithParallelism(cfg.Suite.Parallelism),
		service.WithMetrics(testcasemetrics.NewWithRegistry(reg)),
		service.WithLogger(log),
	)

	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Registry:       reg,
		Metrics:        metrics.New(reg),
		Checks:         checks,
	},
		scoringhandler.New(scoringSvc, log),
		testcasehandler.New(suiteSvc, log),
	)

	srv := httpserver.New(cfg.Server.Addr, router)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting slecriteria server",
			"addr", cfg.Server.Addr,
			"suite", cfg.Suite.Path,
			"store", cfg.Database.Driver,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildStore(ctx context.Context, cfg config.Database, log *slog.Logger) (service.Store, func(), error) {
	if cfg.Driver == "memory" {
		log.Warn("run history is kept in memory and lost on restart")
		return store.NewInMemoryStore(), func() {}, nil
	}

	db, err := store.Open(ctx, store.Driver(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Error("closing run history database", "error", err)
		}
	}
	return store.NewSQL(db), closeDB, nil
}

// buildCache prefers Redis, shielded by a breaker that fails over to a
// process-local copy, and falls back to memory alone when Redis is unset.
func buildCache(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (service.Cache, httptransport.HealthCheck, func(), error) {
	client, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	local := cache.NewMemory(cfg.SuiteCacheTTL)
	if client == nil {
		return local, nil, func() {}, nil
	}
	closeClient := func() {
		if err := client.Close(); err != nil {
			log.Error("closing redis client", "error", err)
		}
	}
	shared := cache.NewRedis(client.Client, cfg.SuiteCacheTTL)
	failover := cache.NewFailover(shared, local, circuit.New("redis-suite-cache"), log)
	return failover, client.Health, closeClient, nil
}
