package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/wnt/pollhub/internal/api"
	"github.com/wnt/pollhub/internal/broadcast"
	"github.com/wnt/pollhub/internal/chain"
	"github.com/wnt/pollhub/internal/config"
	"github.com/wnt/pollhub/internal/gamification"
	"github.com/wnt/pollhub/internal/logger"
	"github.com/wnt/pollhub/internal/storage"
	"github.com/wnt/pollhub/internal/store"
)

func main() {
	// Parse command-line arguments
	envFile := flag.String("envFile", ".env", "Path to .env file")
	flag.Parse()

	// Load environment variables from the specified file
	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("No .env file found at %s, using environment variables", *envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info().
		Str("storage_backend", cfg.StorageBackend).
		Int("api_port", cfg.APIPort).
		Msg("Starting pollhub")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage backend
	var persister storage.Persister
	var redisPersister *storage.RedisPersister
	switch cfg.StorageBackend {
	case config.BackendRedis:
		redisPersister, err = storage.NewRedisPersister(cfg.RedisURL, appLogger)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisPersister.Close()
		persister = redisPersister
	case config.BackendPostgres:
		db, err := storage.Connect(cfg.PostgresDSN)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("Failed to connect to Postgres")
		}
		persister = storage.NewPostgresPersister(db)
	default:
		persister = storage.NewMemoryPersister()
	}

	// Cross-process change feed. With Redis storage the pub/sub channel
	// shares the persister's connection; other backends fall back to
	// in-process fan-out.
	var broadcaster broadcast.Broadcaster
	if redisPersister != nil {
		broadcaster = broadcast.NewRedis(redisPersister.Client(), appLogger)
	} else {
		broadcaster = broadcast.NewLocal()
	}

	// With a chain configured, owned creator badges extend the poll
	// allowance; otherwise the flat free limit applies.
	var quota store.QuotaPolicy = store.FreeLimitPolicy{Limit: cfg.FreePollLimit}
	var chainDeps *api.ChainDeps
	if cfg.ChainEnabled() {
		client := chain.NewClient(chain.NewPool(cfg.ChainRPCEndpoints, appLogger), appLogger)
		badges := chain.NewBadgeService(client, cfg.ChainPackageID, appLogger)
		chainDeps = &api.ChainDeps{
			Surveys:  chain.NewSurveyService(client, cfg.ChainPackageID, appLogger),
			Profiles: chain.NewProfileService(client, cfg.ChainPackageID, appLogger),
			Builder: &chain.Builder{
				PackageID:         cfg.ChainPackageID,
				SurveyLimitID:     cfg.SurveyLimitID,
				ProfileRegistryID: cfg.ProfileRegistryID,
				BadgeStatsID:      cfg.BadgeStatsID,
				AdminCapID:        cfg.AdminCapID,
			},
		}
		quota = store.BadgeTierPolicy{
			Base: cfg.FreePollLimit,
			ExtraAllowance: func(address string) int {
				lookupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				defer cancel()
				extra, err := badges.ExtraAllowance(lookupCtx, address)
				if err != nil {
					appLogger.Warn().Err(err).Str("wallet", address).Msg("Badge allowance lookup failed")
					return 0
				}
				return extra
			},
		}
	}

	st, err := store.New(ctx, persister, broadcaster,
		store.WithQuotaPolicy(quota),
		store.WithLogger(appLogger),
	)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to initialize store")
	}

	curve := gamification.DefaultCurve()
	if cfg.LevelXPSpan > 0 {
		curve.ExtrapolationSpan = cfg.LevelXPSpan
	}
	engine := gamification.NewEngine(curve)

	server := api.New(st, engine, broadcaster, chainDeps, cfg.AdminAddress, cfg.APIPort, appLogger)

	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: promhttp.Handler(),
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(server.Start)

	eg.Go(func() error {
		appLogger.Info().Str("port", cfg.MetricsPort).Msg("Starting metrics server")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// Follow changes published by other processes sharing the store key.
	eg.Go(func() error {
		return st.Sync(egCtx)
	})

	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			appLogger.Error().Err(err).Msg("API server shutdown failed")
		}
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil && err != context.Canceled {
		appLogger.Fatal().Err(err).Msg("Pollhub exited with error")
	}
	appLogger.Info().Msg("Pollhub stopped")
}
