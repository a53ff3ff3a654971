package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/korimako/wildlife/pkg/api"
	"github.com/korimako/wildlife/pkg/auth"
	"github.com/korimako/wildlife/pkg/config"
	"github.com/korimako/wildlife/pkg/middleware"
	"github.com/korimako/wildlife/pkg/observability"
	"github.com/korimako/wildlife/pkg/search"
	"github.com/korimako/wildlife/pkg/store"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML config file (overridden by environment variables)")
	flag.Parse()

	if *configFile != "" {
		os.Setenv("WILDLIFE_CONFIG_FILE", *configFile)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(config.ParseLogLevel(cfg.Observability.LogLevel), os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()
	logger.WithField("driver", cfg.Storage.Driver).Info("record store opened")

	// Redis backs sessions and distributed rate limiting when configured
	var redisClient *redis.Client
	if cfg.Session.Backend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisURL,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		defer redisClient.Close()
	}

	var sessionStore auth.SessionStore
	if redisClient != nil {
		sessionStore = auth.NewRedisSessionStore(redisClient, cfg.Session.TTL)
	} else {
		sessionStore = auth.NewMemorySessionStore(cfg.Session.MaxSessions, cfg.Session.TTL)
	}
	sessions := auth.NewManager(sessionStore, cfg.Session.CookieName, cfg.Session.TTL)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// Every query through the catalogue store is timed and counted
	catalogue := store.WithMetrics(st, cfg.Storage.Driver, metrics)

	searchService := search.NewService(catalogue, logger, metrics)

	var opts []api.Option
	if cfg.RateLimit.Enabled {
		limitCfg := &middleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			WindowDuration:    cfg.RateLimit.Window,
		}
		if redisClient != nil {
			limiter := middleware.NewDistributedRateLimitMiddleware(redisClient, limitCfg, logger)
			opts = append(opts, api.WithRateLimit(limiter.Handler))
		} else {
			limiter := middleware.NewRateLimitMiddleware(limitCfg)
			limiter.StartCleanup(ctx)
			opts = append(opts, api.WithRateLimit(limiter.Handler))
		}
	}

	server := api.NewServer(catalogue, searchService, sessions, logger, metrics, opts...)
	sessionMW := middleware.NewSessionMiddleware(sessions, logger)

	appServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server.Handler(sessionMW),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthHandler(st, redisClient, metrics, cfg.Observability.MetricsEnabled),
	}

	// Keep catalogue gauges fresh in the background
	refreshGauges(ctx, catalogue, metrics, logger)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Observability.GaugeRefreshSchedule, func() {
		refreshGauges(ctx, catalogue, metrics, logger)
	}); err != nil {
		return fmt.Errorf("failed to schedule gauge refresh: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", appServer.Addr).Info("application server listening")
		if err := appServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("application server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := appServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("application server shutdown failed")
		}
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("health server shutdown failed")
		}
		return nil
	})

	return g.Wait()
}

// healthHandler serves liveness, readiness, and metrics on the health port
func healthHandler(st store.Store, redisClient *redis.Client, metrics *observability.Metrics, metricsEnabled bool) http.Handler {
	var db *sql.DB
	if dbStore, ok := st.(interface{ DB() *sql.DB }); ok {
		db = dbStore.DB()
	}
	checker := observability.NewHealthChecker(db, redisClient)

	router := mux.NewRouter()
	router.HandleFunc("/healthz", checker.Liveness).Methods("GET")
	router.HandleFunc("/readyz", checker.Readiness).Methods("GET")
	if metricsEnabled {
		router.Handle("/metrics", metrics.Handler()).Methods("GET")
	}
	return router
}

// refreshGauges updates the catalogue size gauges from the store
func refreshGauges(ctx context.Context, st store.Store, metrics *observability.Metrics, logger *observability.Logger) {
	if count, err := st.CountSpecies(ctx); err != nil {
		logger.WithError(err).Warn("failed to refresh species gauge")
	} else {
		metrics.SpeciesTotal.Set(float64(count))
	}

	if count, err := st.CountUsers(ctx); err != nil {
		logger.WithError(err).Warn("failed to refresh user gauge")
	} else {
		metrics.RegisteredUsers.Set(float64(count))
	}
}
