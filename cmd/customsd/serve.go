package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/customs-tracking/internal/api"
	"github.com/99minutos/customs-tracking/internal/api/handler"
	"github.com/99minutos/customs-tracking/internal/core/ports"
	"github.com/99minutos/customs-tracking/internal/core/service"
	"github.com/99minutos/customs-tracking/internal/core/tracking"
	natsbroker "github.com/99minutos/customs-tracking/internal/infrastructure/broker/nats"
	"github.com/99minutos/customs-tracking/internal/infrastructure/config"
	mongodb "github.com/99minutos/customs-tracking/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/customs-tracking/internal/infrastructure/db/redis"
	"github.com/99minutos/customs-tracking/internal/infrastructure/provider/seventeentrack"
	"github.com/99minutos/customs-tracking/internal/infrastructure/queue"
	"github.com/99minutos/customs-tracking/internal/infrastructure/resilience"
	"github.com/99minutos/customs-tracking/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, ingestion workers and the optional poller",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	initLogger(cfg.LogLevel, cfg.LogPretty)
	log := logger.Get()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer disconnectMongo(mongoClient)

	events := mongodb.NewEventRepository(db)
	records := mongodb.NewTrackingRepository(db)
	operators := mongodb.NewOperatorRepository(db)
	if err := mongodb.EnsureIndexes(ctx, events, records, operators); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Provider and messaging ---
	exec := resilience.NewExecutor(resilience.DefaultConfig(), logger.Component("resilience"))
	provider := seventeentrack.NewClient(seventeentrack.Config{
		BaseURL:           cfg.Provider.BaseURL,
		APIKey:            cfg.Provider.APIKey,
		Timeout:           cfg.Provider.Timeout,
		RequestsPerSecond: cfg.Provider.Rate,
	}, exec, logger.Component("17track"))

	var publisher ports.SummaryPublisher
	if cfg.NATS.URL != "" {
		broker, err := natsbroker.Connect(cfg.NATS.URL, cfg.NATS.Subject, natsbroker.Options{Executor: exec}, logger.Component("nats"))
		if err != nil {
			return err
		}
		defer broker.Close()
		publisher = broker
	}

	// --- Pipeline ---
	patterns, err := tracking.LoadPatternSet(cfg.PatternsFile)
	if err != nil {
		return err
	}
	svc := service.NewTrackingService(service.TrackingDeps{
		Events:     events,
		Records:    records,
		Provider:   provider,
		Dedup:      redisdb.NewDeliveryDedup(rdb, cfg.Redis.DedupTTL),
		Cache:      redisdb.NewSummaryCache(rdb, cfg.Redis.CacheTTL),
		Publisher:  publisher,
		Normalizer: tracking.NewNormalizer(tracking.NewClassifier(patterns)),
	}, logger.Component("tracking"))

	// Workers outlive the request context so queued deliveries can finish
	// after the listener stops.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	dispatcher := queue.NewDispatcher(cfg.Workers, svc, logger.Component("dispatcher"))
	dispatcher.Start(workerCtx)

	pollerDone := make(chan struct{})
	if cfg.PollInterval > 0 {
		poller := queue.NewPoller(records, provider, dispatcher, cfg.PollInterval, cfg.PollLimit, logger.Component("poller"))
		go func() {
			defer close(pollerDone)
			poller.Run(ctx)
		}()
	} else {
		close(pollerDone)
	}

	authSvc := service.NewAuthService(operators, cfg.JWTSecret, 0)
	if created, err := authSvc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	} else if created {
		log.Info().Str("username", cfg.AdminUsername).Msg("bootstrap admin created")
	}

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Auth:       authSvc,
		Tracking:   svc,
		Queue:      dispatcher,
		WebhookKey: cfg.Provider.APIKey,
		JWTSecret:  cfg.JWTSecret,
		Checks: map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return pingRedis(ctx, rdb) },
		},
		TestRoutes: !cfg.IsProduction(),
		Log:        logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Int("workers", cfg.Workers).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	// Queued deliveries get the rest of the shutdown window.
	<-pollerDone
	dispatcher.Close()
	drained := make(chan struct{})
	go func() {
		dispatcher.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		log.Warn().Msg("shutdown timeout, dropping queued deliveries")
		cancelWorkers()
		<-drained
	}
	return nil
}

func disconnectMongo(c *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Disconnect(ctx); err != nil {
		l := logger.Get()
		l.Warn().Err(err).Msg("mongo disconnect")
	}
}

func pingRedis(ctx context.Context, rdb *redis.Client) error {
	return rdb.Ping(ctx).Err()
}
