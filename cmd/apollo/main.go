package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortuna/apollo/internal/api/rest"
	"github.com/fortuna/apollo/internal/cache"
	"github.com/fortuna/apollo/internal/config"
	"github.com/fortuna/apollo/internal/gamelog"
	"github.com/fortuna/apollo/internal/ingest/nbastats"
	"github.com/fortuna/apollo/internal/logger"
	"github.com/fortuna/apollo/internal/publisher"
	"github.com/fortuna/apollo/internal/season"
	"github.com/fortuna/apollo/internal/service"
	"github.com/fortuna/apollo/internal/store"
	"github.com/fortuna/apollo/internal/store/repository"
)

const (
	serviceName    = "apollo"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Env, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	log.Info().Str("version", serviceVersion).Msg("starting player prop trends service")

	cal := season.Calendar{Rollover: time.Month(cfg.SeasonRolloverMonth)}
	checks := make(map[string]func() error)

	// Postgres and Redis are optional layers: without them the service still
	// answers trend requests, it just resolves and recomputes more often.
	var db *store.Database
	var identityRepo service.IdentityRepo
	var snapshotRepo service.SnapshotRepo
	var snapshotReader rest.SnapshotReader
	if cfg.DatabaseURL != "" {
		db, err = store.NewDatabase(cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("connecting to postgres")
		}
		defer db.Close()

		if err := db.RunMigrations(); err != nil {
			log.Fatal().Err(err).Msg("running migrations")
		}

		identityRepo = repository.NewPlayerRepository(db)
		trendRepo := repository.NewTrendRepository(db)
		snapshotRepo = trendRepo
		snapshotReader = trendRepo
		checks["postgres"] = db.HealthCheck
		log.Info().Msg("connected to postgres")
	}

	var redisStore *cache.RedisStore
	var trendPublisher service.TrendPublisher
	if cfg.RedisURL != "" {
		redisStore, err = connectRedis(cfg.RedisURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("connecting to redis")
		}
		defer redisStore.Close()

		trendPublisher = publisher.NewRedisStreamPublisher(redisStore.Client())
		checks["redis"] = redisStore.HealthCheck
		log.Info().Msg("connected to redis")
	}

	client := nbastats.NewClient(cfg.StatsBaseURL, cal, log)
	loader := gamelog.NewLoader(client, cal, log)
	players := service.NewPlayerService(client, redisStore, identityRepo, log)
	trends := service.NewTrendService(players, loader, cal, redisStore, snapshotRepo, trendPublisher, log)

	handler := rest.NewHandler(trends, players, snapshotReader, checks)
	server := rest.NewServer(cfg.Port, handler, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("REST API listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("REST server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("REST server shutdown")
	}
	log.Info().Msg("stopped")
}

// connectRedis retries briefly so the service survives Redis coming up a few
// seconds later in a compose stack.
func connectRedis(redisURL string, log zerolog.Logger) (*cache.RedisStore, error) {
	const maxRetries = 10
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		rs, err := cache.NewRedisStore(redisURL)
		if err == nil {
			return rs, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", i+1).Msg("redis connection failed, retrying")
		time.Sleep(2 * time.Second)
	}
	return nil, lastErr
}
