// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/chino-hash/turnero-padel/internal/api/bookings"
	"github.com/chino-hash/turnero-padel/internal/api/courts"
	"github.com/chino-hash/turnero-padel/internal/api/payments"
	"github.com/chino-hash/turnero-padel/internal/config"
	"github.com/chino-hash/turnero-padel/internal/credentials"
	"github.com/chino-hash/turnero-padel/internal/db"
	"github.com/chino-hash/turnero-padel/internal/events"
	"github.com/chino-hash/turnero-padel/internal/replay"
	"github.com/chino-hash/turnero-padel/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	vault, err := newVault(cfg, database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize credential vault")
	}

	replays, closeReplays, err := newReplayStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize replay store")
	}
	defer closeReplays()

	publisher, closePublisher, err := newPublisher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize event publisher")
	}
	defer closePublisher()

	processor := payments.NewProcessor(payments.ProcessorConfig{
		DB:           database,
		Vault:        vault,
		Replays:      replays,
		Publisher:    publisher,
		Rejected:     payments.PolicyFromName(cfg.Payment.RejectedPolicy),
		GlobalSecret: cfg.Payment.WebhookSecret,
		ReplayTTL:    cfg.Payment.ReplayTTL,
	})

	bookings.InitHandlers(database, publisher)
	courts.InitHandlers(database)
	payments.InitHandlers(processor)

	if err := scheduler.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	if err := scheduler.RegisterBookingJobs(database, publisher); err != nil {
		log.Fatal().Err(err).Msg("Failed to register booking jobs")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	server := newServer(cfg, database)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Scheduler shutdown failed")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}

func newVault(cfg *config.Config, database *db.DB) (*credentials.Vault, error) {
	if cfg.CredentialEncKey == "" {
		return nil, fmt.Errorf("CREDENTIAL_ENC_KEY is required")
	}
	key, err := credentials.ParseKey(cfg.CredentialEncKey)
	if err != nil {
		return nil, err
	}
	defaults := credentials.Credentials{
		AccessToken:   cfg.Payment.AccessToken,
		PublicKey:     cfg.Payment.PublicKey,
		WebhookSecret: cfg.Payment.WebhookSecret,
	}
	return credentials.NewVault(database.Queries, key, defaults), nil
}

func newReplayStore(cfg *config.Config) (replay.Store, func(), error) {
	switch cfg.Replay.Store {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, err := replay.NewRedisClient(ctx, cfg.Replay.RedisAddr, cfg.Replay.RedisPassword, cfg.Replay.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.Replay.RedisAddr).Msg("Replay store backed by redis")
		return replay.NewRedisStore(client, ""), func() { _ = client.Close() }, nil
	default:
		log.Warn().Msg("Replay store is in-process memory; run a shared store for multi-instance deployments")
		store := replay.NewMemoryStore()
		return store, store.Close, nil
	}
}

func newPublisher(cfg *config.Config) (events.Publisher, func(), error) {
	switch cfg.Events.Publisher {
	case "amqp":
		publisher, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("exchange", cfg.Events.Exchange).Msg("Booking events published to AMQP")
		return publisher, func() { _ = publisher.Close() }, nil
	default:
		return events.LogPublisher{}, func() {}, nil
	}
}
