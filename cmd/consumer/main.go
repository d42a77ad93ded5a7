package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"example.com/recommendation/internal/config"
	"example.com/recommendation/internal/consumer"
	"example.com/recommendation/internal/domain"
	"example.com/recommendation/internal/generator"
	"example.com/recommendation/internal/model"
	"example.com/recommendation/internal/observability"
	"example.com/recommendation/internal/persistence/memory"
	"example.com/recommendation/internal/persistence/postgres"
	httptransport "example.com/recommendation/internal/transport/http"
)

func main() {
	cfg := config.Load()

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		logger.Warn().Err(err).Msg("falling back to default logger")
	}
	logger = logger.With().Str("component", "recommendation-consumer").Logger()

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	client, err := newModelClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create model client")
	}

	observer := observability.NewLogObserver(logger)
	gen := generator.New(client, generator.WithObserver(observer))
	handler := consumer.NewRecommendationHandler(gen, store, consumer.WithHandlerObserver(observer))

	metricsSrv := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.MetricsAddress), promhttp.Handler())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("address", cfg.MetricsAddress).Msg("metrics listening")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	for _, topic := range cfg.ConsumerTopics {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  cfg.ConsumerGroup,
			Topic:    topic,
			MinBytes: 1e3,
			MaxBytes: 10e6,
		})
		proc := consumer.NewProcessor(reader, handler,
			consumer.WithLogger(logger.With().Str("topic", topic).Logger()))

		g.Go(func() error {
			defer reader.Close()
			logger.Info().Str("topic", topic).Str("group", cfg.ConsumerGroup).Msg("consumer started")
			if err := proc.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Str("topic", topic).Msg("consumer stopped with error")
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("recommendation consumer shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("consumer exited with error")
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg config.Config) (domain.Store, func(), error) {
	if cfg.StoreBackend == config.StoreBackendMemory {
		return memory.NewStore(), func() {}, nil
	}
	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return postgres.NewRepository(pool), pool.Close, nil
}

func newModelClient(ctx context.Context, cfg config.Config) (model.Client, error) {
	if cfg.ModelBackend == config.ModelBackendGenAI {
		return model.NewGenAIClient(ctx, cfg.ModelAPIKey, cfg.ModelName, cfg.ModelTimeout)
	}
	return model.NewHTTPClient(model.HTTPConfig{
		URL:       cfg.ModelURL,
		APIKey:    cfg.ModelAPIKey,
		Timeout:   cfg.ModelTimeout,
		RateLimit: cfg.ModelRateLimit,
	}), nil
}
