package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"example.com/recommendation/internal/api"
	"example.com/recommendation/internal/auth"
	"example.com/recommendation/internal/config"
	"example.com/recommendation/internal/domain"
	"example.com/recommendation/internal/observability"
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
	logger = logger.With().Str("component", "recommendation-api").Logger()

	if err := cfg.ValidateAPI(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	service := domain.NewService(postgres.NewRepository(pool),
		domain.WithCacheSize(cfg.CacheSize),
		domain.WithCacheTTL(cfg.CacheTTL),
	)

	mux := http.NewServeMux()
	api.NewHandler(service).RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}, auth.PublicPaths)
	handler := httptransport.RequestLogger(logger)(httptransport.CORS(cfg.CORSOrigin)(authMiddleware.Wrap(mux)))

	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("address", cfg.HTTPAddress).Msg("recommendation api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}
