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

	"farmlink-be/internal/ai"
	"farmlink-be/internal/chat"
	"farmlink-be/internal/checkout"
	"farmlink-be/internal/config"
	"farmlink-be/internal/db"
	"farmlink-be/internal/events"
	"farmlink-be/internal/handler"
	"farmlink-be/internal/logger"
	"farmlink-be/internal/match"
	"farmlink-be/internal/metrics"
	"farmlink-be/internal/store"
	"farmlink-be/internal/user"

	"go.uber.org/zap"
)

const (
	shutdownTimeout      = 10 * time.Second
	sessionSweepInterval = time.Minute
)

// Swapped out in tests.
var (
	openDatabase    = db.NewDatabase
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(context.Background()); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

type server struct {
	handler   http.Handler
	sessions  *store.Registry
	matcher   *match.Service
	publisher events.Publisher
}

// newPersister picks where registered users are kept. The returned close
// function is never nil.
func newPersister(cfg *config.Config) (user.Persister, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageDriver {
	case config.StorageMemory:
		return user.NewMemoryPersister(), noop, nil
	case config.StorageFile:
		return user.NewFilePersister(cfg.StorageDir), noop, nil
	case config.StoragePostgres:
		database, err := openDatabase(cfg)
		if err != nil {
			return nil, noop, err
		}
		return user.NewPostgresPersister(database), database.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func newPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NewNopPublisher()
	}
	return events.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
}

func newServer(ctx context.Context, cfg *config.Config, persister user.Persister, publisher events.Publisher) (*server, error) {
	m := metrics.New()
	st := store.New(ctx, persister)
	gateway := ai.NewGeminiGateway(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AITimeout, m)

	matcher, err := match.NewService(gateway, st, cfg.MatchCacheSize, m)
	if err != nil {
		return nil, fmt.Errorf("match service: %w", err)
	}

	sessions := store.NewRegistry()
	h := handler.New(handler.Deps{
		Store:         st,
		Sessions:      sessions,
		Tokens:        user.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Checkout:      checkout.NewService(st, publisher, m, cfg.PaymentDelay),
		Matcher:       matcher,
		Gateway:       gateway,
		Hub:           chat.NewHub(),
		Publisher:     publisher,
		Metrics:       m,
		SecureCookies: cfg.AppEnv == "production",
	})

	if !gateway.Available() {
		logger.L().Warn("GEMINI_API_KEY not set, AI features will answer with fallbacks")
	}

	return &server{
		handler:   handler.NewRouter(h, cfg.CORSOrigins),
		sessions:  sessions,
		matcher:   matcher,
		publisher: publisher,
	}, nil
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	persister, closeStorage, err := newPersister(cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	publisher := newPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("failed to close event publisher", zap.Error(err))
		}
	}()

	app, err := newServer(ctx, cfg, persister, publisher)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go app.sessions.Run(ctx, sessionSweepInterval)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.AppEnv),
			zap.String("storage", cfg.StorageDriver),
		)
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	app.matcher.Wait()
	return nil
}
