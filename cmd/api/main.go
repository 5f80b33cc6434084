package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/di"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/handlers"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/platform/config"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/platform/observability"
)

var (
	version   = "dev"
	commitSHA = "unknown"
)

const shutdownTimeout = 20 * time.Second

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("api terminated", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := container.Close(closeCtx); err != nil {
			logger.Warn("container close incomplete", zap.Error(err))
		}
	}()

	container.Start(ctx)

	health := handlers.NewHealthHandlers(
		handlers.WithHealthBuildInfo(handlers.BuildInfo{
			Version:   version,
			CommitSHA: commitSHA,
		}),
		handlers.WithReadinessCheck("firestore", func(ctx context.Context) error {
			_, err := container.Provider.Client(ctx)
			return err
		}),
	)

	stream := handlers.NewFlashStreamHandler(container.Flash, logger)
	discountDeps := handlers.DiscountHandlersDeps{
		Discounts: container.Discounts,
		Flash:     container.Flash,
		Stream:    stream,
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger),
			observability.TraceMiddleware(),
			observability.RecoveryMiddleware(logger),
			observability.RequestLoggerMiddleware(),
		),
		handlers.WithHealthHandlers(health),
		handlers.WithPricingRoutes(handlers.NewPricingHandlers(container.Quotes).Routes),
		handlers.WithShippingRoutes(handlers.NewShippingHandlers(container.Shipping).Routes),
		handlers.WithDiscountRoutes(handlers.NewDiscountHandlers(discountDeps).Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("api listening",
			zap.String("addr", server.Addr),
			zap.String("version", version))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown incomplete", zap.Error(err))
		_ = server.Close()
	}

	return nil
}
