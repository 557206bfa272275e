// cmd/bookstore/main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/time/rate"

	"bookstore/internal/catalog"
	"bookstore/internal/config"
	"bookstore/internal/fulfillment"
	"bookstore/internal/obs"
)

func main() {
	cfg := config.Load()
	logger := obs.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := obs.SetupTracing(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	svc := catalog.NewService(
		fulfillment.NewLogShipper(logger),
		fulfillment.NewLogMailer(logger),
		catalog.WithLogger(logger),
	)
	limiter := rate.NewLimiter(rate.Limit(cfg.PurchaseRatePerSec), cfg.PurchaseBurst)
	handler := catalog.NewHandler(svc, limiter, logger)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: catalog.NewRouter(handler, logger),
	}

	go func() {
		logger.Info("starting bookstore service", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracer shutdown", "error", err)
	}
	logger.Info("bookstore service stopped")
}
