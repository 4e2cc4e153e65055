package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	indexhandler "prisonersearch/internal/index/handler"
	"prisonersearch/internal/platform/config"
	"prisonersearch/internal/platform/httpserver"
	"prisonersearch/internal/platform/logger"
	"prisonersearch/internal/platform/metrics"
	"prisonersearch/internal/platform/middleware"
)

const shutdownTimeout = 10 * time.Second

// main wires the indexer's dependencies, starts the queue workers, the
// outbox relay, the inbound event listener and the admin API, and drains
// them on SIGTERM.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("indexer stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	app, err := wire(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close()

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(metrics.NewHTTP().Instrument)

	h := indexhandler.New(app.services, app.checks, log)
	h.RegisterPublic(router)
	router.Handle("/metrics", promhttp.Handler())

	validator := middleware.NewTokenValidator(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer)
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(validator, middleware.RoleIndexAdmin, log))
		h.Register(r)
	})

	srv := httpserver.New(cfg.Server.Addr, router, httpserver.WithWriteTimeout(cfg.Server.WriteTimeout))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting prisoner indexer", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		return nil
	})
	g.Go(func() error { return app.worker.Run(ctx) })
	g.Go(func() error { return app.sweeper.Run(ctx) })
	g.Go(func() error { return app.relay.Run(ctx) })
	if app.inbound != nil {
		g.Go(func() error { return app.inbound.Run(ctx) })
	}

	return g.Wait()
}
