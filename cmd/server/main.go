// Command server runs the caffeine tracking API.
//
// Startup order matters: configuration and logging first, then tracing, then
// the database (schema plus seed data), then the background refresher, and
// finally the HTTP server. Shutdown walks the same list in reverse so that
// in-flight requests drain before the refresher and exporters go away.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/jeiu/caffeine-backend/internal/config"
	"github.com/jeiu/caffeine-backend/internal/decay"
	httpapi "github.com/jeiu/caffeine-backend/internal/http"
	"github.com/jeiu/caffeine-backend/internal/observability"
	"github.com/jeiu/caffeine-backend/internal/repo"
	"github.com/jeiu/caffeine-backend/internal/services"
	"github.com/jeiu/caffeine-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.MustLoad()

	sysutil.ConfigureLogging(cfg.LogLevel, cfg.LogPretty)
	log.Info().Str("version", version).Str("port", cfg.Port).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Fatal().Err(err).Msg("enable db tracing failed")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
	if err := repo.SeedChallengeDefinitions(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("seed challenges failed")
	}
	if err := repo.SeedCatalog(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("seed catalogue failed")
	}

	menuSvc := &services.MenuService{DB: db}
	if err := menuSvc.RebuildIndex(ctx); err != nil {
		log.Fatal().Err(err).Msg("build search index failed")
	}

	// Background reconciliation of cached daily totals across midnight. The
	// intake service kicks it after every mutation; the ticker covers idle
	// members.
	intakeSvc := &services.IntakeService{DB: db, Loc: cfg.Location()}
	refresher := decay.NewRefresher(cfg.ReconcileInterval, func(ctx context.Context) {
		if err := intakeSvc.ReconcileStale(ctx, cfg.ReconcileBatch); err != nil {
			log.Warn().Err(err).Msg("reconcile sweep failed")
		}
	})
	refresher.Start(ctx)
	defer refresher.Stop()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, menuSvc, refresher, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("server failed")
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	refresher.Stop()
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
	log.Info().Msg("stopped")
}
