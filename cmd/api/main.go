package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"asset_tracker/internal/config"
	"asset_tracker/internal/db"
	"asset_tracker/internal/history"
	httpserver "asset_tracker/internal/http"
	"asset_tracker/internal/http/middleware"
	"asset_tracker/internal/lifecycle"
	"asset_tracker/internal/logging"
	"asset_tracker/internal/repository"
	"asset_tracker/internal/search"
	"asset_tracker/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "asset-tracker")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn, err := db.SessionDSN(cfg.DSN, cfg.LockWaitTimeout)
	if err != nil {
		return err
	}
	gdb, err := db.Connect(dsn, db.DefaultPool, logger)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gdb); err != nil {
		return err
	}
	if cfg.SeedOnStart {
		if err := seed.FirstSetup(ctx, gdb, logger); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}

	store := repository.NewGormStore(gdb)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))
	go limiter.Run(ctx, 5*time.Minute)

	router := httpserver.NewRouter(httpserver.Deps{
		Lifecycle: lifecycle.NewService(store, logger.Named("lifecycle")),
		Reader:    store,
		Searcher:  search.NewAggregator(store, logger.Named("search"), cfg.SearchBranchLimit, cfg.SearchMaxPageSize),
		History:   history.NewReconstructor(store, logger.Named("history")),
		Audit:     store,
		DB:        sqlDB,
		Limiter:   limiter,
		Logger:    logger.Named("http"),
		JWTSecret: cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return sqlDB.Close()
}
