// rankboard is a continuously-ranked, in-memory customer leaderboard.
//
// ARCHITECTURE:
// 1. Customer Store (internal/customerstore): lock-free concurrent map of
//    customer_id -> score.
// 2. Ranking View (internal/ranking): immutable sorted snapshot excluding
//    non-positive scores.
// 3. Coherence Controller (internal/coherence): debounced rebuild scheduler
//    that keeps the Ranking View consistent with the Customer Store.
// 4. Query Engine (internal/query): range and neighbor-window queries over
//    a Ranking View.
//
// Run with: go run ./cmd/rankboard
// Environment: see internal/config for the settings; LOG_FILE (an optional
// log file path) is read here in main.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"rankboard/internal/coherence"
	"rankboard/internal/config"
	"rankboard/internal/customerstore"
	"rankboard/internal/httpapi"
	"rankboard/internal/obslog"
)

func main() {
	cfg := config.Load()

	log, err := obslog.New(cfg.LogLevel, os.Getenv("LOG_FILE"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("starting rankboard",
		zap.String("listen_address", cfg.ListenAddress),
		zap.Int("shard_hint", cfg.ShardHint),
		zap.Duration("rebuild_debounce", cfg.RebuildDebounce),
		zap.Duration("rebuild_ceiling", cfg.RebuildCeiling),
	)

	store := customerstore.New()
	controller := coherence.NewWithTiming(store, cfg.RebuildDebounce, cfg.RebuildCeiling)

	svc := httpapi.NewService(store, controller)
	router := httpapi.NewRouter(svc, log)

	srv := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info("listening", zap.String("addr", cfg.ListenAddress))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	svc.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("stopped")
}
