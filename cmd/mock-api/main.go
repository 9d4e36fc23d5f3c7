// cmd/mock-api/main.go
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

	"job-portal-workers/internal/common/config"
	"job-portal-workers/internal/common/database"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/mockapi"
)

func main() {
	cfg, err := config.LoadMockAPI()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	client, err := database.OpenSQLite(cfg.MockAPI.DataDir, "mockapi")
	if errors.Is(err, database.ErrStoreLocked) {
		zapLog.Fatal("another mock-api is already using the data dir", zap.String("dataDir", cfg.MockAPI.DataDir))
	}
	if err != nil {
		zapLog.Fatal("open store failed", zap.Error(err))
	}
	defer client.Close()

	ctx := context.Background()
	delay := time.Duration(cfg.MockAPI.Delay) * time.Millisecond
	store, err := mockapi.NewStore(ctx, client.DB, delay)
	if err != nil {
		zapLog.Fatal("init store failed", zap.Error(err))
	}

	if seed, err := mockapi.LoadSeed(cfg.MockAPI.SeedFile); err != nil {
		zapLog.Warn("seed not loaded", zap.Error(err))
	} else if seeded, err := store.SeedIfEmpty(ctx, seed); err != nil {
		zapLog.Fatal("seeding failed", zap.Error(err))
	} else if seeded {
		zapLog.Info("store seeded", zap.String("seedFile", cfg.MockAPI.SeedFile))
	}

	srv := &http.Server{
		Addr:              cfg.MockAPI.Addr,
		Handler:           mockapi.NewServer(store, log).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zapLog.Info("mock api listening",
			zap.String("addr", cfg.MockAPI.Addr),
			zap.String("db", client.Path()),
			zap.Duration("delay", delay),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("mock api server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	zapLog.Info("Shutdown signal received, stopping mock api...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
}
