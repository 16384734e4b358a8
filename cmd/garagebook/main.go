package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/garagebook/internal/config"
	"github.com/dukerupert/garagebook/internal/database"
	"github.com/dukerupert/garagebook/internal/logging"
	"github.com/dukerupert/garagebook/internal/server"
	"github.com/dukerupert/garagebook/internal/store"
	"golang.org/x/sync/errgroup"
)

func main() {
	configFile := flag.String("config", "", "path to config file (default: search for garagebook.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("failed to create data dir: %v", err)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv := server.New(db, cfg, logger)

	httpServer := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     srv.Router(),
		ReadTimeout: 2 * time.Minute,
		// Imports of large archives run inside the request.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("garagebook listening", "addr", httpServer.Addr, "data_dir", cfg.DataDir)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		runCleanup(gctx, srv, store.NewBackupImportStore(db), logger)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("exit", "error", err)
		os.Exit(1)
	}
}

// Import history older than this is pruned.
const importHistoryRetention = 90 * 24 * time.Hour

// runCleanup purges expired sessions, stale rate limit entries and old import
// history until ctx is done.
func runCleanup(ctx context.Context, srv *server.Server, imports *store.BackupImportStore, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := srv.SessionStore().DeleteExpired()
			if err != nil {
				logger.Error("delete expired sessions", "error", err)
			} else if n > 0 {
				logger.Info("deleted expired sessions", "count", n)
			}
			if n := srv.RateLimiter().Cleanup(); n > 0 {
				logger.Debug("dropped closed rate limit windows", "count", n)
			}
			if n, err := imports.DeleteOlderThan(time.Now().Add(-importHistoryRetention)); err != nil {
				logger.Error("prune import history", "error", err)
			} else if n > 0 {
				logger.Info("pruned import history", "count", n)
			}
		}
	}
}
