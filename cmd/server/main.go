package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lespal/lespal_server/internal/app"
	"github.com/lespal/lespal_server/internal/config"
	"go.uber.org/zap"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)

	defer logger.Sync()

	logger.Sugar().Infow("Starting lespal server",
		"environment", cfg.Environment,
		"addr", cfg.HTTPAddr)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	server, err := app.NewServer(cfg, pool, logger)
	if err != nil {
		logger.Fatal("Failed to build server", zap.Error(err))
	}

	server.Scheduler.Start(ctx)
	defer server.Scheduler.Stop()

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		if err := server.Cache.Save(); err != nil {
			logger.Warn("Failed to persist cache on shutdown", zap.Error(err))
		}
		if err := server.App.Shutdown(); err != nil {
			logger.Error("Shutdown error", zap.Error(err))
		}
	}()

	if err := server.App.Listen(cfg.HTTPAddr); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}
