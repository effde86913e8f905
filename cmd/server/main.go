package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/moontide/werebot/internal/config"
	"github.com/moontide/werebot/internal/database"
	"github.com/moontide/werebot/internal/game"
	"github.com/moontide/werebot/internal/migrations"
	"github.com/moontide/werebot/internal/server"
	"github.com/moontide/werebot/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	st := store.New(db)

	if err := server.SeedAdmin(ctx, logger, st, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seeding admin account: %w", err)
	}

	// --- Game engine ---
	broker := server.NewBroker()
	manager := game.NewManager(game.Config{
		MinPlayers:   cfg.MinPlayers,
		MaxPlayers:   cfg.MaxPlayers,
		SetupTimeout: cfg.SetupTimeout,
		PlayTimeout:  cfg.PlayTimeout,
	}, st, server.NewBrokerMessenger(broker), logger)

	if err := manager.Restore(ctx); err != nil {
		return fmt.Errorf("restoring rooms: %w", err)
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, st, manager, broker)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		return manager.RunReaper(gctx, cfg.ReaperInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
