package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gosshub/auth"
	"gosshub/internal/config"
	"gosshub/internal/db"
	"gosshub/internal/logger"
	"gosshub/internal/notify"
	"gosshub/internal/router"
	"gosshub/internal/worker"
	"gosshub/redis"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the database and start the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg.Environment, cfg.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}

	if !cfg.IsProduction() {
		if err := seedAdmin(ctx, gdb); err != nil {
			log.Warn().Err(err).Msg("seeding development admin failed")
		}
	}

	// Redis is optional: without it logout cannot revoke tokens and the
	// redis notify backend is unavailable.
	rdb, _ := redis.NewClient(ctx, cfg.RedisAddress)
	if rdb != nil {
		defer rdb.Close()
	}

	notifier, err := newNotifier(cfg.Notify, rdb)
	if err != nil {
		return err
	}
	pool := worker.NewWorkerPool(cfg.Notify.WorkerCount)

	engine := router.New(router.Deps{
		Config:     cfg,
		DB:         gdb,
		Issuer:     auth.NewIssuer(cfg.JWTSecret, cfg.AccessTTL),
		Tokens:     redis.NewTokenStore(rdb),
		Dispatcher: notify.NewDispatcher(gdb, notifier, pool),
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: engine.Handler(),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.ServerPort).Str("notify", cfg.Notify.Backend).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("pending notifications were cancelled")
	}

	log.Info().Msg("server shutdown complete")
	return nil
}
