package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"delegatesigner/internal/api"
	"delegatesigner/internal/config"
	"delegatesigner/internal/logger"
	"delegatesigner/internal/manager"
	"delegatesigner/internal/ws"

	"go.uber.org/zap"
)

func initServer(ctx context.Context, name string, server *http.Server, done chan<- struct{}, logger *zap.Logger) {
	logger = logger.With(zap.String("server", name), zap.String("addr", server.Addr))

	go func() {
		logger.Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Listen for the interrupt signal.
	<-ctx.Done()
	logger.Info("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
	done <- struct{}{}
}

func runServe(cfg *config.Config, logger *zap.Logger) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := manager.NewManager(cfg.VerificationTTL, logger)

	apiServer := api.NewAPIServer(cfg.APIPort, manager, logger)
	wsServer := ws.NewWSServer(cfg.WSPort, manager, logger)

	apiDone := make(chan struct{}, 1)
	wsDone := make(chan struct{}, 1)

	go initServer(ctx, "api", apiServer, apiDone, logger)
	go initServer(ctx, "ws", wsServer, wsDone, logger)

	<-ctx.Done()
	stop() // Allow Ctrl+C to force shutdown

	<-apiDone
	<-wsDone

	logger.Info("servers down, now closing the manager")
	manager.Close()
	logger.Info("graceful shutdown complete")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.DotEnvPath != "" {
		log.Info("loaded .env file", zap.String("path", cfg.DotEnvPath))
	}
	log.Info("starting", zap.String("mode", string(cfg.Mode)))

	switch cfg.Mode {
	case config.ModeServe:
		runServe(cfg, log)
	case config.ModeSign:
		if err := runSign(cfg, log, os.Stdout, time.Now); err != nil {
			log.Error("signing failed", zap.Error(err))
			log.Sync()
			os.Exit(1)
		}
	}
}
