package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/app"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/config"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/logger"
	"go.uber.org/zap"
)

const shutdownGrace = 15 * time.Second

func main() {
	// Load environment variables
	config.LoadEnv()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatal("failed to build logger: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.NewApplication(cfg, zlog)
	if err := application.Init(ctx); err != nil {
		zlog.Fatal("failed to initialise application", zap.Error(err))
	}
	if err := application.StartJobs(); err != nil {
		zlog.Fatal("failed to start scheduled jobs", zap.Error(err))
	}

	e := application.NewServer()

	// Start the server
	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("http shutdown", zap.Error(err))
	}
	application.Release(shutdownCtx)
}
