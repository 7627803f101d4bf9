package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/joho/godotenv"
	"github.com/vadimbarashkov/expiring-url-shortener/internal/app"
	"github.com/vadimbarashkov/expiring-url-shortener/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env file: %v", err)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := httplog.NewLogger("url-shortener", httplog.Options{
		LogLevel:        cfg.Log.SlogLevel(),
		JSON:            cfg.Log.JSON,
		Concise:         cfg.Log.Concise,
		RequestHeaders:  cfg.Env != config.EnvProd,
		Tags:            map[string]string{"env": cfg.Env},
		QuietDownRoutes: []string{"/api/v1/ping"},
		QuietDownPeriod: 10 * time.Second,
	})

	if err := app.Run(ctx, cfg, logger); err != nil {
		logger.Error("application stopped with error", "err", err)
		os.Exit(1)
	}
}
