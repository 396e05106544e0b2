package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/greenbasket/farmdash/config"
	"github.com/greenbasket/farmdash/internal/app"
)

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, cleanup, err := app.Bootstrap(ctx, &cfg)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	if err := application.Run(ctx); err != nil {
		application.Logger.Errorf(ctx, "application stopped with error: %v", err)
	}
}
