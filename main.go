package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"Motorsize/internal/config"
	"Motorsize/internal/logging"
	"Motorsize/internal/server"

	"go.uber.org/zap"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := server.Run(ctx, cfg, log); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
