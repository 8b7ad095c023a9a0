package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dia-relay/backend/config"
	"dia-relay/backend/global"
	"dia-relay/backend/initialize"
)

func main() {
	cfgPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Cannot load config:", err)
		os.Exit(1)
	}

	logFile, err := initialize.InitLogger(cfg.Log.Level, cfg.Log.Path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Cannot open log file:", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	log := global.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := initialize.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("hub startup failed")
	}
	log.Info().
		Int("ingest_port", cfg.Ingest.Port).
		Int("http_port", cfg.HTTP.Port).
		Str("db", cfg.DB.Driver).
		Msg("hub started")

	if err := app.Run(ctx); err != nil {
		log.Error().Err(err).Msg("hub stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("hub stopped")
}
