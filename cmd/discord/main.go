// cmd/discord/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/basement/internal/config"
	"github.com/keshon/basement/internal/discord"
	"github.com/keshon/basement/internal/logger"
	"github.com/keshon/basement/internal/music/sources"
)

const appName = "basement"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, closer, err := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	log.Info().Str("app", appName).Msg("starting bot")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resolver, err := sources.New(ctx, log, sources.Options{
		YouTubeAPIKey: cfg.YouTubeAPIKey,
		Proxy:         cfg.YouTubeProxy,
		Timeout:       cfg.LookupTimeout,
		MaxAttempts:   cfg.LookupAttempts,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to set up track sources")
		return err
	}

	bot, err := discord.New(cfg, log, resolver)
	if err != nil {
		log.Error().Err(err).Msg("failed to create bot")
		return err
	}

	if err := bot.Run(ctx); err != nil {
		log.Error().Err(err).Msg("bot stopped with errors")
		return err
	}

	log.Info().Msg("bot exited cleanly")
	return nil
}
