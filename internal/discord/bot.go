// Package discord connects the command core to the Discord gateway.
package discord

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/basement/internal/command"
	"github.com/keshon/basement/internal/config"
	"github.com/keshon/basement/internal/music/stream"
	"github.com/keshon/basement/internal/router"
	"github.com/keshon/basement/internal/voice"
	"github.com/keshon/basement/pkg/jobmgr"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Bot owns the gateway session and everything that lives as long as it.
type Bot struct {
	cfg *config.Config
	log zerolog.Logger

	dg       *discordgo.Session
	api      command.InteractionAPI
	states   command.VoiceStates
	router   *router.Router
	voice    *voice.Manager
	tracks   command.TrackResolver
	jobs     *jobmgr.Manager
	register *rate.Limiter

	stopping atomic.Bool
}

func New(cfg *config.Config, log zerolog.Logger, tracks command.TrackResolver) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates
	dg.StateEnabled = true

	log = log.With().Str("component", "discord").Logger()
	joiner := &voiceJoiner{
		dg:   dg,
		opts: stream.EncodeOptions(cfg.AudioBitrate),
		log:  log,
	}

	b := &Bot{
		cfg:    cfg,
		log:    log,
		dg:     dg,
		api:    interactionAPI{dg: dg},
		states: voiceStates{state: dg.State},
		router: router.New(log,
			router.WithLogger(),
			router.WithCooldown(rate.Limit(cfg.CommandRate), cfg.CommandBurst),
		),
		voice:    voice.NewManager(joiner, log),
		tracks:   tracks,
		jobs:     jobmgr.NewManager(log, cfg.CommandTimeout),
		register: rate.NewLimiter(rate.Limit(cfg.RegisterRate), 1),
	}

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onVoiceStateUpdate)
	dg.AddHandler(b.onDisconnect)
	return b, nil
}

// Run opens the gateway and blocks until ctx is cancelled, then shuts down.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, cleaning up")
	return b.shutdown()
}

// shutdown drains in-flight handlers, leaves every voice channel and closes the
// gateway, all bounded by the shutdown timeout.
func (b *Bot) shutdown() error {
	b.stopping.Store(true)

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := b.jobs.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to drain handlers: %w", err))
	}
	if err := b.voice.CloseAll(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to close voice sessions: %w", err))
	}
	if err := b.dg.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close gateway: %w", err))
	}
	return errors.Join(errs...)
}
