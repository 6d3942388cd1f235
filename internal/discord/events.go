package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/basement/internal/command"
	"github.com/keshon/basement/internal/voice"
	"github.com/keshon/basement/pkg/jobmgr"
	"github.com/keshon/basement/pkg/util"
)

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("connected to gateway")

	if b.cfg.Presence != "" {
		if err := s.UpdateWatchStatus(0, b.cfg.Presence); err != nil {
			b.log.Warn().Err(err).Msg("failed to set presence")
		}
	}

	if !b.cfg.InitSlashCommands {
		b.log.Info().Msg("slash command registration skipped")
		return
	}

	// A bot user shares its id with its application.
	appID := r.User.ID
	err := b.jobs.Go("register-commands", func(ctx context.Context) error {
		return b.registerAll(ctx, s, appID)
	})
	if err != nil {
		b.log.Warn().Err(err).Msg("command registration not scheduled")
	}
}

// registerWorkers bounds concurrent guild syncs; b.register paces the writes.
const registerWorkers = 4

func (b *Bot) registerAll(ctx context.Context, s *discordgo.Session, appID string) error {
	guilds := b.cfg.DiscordGuildIDs
	if b.cfg.GlobalCommands() {
		guilds = []string{""}
	}

	defs := command.Definitions()
	return util.Parallel(ctx, guilds, registerWorkers, func(ctx context.Context, guildID string) error {
		err := syncCommands(ctx, s, b.register, b.log, appID, guildID, defs)
		if err != nil {
			b.log.Error().Err(err).Str("guild", guildID).Msg("failed to register slash commands")
		}
		return err
	})
}

// onInteractionCreate hands each slash command to its own job so the gateway
// read loop never waits on a handler.
func (b *Bot) onInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if b.stopping.Load() {
		b.log.Debug().Str("interaction", i.ID).Msg("shutting down, interaction dropped")
		return
	}

	data := i.ApplicationCommandData()
	cc := &command.Context{
		Interaction: command.NewInteraction(i.Interaction),
		Responder:   command.NewResponder(b.api, i.Interaction),
		Voice:       b.voice,
		VoiceStates: b.states,
		Tracks:      b.tracks,
	}

	err := b.jobs.Go("interaction:"+i.ID, func(ctx context.Context) error {
		return b.router.Handle(ctx, cc, data)
	})
	if errors.Is(err, jobmgr.ErrClosed) {
		b.log.Debug().Str("interaction", i.ID).Msg("shutting down, interaction dropped")
	}
}

// onVoiceStateUpdate tears the guild's session down when the bot is
// disconnected or kicked from its voice channel.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if s.State.User == nil || v.UserID != s.State.User.ID || v.ChannelID != "" {
		return
	}
	if _, ok := b.voice.Get(v.GuildID); !ok {
		return
	}

	b.jobs.Go("voice-cleanup:"+v.GuildID, func(ctx context.Context) error {
		err := b.voice.Remove(ctx, v.GuildID)
		if err != nil && !errors.Is(err, voice.ErrNoSession) {
			b.log.Warn().Err(err).Str("guild", v.GuildID).Msg("failed to clean up voice session")
			return err
		}
		b.log.Info().Str("guild", v.GuildID).Msg("left voice channel, session removed")
		return nil
	})
}

func (b *Bot) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	if !b.stopping.Load() {
		b.log.Warn().Msg("gateway disconnected, waiting for reconnect")
	}
}
