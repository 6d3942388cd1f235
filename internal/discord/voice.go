package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/jonas747/dca"
	"github.com/keshon/basement/internal/music/player"
	"github.com/keshon/basement/internal/music/stream"
	"github.com/keshon/basement/internal/voice"
	"github.com/rs/zerolog"
)

// voiceStates reads the gateway's voice-state cache.
type voiceStates struct {
	state *discordgo.State
}

func (v voiceStates) UserVoiceChannel(guildID, userID string) (string, bool) {
	vs, err := v.state.VoiceState(guildID, userID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return "", false
	}
	return vs.ChannelID, true
}

type voiceJoiner struct {
	dg   *discordgo.Session
	opts *dca.EncodeOptions
	log  zerolog.Logger
}

// Join connects to the channel and puts a fresh player on the connection.
// discordgo bounds the handshake with its own timeout.
func (j *voiceJoiner) Join(ctx context.Context, guildID, channelID string) (voice.Call, error) {
	vc, err := j.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(err, vc.Disconnect())
	}

	log := j.log.With().Str("guild", guildID).Logger()
	return &call{
		Player: player.New(stream.NewDiscordOutput(vc, j.opts), log),
		vc:     vc,
	}, nil
}

// call is a player bound to the voice connection it plays into.
type call struct {
	*player.Player
	vc *discordgo.VoiceConnection
}

func (c *call) Close() error {
	c.Player.Close()
	return c.vc.Disconnect()
}
