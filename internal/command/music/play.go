// Package music implements the /music subcommands.
package music

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/basement/internal/command"
	"github.com/keshon/basement/internal/voice"
	"github.com/rs/zerolog"
)

// Play joins the caller's voice channel if needed and queues the query.
// The reply is held until the track's metadata has been resolved.
func Play(ctx context.Context, cc *command.Context, inv command.MusicPlay) error {
	guildID, err := cc.GuildID()
	if err != nil {
		return err
	}
	channelID, err := cc.UserVoiceChannel(guildID)
	if err != nil {
		return err
	}

	if err := cc.Responder.Defer(ctx); err != nil {
		return err
	}

	session, err := cc.Voice.GetOrJoin(ctx, guildID, channelID)
	if err != nil {
		return command.Upstream("Failed to join your voice channel.", err)
	}

	track, err := cc.Tracks.Resolve(ctx, inv.Query)
	if err != nil {
		if command.KindOf(err) != 0 {
			return err
		}
		return command.Upstream("Failed to resolve track.", err)
	}
	track.RequestedBy = cc.Interaction.UserName

	var pos int
	err = session.Do(ctx, func(call voice.Call) error {
		n, err := call.Enqueue(track)
		pos = n
		return err
	})
	if err != nil {
		return controlError(err)
	}
	if pos < 1 {
		return command.Upstream("Failed to start playback.", fmt.Errorf("enqueue returned position %d", pos))
	}

	zerolog.Ctx(ctx).Info().
		Str("guild", guildID).
		Str("title", track.Title).
		Int("position", pos).
		Msg("track queued")

	embed := command.SuccessEmbed(inv, track.Label())
	if track.Artist != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: track.Artist}
	}
	if track.Thumbnail != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: track.Thumbnail}
	}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Position", Value: position(pos), Inline: true},
	}
	if track.Duration > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Duration", Value: track.Duration.String(), Inline: true,
		})
	}

	return cc.Responder.Reply(ctx, command.Reply{Embed: embed})
}

func position(pos int) string {
	if pos <= 1 {
		return "Now playing"
	}
	return fmt.Sprintf("#%d in queue", pos)
}
