package command

import (
	"context"

	"github.com/keshon/basement/internal/music"
	"github.com/keshon/basement/internal/voice"
)

// VoiceStates is a read-only view of the gateway's voice-state cache.
type VoiceStates interface {
	// UserVoiceChannel returns the channel the user is connected to in the guild.
	UserVoiceChannel(guildID, userID string) (string, bool)
}

// TrackResolver turns a URL or search query into a playable track.
type TrackResolver interface {
	Resolve(ctx context.Context, query string) (music.Track, error)
}

// Context is everything a handler gets besides its parsed arguments.
type Context struct {
	Interaction Interaction
	Responder   *Responder
	Voice       *voice.Manager
	VoiceStates VoiceStates
	Tracks      TrackResolver
}

// GuildID fails with ErrNotInGuild for DM invocations.
func (c *Context) GuildID() (string, error) {
	if c.Interaction.GuildID == "" {
		return "", ErrNotInGuild
	}
	return c.Interaction.GuildID, nil
}

// UserVoiceChannel fails with ErrNotInVoiceChannel when the invoking user is not
// connected to a voice channel in the guild.
func (c *Context) UserVoiceChannel(guildID string) (string, error) {
	if c.VoiceStates == nil || c.Interaction.UserID == "" {
		return "", ErrNotInVoiceChannel
	}
	ch, ok := c.VoiceStates.UserVoiceChannel(guildID, c.Interaction.UserID)
	if !ok || ch == "" {
		return "", ErrNotInVoiceChannel
	}
	return ch, nil
}

// ActiveSession is the non-creating lookup used by control commands.
func (c *Context) ActiveSession(guildID string) (*voice.Session, error) {
	s, ok := c.Voice.Get(guildID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	return s, nil
}
