// /internal/music/stream/discord.go
package stream

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/jonas747/dca"
	"github.com/keshon/basement/internal/music"
	"github.com/keshon/basement/internal/music/player"
)

// DiscordOutput encodes tracks with ffmpeg through dca and streams the opus
// frames into a voice connection.
type DiscordOutput struct {
	vc   *discordgo.VoiceConnection
	opts *dca.EncodeOptions
}

// EncodeOptions returns dca's standard options tuned for streaming remote URLs.
func EncodeOptions(bitrate int) *dca.EncodeOptions {
	opts := *dca.StdEncodeOptions
	opts.RawOutput = true
	opts.Bitrate = bitrate
	opts.Application = dca.AudioApplicationLowDelay
	return &opts
}

func NewDiscordOutput(vc *discordgo.VoiceConnection, opts *dca.EncodeOptions) *DiscordOutput {
	return &DiscordOutput{vc: vc, opts: opts}
}

func (o *DiscordOutput) Play(track music.Track) (player.Playback, error) {
	if track.StreamURL == "" {
		return nil, fmt.Errorf("track %q has no stream url", track.Title)
	}

	if err := o.vc.Speaking(true); err != nil {
		return nil, fmt.Errorf("failed to set speaking: %w", err)
	}

	enc, err := dca.EncodeFile(track.StreamURL, o.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start encoder: %w", err)
	}

	// Buffered so the single result never waits for a reader.
	done := make(chan error, 1)
	s := dca.NewStream(enc, o.vc, done)

	return &discordPlayback{enc: enc, stream: s, done: done}, nil
}

type discordPlayback struct {
	enc    *dca.EncodeSession
	stream *dca.StreamingSession
	done   chan error
}

func (p *discordPlayback) Done() <-chan error { return p.done }

func (p *discordPlayback) SetPaused(paused bool) { p.stream.SetPaused(paused) }

// Stop kills ffmpeg. A paused session has no running stream loop, so it is
// unpaused first to let it hit EOF and report on Done.
func (p *discordPlayback) Stop() {
	p.stream.SetPaused(false)
	p.enc.Cleanup()
}
