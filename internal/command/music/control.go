package music

import (
	"context"
	"errors"

	"github.com/keshon/basement/internal/command"
	"github.com/keshon/basement/internal/music/player"
	"github.com/keshon/basement/internal/voice"
)

func Pause(ctx context.Context, cc *command.Context, inv command.MusicPause) error {
	return control(ctx, cc, inv, func(call voice.Call) (string, error) {
		return "⏸️ Playback paused.", call.Pause()
	})
}

func Resume(ctx context.Context, cc *command.Context, inv command.MusicResume) error {
	return control(ctx, cc, inv, func(call voice.Call) (string, error) {
		return "▶️ Playback resumed.", call.Resume()
	})
}

// Skip stops the current track and reports what plays next.
func Skip(ctx context.Context, cc *command.Context, inv command.MusicSkip) error {
	return control(ctx, cc, inv, func(call voice.Call) (string, error) {
		skipped, err := call.Skip()
		if err != nil {
			return "", err
		}
		desc := "⏭️ Skipped " + skipped.Label()
		if next, ok := call.Current(); ok {
			desc += "\n🎶 Now playing " + next.Label()
		} else {
			desc += "\nThe queue is empty."
		}
		return desc, nil
	})
}

// Stop leaves the voice channel and drops the queue.
func Stop(ctx context.Context, cc *command.Context, inv command.MusicStop) error {
	guildID, err := cc.GuildID()
	if err != nil {
		return err
	}
	if _, err := cc.ActiveSession(guildID); err != nil {
		return err
	}

	if err := cc.Voice.Remove(ctx, guildID); err != nil {
		if errors.Is(err, voice.ErrNoSession) {
			return command.ErrNoActiveSession
		}
		return command.Upstream("Failed to leave the voice channel.", err)
	}

	return cc.Responder.Reply(ctx, command.Reply{
		Embed: command.SuccessEmbed(inv, "⏹️ Playback stopped. Queue cleared."),
	})
}

// control runs fn on the guild's existing call under the session lock and
// replies with the description fn returns.
func control(ctx context.Context, cc *command.Context, inv command.Invocation, fn func(voice.Call) (string, error)) error {
	guildID, err := cc.GuildID()
	if err != nil {
		return err
	}
	session, err := cc.ActiveSession(guildID)
	if err != nil {
		return err
	}

	var desc string
	err = session.Do(ctx, func(call voice.Call) error {
		d, err := fn(call)
		desc = d
		return err
	})
	if err != nil {
		return controlError(err)
	}

	return cc.Responder.Reply(ctx, command.Reply{Embed: command.SuccessEmbed(inv, desc)})
}

func controlError(err error) error {
	switch {
	case errors.Is(err, player.ErrNothingPlaying):
		return command.ErrNothingPlaying
	case errors.Is(err, player.ErrStartFailed):
		return command.Upstream("Failed to start playback.", err)
	case errors.Is(err, voice.ErrSessionClosed), errors.Is(err, player.ErrClosed):
		return command.ErrNoActiveSession
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return command.Upstream("The voice channel is busy, try again.", err)
	default:
		return command.Upstream("Failed to control playback.", err)
	}
}
