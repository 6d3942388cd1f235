// Package router turns slash command payloads into handler calls and applies the
// failure policy when a handler errors.
package router

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/basement/internal/command"
	"github.com/keshon/basement/internal/command/core"
	"github.com/keshon/basement/internal/command/music"
	"github.com/rs/zerolog"
)

// Handler runs one parsed invocation.
type Handler func(ctx context.Context, cc *command.Context, inv command.Invocation) error

type Router struct {
	log     zerolog.Logger
	handler Handler
}

// New builds a router whose dispatch is wrapped by mws, the first being outermost.
func New(log zerolog.Logger, mws ...Middleware) *Router {
	r := &Router{log: log.With().Str("component", "router").Logger()}
	r.handler = Apply(r.Route, mws...)
	return r
}

// Route dispatches inv to its handler. It applies no middleware.
func (r *Router) Route(ctx context.Context, cc *command.Context, inv command.Invocation) error {
	switch inv := inv.(type) {
	case command.Ping:
		return core.Ping(ctx, cc)
	case command.MusicPlay:
		return music.Play(ctx, cc, inv)
	case command.MusicPause:
		return music.Pause(ctx, cc, inv)
	case command.MusicResume:
		return music.Resume(ctx, cc, inv)
	case command.MusicSkip:
		return music.Skip(ctx, cc, inv)
	case command.MusicStop:
		return music.Stop(ctx, cc, inv)
	case nil:
		return command.UnknownCommand("")
	default:
		return command.UnknownCommand(inv.Name())
	}
}

// Handle parses data, runs it through the middleware chain and reports any
// failure. The handler's error is returned unchanged.
func (r *Router) Handle(ctx context.Context, cc *command.Context, data discordgo.ApplicationCommandInteractionData) error {
	log := r.log.With().
		Str("interaction", cc.Interaction.ID).
		Str("guild", cc.Interaction.GuildID).
		Str("user", cc.Interaction.UserID).
		Logger()
	ctx = log.WithContext(ctx)

	inv, err := command.Parse(data)
	if err == nil {
		err = r.handler(ctx, cc, inv)
	}
	if err != nil {
		r.fail(ctx, cc, data.Name, err)
	}
	return err
}

func (r *Router) fail(ctx context.Context, cc *command.Context, name string, err error) {
	log := zerolog.Ctx(ctx)

	kind := command.KindOf(err)
	if kind == command.KindUnknownCommand {
		log.Error().Err(err).Str("command", name).Msg("unknown command")
		return
	}

	ev := log.Error()
	if kind == command.KindPrecondition {
		ev = log.Info()
	}
	ev = ev.Err(err).Str("command", name).Stringer("kind", kind)

	state := cc.Responder.State()
	if state == command.StateReplied {
		ev.Msg("command failed after replying")
		return
	}
	ev.Stringer("state", state).Msg("command failed")

	reply := command.Reply{Embed: command.ErrorEmbed(command.UserMessage(err)), Ephemeral: true}
	if rerr := cc.Responder.Reply(ctx, reply); rerr != nil {
		log.Warn().Err(rerr).Msg("failed to report command failure")
	}
}
