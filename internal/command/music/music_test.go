package music

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/keshon/basement/internal/command"
	"github.com/keshon/basement/internal/command/commandtest"
	"github.com/keshon/basement/internal/music/player"
)

const (
	guild   = "guild-1"
	channel = "voice-1"
)

func TestPlayRequiresGuild(t *testing.T) {
	env := commandtest.NewEnv()
	cc := env.Context("", "alice")

	err := Play(context.Background(), cc, command.MusicPlay{Query: "song"})
	if !errors.Is(err, command.ErrNotInGuild) {
		t.Fatalf("expected ErrNotInGuild, got %v", err)
	}
	if creates, edits := env.API.Calls(); creates+edits != 0 {
		t.Error("handler must not respond on a precondition failure")
	}
}

func TestPlayRequiresVoiceChannel(t *testing.T) {
	env := commandtest.NewEnv()
	cc := env.Context(guild, "alice")

	err := Play(context.Background(), cc, command.MusicPlay{Query: "song"})
	if !errors.Is(err, command.ErrNotInVoiceChannel) {
		t.Fatalf("expected ErrNotInVoiceChannel, got %v", err)
	}
	if env.Voice.Len() != 0 || env.Joiner.Joins() != 0 {
		t.Error("no session may be created")
	}
	if env.Resolver.Calls() != 0 {
		t.Error("resolver must not be called")
	}
	if cc.Responder.State() != command.StateFresh {
		t.Errorf("expected fresh responder, got %v", cc.Responder.State())
	}
}

func TestPlayQueuesAndReplies(t *testing.T) {
	env := commandtest.NewEnv()
	env.VoiceStates.Set(guild, "alice", channel)
	cc := env.Context(guild, "alice")

	if err := Play(context.Background(), cc, command.MusicPlay{Query: "song"}); err != nil {
		t.Fatalf("play: %v", err)
	}

	if cc.Responder.State() != command.StateReplied {
		t.Fatalf("expected replied, got %v", cc.Responder.State())
	}
	creates, edits := env.API.Calls()
	if creates != 1 || edits != 1 {
		t.Fatalf("expected defer then edit, got %d creates and %d edits", creates, edits)
	}

	embed := env.API.LastEmbed()
	if embed == nil {
		t.Fatal("expected an embed")
	}
	if embed.Author == nil || embed.Author.Name != "Tester" {
		t.Errorf("expected artist in author, got %+v", embed.Author)
	}
	if !strings.Contains(embed.Description, "](https://example.com/song)") {
		t.Errorf("expected title link, got %q", embed.Description)
	}
	if embed.Image == nil || embed.Image.URL != "https://example.com/song.jpg" {
		t.Errorf("expected thumbnail image, got %+v", embed.Image)
	}
	if embed.Color != command.EmbedColor {
		t.Errorf("unexpected color %x", embed.Color)
	}

	call := env.Joiner.Call(guild)
	if call == nil || call.Len() != 1 {
		t.Fatal("expected one track on the call")
	}
	cur, ok := call.Current()
	if !ok || cur.RequestedBy != "alice" {
		t.Errorf("expected alice's track playing, got %+v", cur)
	}
}

func TestConcurrentPlaysShareOneSession(t *testing.T) {
	env := commandtest.NewEnv()
	env.VoiceStates.Set(guild, "alice", channel)
	env.VoiceStates.Set(guild, "bob", channel)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, user := range []string{"alice", "bob"} {
		cc := env.Context(guild, user)
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			errs <- Play(context.Background(), cc, command.MusicPlay{Query: "song-" + user})
		}(user)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("play: %v", err)
		}
	}
	if env.Joiner.Joins() != 1 {
		t.Errorf("expected a single join, got %d", env.Joiner.Joins())
	}
	if env.Voice.Len() != 1 {
		t.Errorf("expected one session, got %d", env.Voice.Len())
	}
	if n := env.Joiner.Call(guild).Len(); n != 2 {
		t.Errorf("expected queue length 2, got %d", n)
	}
}

func TestPlayResolveFailure(t *testing.T) {
	env := commandtest.NewEnv()
	env.Resolver.Err = commandtest.ErrUpstream
	env.VoiceStates.Set(guild, "alice", channel)
	cc := env.Context(guild, "alice")

	err := Play(context.Background(), cc, command.MusicPlay{Query: "song"})
	if command.KindOf(err) != command.KindUpstream || !errors.Is(err, commandtest.ErrUpstream) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
	if cc.Responder.State() != command.StateDeferred {
		t.Errorf("expected deferred, got %v", cc.Responder.State())
	}
	if n := env.Joiner.Call(guild).Len(); n != 0 {
		t.Errorf("nothing should be queued, got %d", n)
	}
}

func TestPlayJoinFailure(t *testing.T) {
	env := commandtest.NewEnv()
	env.Joiner.Err = fmt.Errorf("voice gateway: %w", commandtest.ErrUpstream)
	env.VoiceStates.Set(guild, "alice", channel)

	err := Play(context.Background(), env.Context(guild, "alice"), command.MusicPlay{Query: "song"})
	if command.KindOf(err) != command.KindUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if env.Voice.Len() != 0 {
		t.Error("a failed join must not leave a session behind")
	}
}

func TestPlayStartFailure(t *testing.T) {
	env := commandtest.NewEnv()
	env.Joiner.PlayErr = errors.New("ffmpeg failed")
	env.VoiceStates.Set(guild, "alice", channel)
	cc := env.Context(guild, "alice")

	err := Play(context.Background(), cc, command.MusicPlay{Query: "song"})
	if command.KindOf(err) != command.KindUpstream || !errors.Is(err, player.ErrStartFailed) {
		t.Fatalf("expected start failure, got %v", err)
	}
	if msg := command.UserMessage(err); msg != "Failed to start playback." {
		t.Errorf("unexpected user message %q", msg)
	}
	if cc.Responder.State() != command.StateDeferred {
		t.Errorf("no success reply may be sent, got %v", cc.Responder.State())
	}
	if _, edits := env.API.Calls(); edits != 0 {
		t.Errorf("expected no edits, got %d", edits)
	}
	if n := env.Joiner.Call(guild).Len(); n != 0 {
		t.Errorf("failed track must not be queued, got %d", n)
	}
}

func TestControlWithoutSession(t *testing.T) {
	handlers := map[string]func(context.Context, *command.Context) error{
		"pause":  func(ctx context.Context, cc *command.Context) error { return Pause(ctx, cc, command.MusicPause{}) },
		"resume": func(ctx context.Context, cc *command.Context) error { return Resume(ctx, cc, command.MusicResume{}) },
		"skip":   func(ctx context.Context, cc *command.Context) error { return Skip(ctx, cc, command.MusicSkip{}) },
		"stop":   func(ctx context.Context, cc *command.Context) error { return Stop(ctx, cc, command.MusicStop{}) },
	}
	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			env := commandtest.NewEnv()
			env.VoiceStates.Set(guild, "alice", channel)

			err := h(context.Background(), env.Context(guild, "alice"))
			if !errors.Is(err, command.ErrNoActiveSession) {
				t.Fatalf("expected ErrNoActiveSession, got %v", err)
			}
			if env.Voice.Len() != 0 || env.Joiner.Joins() != 0 {
				t.Error("control commands must not create a session")
			}
			if creates, edits := env.API.Calls(); creates+edits != 0 {
				t.Error("no response expected from the handler")
			}

			if err := h(context.Background(), env.Context("", "alice")); !errors.Is(err, command.ErrNotInGuild) {
				t.Errorf("DM: expected ErrNotInGuild, got %v", err)
			}
		})
	}
}

func playOne(t *testing.T, env *commandtest.Env, query string) {
	t.Helper()
	env.VoiceStates.Set(guild, "alice", channel)
	if err := Play(context.Background(), env.Context(guild, "alice"), command.MusicPlay{Query: query}); err != nil {
		t.Fatalf("play %s: %v", query, err)
	}
}

func TestPauseResumeRoundTrip(t *testing.T) {
	env := commandtest.NewEnv()
	playOne(t, env, "song")
	call := env.Joiner.Call(guild)

	// Control commands only need the bot's session, not the caller's presence.
	cc := env.Context(guild, "bob")
	if err := Pause(context.Background(), cc, command.MusicPause{}); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if !call.Paused() {
		t.Fatal("expected paused")
	}
	if !strings.Contains(env.API.LastEmbed().Title, "/music pause") {
		t.Errorf("unexpected title %q", env.API.LastEmbed().Title)
	}

	if err := Resume(context.Background(), env.Context(guild, "bob"), command.MusicResume{}); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if call.Paused() {
		t.Error("expected resumed")
	}
	if call.Len() != 1 {
		t.Errorf("queue must be untouched, got %d", call.Len())
	}
}

func TestPauseNothingPlaying(t *testing.T) {
	env := commandtest.NewEnv()
	if _, err := env.Voice.GetOrJoin(context.Background(), guild, channel); err != nil {
		t.Fatal(err)
	}
	cc := env.Context(guild, "alice")

	err := Pause(context.Background(), cc, command.MusicPause{})
	if !errors.Is(err, command.ErrNothingPlaying) {
		t.Fatalf("expected ErrNothingPlaying, got %v", err)
	}
	if cc.Responder.State() != command.StateFresh {
		t.Errorf("expected fresh, got %v", cc.Responder.State())
	}
}

func TestSkipAdvances(t *testing.T) {
	env := commandtest.NewEnv()
	playOne(t, env, "first")
	playOne(t, env, "second")

	if err := Skip(context.Background(), env.Context(guild, "alice"), command.MusicSkip{}); err != nil {
		t.Fatalf("skip: %v", err)
	}
	cur, ok := env.Joiner.Call(guild).Current()
	if !ok || cur.Title != "second" {
		t.Fatalf("expected second track playing, got %+v", cur)
	}
	desc := env.API.LastEmbed().Description
	if !strings.Contains(desc, "Skipped [`first`]") || !strings.Contains(desc, "Now playing [`second`]") {
		t.Errorf("unexpected description %q", desc)
	}
}

func TestStopLeavesChannel(t *testing.T) {
	env := commandtest.NewEnv()
	playOne(t, env, "song")
	call := env.Joiner.Call(guild)

	if err := Stop(context.Background(), env.Context(guild, "alice"), command.MusicStop{}); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if env.Voice.Len() != 0 {
		t.Error("session should be removed")
	}
	if !call.Closed() || call.Len() != 0 {
		t.Error("call should be closed and cleared")
	}

	playOne(t, env, "again")
	if env.Joiner.Joins() != 2 {
		t.Errorf("expected a fresh join after stop, got %d joins", env.Joiner.Joins())
	}
}
