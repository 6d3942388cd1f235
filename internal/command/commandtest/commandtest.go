// Package commandtest provides in-memory fakes for exercising command handlers
// without Discord, ffmpeg or the network.
package commandtest

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/basement/internal/command"
	"github.com/keshon/basement/internal/music"
	"github.com/keshon/basement/internal/music/player"
	"github.com/keshon/basement/internal/voice"
	"github.com/rs/zerolog"
)

// API records every call made through command.InteractionAPI.
type API struct {
	mu       sync.Mutex
	Creates  []*discordgo.InteractionResponse
	Edits    []*discordgo.WebhookEdit
	FailNext error

	embeds []*discordgo.MessageEmbed
}

func (a *API) CreateResponse(_ context.Context, _ *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.takeFailure(); err != nil {
		return err
	}
	a.Creates = append(a.Creates, resp)
	if resp.Data != nil && len(resp.Data.Embeds) > 0 {
		a.embeds = append(a.embeds, resp.Data.Embeds[0])
	}
	return nil
}

func (a *API) EditResponse(_ context.Context, _ *discordgo.Interaction, edit *discordgo.WebhookEdit) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.takeFailure(); err != nil {
		return err
	}
	a.Edits = append(a.Edits, edit)
	if edit.Embeds != nil && len(*edit.Embeds) > 0 {
		a.embeds = append(a.embeds, (*edit.Embeds)[0])
	}
	return nil
}

func (a *API) takeFailure() error {
	err := a.FailNext
	a.FailNext = nil
	return err
}

// Calls returns the number of creates and edits sent so far.
func (a *API) Calls() (creates, edits int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Creates), len(a.Edits)
}

// LastEmbed returns the embed of the most recent create or edit that had one.
func (a *API) LastEmbed() *discordgo.MessageEmbed {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.embeds) == 0 {
		return nil
	}
	return a.embeds[len(a.embeds)-1]
}

// VoiceStates maps guild/user pairs to channel ids.
type VoiceStates struct {
	mu       sync.RWMutex
	channels map[string]string
}

func NewVoiceStates() *VoiceStates {
	return &VoiceStates{channels: make(map[string]string)}
}

func (v *VoiceStates) Set(guildID, userID, channelID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.channels[guildID+"/"+userID] = channelID
}

func (v *VoiceStates) UserVoiceChannel(guildID, userID string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	ch, ok := v.channels[guildID+"/"+userID]
	return ch, ok
}

// Resolver answers every query with a track titled after it, unless Err is set.
type Resolver struct {
	Err   error
	calls atomic.Int32
}

func (r *Resolver) Resolve(_ context.Context, query string) (music.Track, error) {
	r.calls.Add(1)
	if r.Err != nil {
		return music.Track{}, r.Err
	}
	return music.Track{
		Title:     query,
		Artist:    "Tester",
		URL:       "https://example.com/" + query,
		StreamURL: "https://cdn.example.com/" + query,
		Thumbnail: "https://example.com/" + query + ".jpg",
		Source:    music.SourceDirect,
	}, nil
}

func (r *Resolver) Calls() int { return int(r.calls.Load()) }

// Joiner builds real players on top of an output that never finishes a track.
// PlayErr makes every track fail to start.
type Joiner struct {
	joins   atomic.Int32
	Err     error
	PlayErr error

	mu    sync.Mutex
	calls map[string]*Call
}

func (j *Joiner) Join(_ context.Context, guildID, channelID string) (voice.Call, error) {
	j.joins.Add(1)
	if j.Err != nil {
		return nil, j.Err
	}
	c := &Call{Player: player.New(Output{Err: j.PlayErr}, zerolog.Nop())}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.calls == nil {
		j.calls = make(map[string]*Call)
	}
	j.calls[guildID] = c
	return c, nil
}

func (j *Joiner) Joins() int { return int(j.joins.Load()) }

// Call returns the most recent call joined for the guild.
func (j *Joiner) Call(guildID string) *Call {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.calls[guildID]
}

type Call struct {
	*player.Player
	closed atomic.Bool
}

func (c *Call) Close() error {
	c.Player.Close()
	c.closed.Store(true)
	return nil
}

func (c *Call) Closed() bool { return c.closed.Load() }

// Output plays forever until stopped, or fails every track when Err is set.
type Output struct {
	Err error
}

func (o Output) Play(music.Track) (player.Playback, error) {
	if o.Err != nil {
		return nil, o.Err
	}
	return &playback{done: make(chan error, 1)}, nil
}

type playback struct {
	once sync.Once
	done chan error
}

func (p *playback) Done() <-chan error { return p.done }
func (p *playback) SetPaused(bool)     {}
func (p *playback) Stop()              { p.once.Do(func() { p.done <- io.EOF }) }

// Env wires a command.Context to fakes.
type Env struct {
	API         *API
	VoiceStates *VoiceStates
	Resolver    *Resolver
	Joiner      *Joiner
	Voice       *voice.Manager
}

func NewEnv() *Env {
	j := &Joiner{}
	return &Env{
		API:         &API{},
		VoiceStates: NewVoiceStates(),
		Resolver:    &Resolver{},
		Joiner:      j,
		Voice:       voice.NewManager(j, zerolog.Nop()),
	}
}

// Context builds a fresh command context for an interaction from userID in guildID.
// An empty guildID simulates a DM.
func (e *Env) Context(guildID, userID string) *command.Context {
	raw := &discordgo.Interaction{
		ID:      "interaction-" + userID,
		AppID:   "app",
		Token:   "token",
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: guildID,
	}
	if guildID != "" {
		raw.Member = &discordgo.Member{User: &discordgo.User{ID: userID, Username: userID}}
	} else {
		raw.User = &discordgo.User{ID: userID, Username: userID}
	}
	return &command.Context{
		Interaction: command.NewInteraction(raw),
		Responder:   command.NewResponder(e.API, raw),
		Voice:       e.Voice,
		VoiceStates: e.VoiceStates,
		Tracks:      e.Resolver,
	}
}

// ErrUpstream is a canned upstream failure.
var ErrUpstream = errors.New("upstream unavailable")
