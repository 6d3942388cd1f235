package command

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// InteractionAPI is the slice of the Discord HTTP API a responder needs.
type InteractionAPI interface {
	// CreateResponse sends the first response; valid once per interaction.
	CreateResponse(ctx context.Context, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error
	// EditResponse edits the original (deferred) response.
	EditResponse(ctx context.Context, i *discordgo.Interaction, edit *discordgo.WebhookEdit) error
}

type State int

const (
	StateFresh State = iota
	StateDeferred
	StateReplied
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateDeferred:
		return "deferred"
	case StateReplied:
		return "replied"
	default:
		return "invalid"
	}
}

// Reply is the terminal payload: text, one embed, or both.
type Reply struct {
	Content   string
	Embed     *discordgo.MessageEmbed
	Ephemeral bool // only honoured when replying without a prior Defer
}

func (r Reply) Empty() bool {
	return r.Content == "" && r.Embed == nil
}

// Responder enforces "defer then edit" or "reply once" for one interaction.
// Calls are serialized, so of any number of Reply calls exactly one can succeed.
type Responder struct {
	api         InteractionAPI
	interaction *discordgo.Interaction

	mu    sync.Mutex
	state State
}

func NewResponder(api InteractionAPI, i *discordgo.Interaction) *Responder {
	return &Responder{api: api, interaction: i}
}

func (r *Responder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Defer acknowledges the interaction so the reply may arrive later.
func (r *Responder) Defer(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateDeferred:
		return ErrAlreadyDeferred
	case StateReplied:
		return ErrAlreadyReplied
	}

	err := r.api.CreateResponse(ctx, r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		return Upstream("Failed to acknowledge the command.", err)
	}
	r.state = StateDeferred
	return nil
}

// Reply sends the terminal response: a new message when fresh, an edit of the
// placeholder when deferred. A failed send leaves the state unchanged.
func (r *Responder) Reply(ctx context.Context, reply Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateReplied {
		return ErrAlreadyReplied
	}
	if reply.Empty() {
		return ErrEmptyResponse
	}

	var err error
	if r.state == StateDeferred {
		err = r.api.EditResponse(ctx, r.interaction, editFor(reply))
	} else {
		err = r.api.CreateResponse(ctx, r.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: dataFor(reply),
		})
	}
	if err != nil {
		return Upstream("Failed to send the reply.", err)
	}
	r.state = StateReplied
	return nil
}

func dataFor(reply Reply) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{Content: reply.Content}
	if reply.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{reply.Embed}
	}
	if reply.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return data
}

func editFor(reply Reply) *discordgo.WebhookEdit {
	edit := &discordgo.WebhookEdit{}
	if reply.Content != "" {
		content := reply.Content
		edit.Content = &content
	}
	if reply.Embed != nil {
		embeds := []*discordgo.MessageEmbed{reply.Embed}
		edit.Embeds = &embeds
	}
	return edit
}
