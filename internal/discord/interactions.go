package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// interactionAPI sends interaction responses through the REST API.
type interactionAPI struct {
	dg *discordgo.Session
}

func (a interactionAPI) CreateResponse(ctx context.Context, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return a.dg.InteractionRespond(i, resp, discordgo.WithContext(ctx))
}

func (a interactionAPI) EditResponse(ctx context.Context, i *discordgo.Interaction, edit *discordgo.WebhookEdit) error {
	_, err := a.dg.InteractionResponseEdit(i, edit, discordgo.WithContext(ctx))
	return err
}
