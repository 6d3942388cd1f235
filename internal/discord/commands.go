package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// commandAPI is the part of the REST API used to sync the command schema.
type commandAPI interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandCreate(appID, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
}

// syncCommands makes the registered commands for guildID match defs: obsolete
// commands are deleted, new or changed ones are created. An empty guildID
// means application-wide commands. Every write waits on lim.
func syncCommands(ctx context.Context, api commandAPI, lim *rate.Limiter, log zerolog.Logger, appID, guildID string, defs []*discordgo.ApplicationCommand) error {
	log = log.With().Str("guild", guildID).Logger()

	remote, err := api.ApplicationCommands(appID, guildID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to list commands: %w", err)
	}

	upsert, obsolete := diffCommands(remote, defs)
	if len(upsert) == 0 && len(obsolete) == 0 {
		log.Debug().Int("commands", len(defs)).Msg("slash commands up to date")
		return nil
	}

	for _, rc := range obsolete {
		if err := lim.Wait(ctx); err != nil {
			return err
		}
		if err := api.ApplicationCommandDelete(appID, guildID, rc.ID, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("failed to delete %s: %w", rc.Name, err)
		}
		log.Info().Str("command", rc.Name).Msg("deleted obsolete command")
	}

	for _, def := range upsert {
		if err := lim.Wait(ctx); err != nil {
			return err
		}
		if _, err := api.ApplicationCommandCreate(appID, guildID, def, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("failed to register %s: %w", def.Name, err)
		}
		log.Info().Str("command", def.Name).Msg("registered command")
	}
	return nil
}

// diffCommands returns the local definitions that are missing or changed
// remotely and the remote commands that no longer exist locally.
func diffCommands(remote, local []*discordgo.ApplicationCommand) (upsert, obsolete []*discordgo.ApplicationCommand) {
	remoteByName := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, rc := range remote {
		remoteByName[rc.Name] = rc
	}

	localNames := make(map[string]struct{}, len(local))
	for _, def := range local {
		localNames[def.Name] = struct{}{}
		rc, ok := remoteByName[def.Name]
		if !ok || hashCommand(rc) != hashCommand(def) {
			upsert = append(upsert, def)
		}
	}

	for _, rc := range remote {
		if _, ok := localNames[rc.Name]; !ok {
			obsolete = append(obsolete, rc)
		}
	}
	return upsert, obsolete
}
