package discord

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// commandShape is the part of a command definition that the user sees. Ids,
// versions and other server-assigned fields are left out so a local
// definition and its registered copy hash the same.
type commandShape struct {
	Name        string                           `json:"name"`
	Description string                           `json:"description"`
	Type        discordgo.ApplicationCommandType `json:"type"`
	Options     []optionShape                    `json:"options,omitempty"`
}

type optionShape struct {
	Name        string                                 `json:"name"`
	Description string                                 `json:"description"`
	Type        discordgo.ApplicationCommandOptionType `json:"type"`
	Required    bool                                   `json:"required"`
	Choices     []choiceShape                          `json:"choices,omitempty"`
	Options     []optionShape                          `json:"options,omitempty"`
}

type choiceShape struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// hashCommand creates a deterministic hash for an ApplicationCommand.
func hashCommand(cmd *discordgo.ApplicationCommand) string {
	typ := cmd.Type
	if typ == 0 {
		typ = discordgo.ChatApplicationCommand
	}
	data, _ := json.Marshal(commandShape{
		Name:        cmd.Name,
		Description: cmd.Description,
		Type:        typ,
		Options:     shapeOptions(cmd.Options),
	})
	return fmt.Sprintf("%x", sha1.Sum(data))
}

func shapeOptions(opts []*discordgo.ApplicationCommandOption) []optionShape {
	if len(opts) == 0 {
		return nil
	}
	out := make([]optionShape, 0, len(opts))
	for _, o := range opts {
		shape := optionShape{
			Name:        o.Name,
			Description: o.Description,
			Type:        o.Type,
			Required:    o.Required,
			Options:     shapeOptions(o.Options),
		}
		for _, c := range o.Choices {
			shape.Choices = append(shape.Choices, choiceShape{Name: c.Name, Value: c.Value})
		}
		out = append(out, shape)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
