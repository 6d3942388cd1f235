package command

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const EmbedColor = 0xb01e66

// SuccessEmbed titles an embed after the command that succeeded.
func SuccessEmbed(inv Invocation, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("✅ `/%s` - Success", inv.Name()),
		Description: description,
		Color:       EmbedColor,
	}
}

func ErrorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "⚠️ Error",
		Description: message,
		Color:       EmbedColor,
	}
}
