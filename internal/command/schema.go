package command

import "github.com/bwmarrin/discordgo"

const (
	CmdPing  = "ping"
	CmdMusic = "music"

	SubPlay   = "play"
	SubPause  = "pause"
	SubResume = "resume"
	SubSkip   = "skip"
	SubStop   = "stop"

	OptQuery = "query"
)

// Definitions is the command schema registered with Discord at startup. Parse
// accepts exactly what it describes.
func Definitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CmdPing,
			Description: "Pong",
			Type:        discordgo.ChatApplicationCommand,
		},
		{
			Name:        CmdMusic,
			Description: "Play music in VC!",
			Type:        discordgo.ChatApplicationCommand,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubPlay,
					Description: "Play music in VC!",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        OptQuery,
							Description: "Search term or link to find songs/videos",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubPause,
					Description: "Pause the current song playing in VC",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubResume,
					Description: "Resume the current song playing in VC",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubSkip,
					Description: "Skip to the next track",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubStop,
					Description: "Stop playback, clear the queue and leave VC",
				},
			},
		},
	}
}
