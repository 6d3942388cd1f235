package command

import "github.com/bwmarrin/discordgo"

// Interaction identifies one inbound command request.
type Interaction struct {
	ID        string
	AppID     string
	Token     string
	GuildID   string
	ChannelID string
	UserID    string
	UserName  string

	Raw *discordgo.Interaction
}

func NewInteraction(i *discordgo.Interaction) Interaction {
	in := Interaction{
		ID:        i.ID,
		AppID:     i.AppID,
		Token:     i.Token,
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Raw:       i,
	}
	switch {
	case i.Member != nil && i.Member.User != nil:
		in.UserID = i.Member.User.ID
		in.UserName = i.Member.User.Username
	case i.User != nil:
		in.UserID = i.User.ID
		in.UserName = i.User.Username
	}
	return in
}
