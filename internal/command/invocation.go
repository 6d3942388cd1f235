package command

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Invocation is a parsed command. The set of implementations is closed; the
// router switches over all of them.
type Invocation interface {
	// Name is the user-facing command path, e.g. "music play".
	Name() string
	invocation()
}

type Ping struct{}

type MusicPlay struct {
	Query string
}

type MusicPause struct{}

type MusicResume struct{}

type MusicSkip struct{}

type MusicStop struct{}

func (Ping) Name() string        { return "ping" }
func (MusicPlay) Name() string   { return "music play" }
func (MusicPause) Name() string  { return "music pause" }
func (MusicResume) Name() string { return "music resume" }
func (MusicSkip) Name() string   { return "music skip" }
func (MusicStop) Name() string   { return "music stop" }

func (Ping) invocation()        {}
func (MusicPlay) invocation()   {}
func (MusicPause) invocation()  {}
func (MusicResume) invocation() {}
func (MusicSkip) invocation()   {}
func (MusicStop) invocation()   {}

// Parse turns a slash command payload into an Invocation.
func Parse(data discordgo.ApplicationCommandInteractionData) (Invocation, error) {
	switch data.Name {
	case CmdPing:
		return Ping{}, nil
	case CmdMusic:
		return parseMusic(data.Options)
	default:
		return nil, UnknownCommand(data.Name)
	}
}

func parseMusic(opts []*discordgo.ApplicationCommandInteractionDataOption) (Invocation, error) {
	if len(opts) == 0 || opts[0] == nil || opts[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		return nil, fmt.Errorf("music: missing subcommand: %w", ErrInvalidOptions)
	}
	sub := opts[0]

	switch sub.Name {
	case SubPlay:
		query, err := stringOption(sub.Options, OptQuery)
		if err != nil {
			return nil, err
		}
		return MusicPlay{Query: query}, nil
	case SubPause:
		return MusicPause{}, nil
	case SubResume:
		return MusicResume{}, nil
	case SubSkip:
		return MusicSkip{}, nil
	case SubStop:
		return MusicStop{}, nil
	default:
		return nil, UnknownCommand(CmdMusic + " " + sub.Name)
	}
}

func stringOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) (string, error) {
	for _, opt := range opts {
		if opt == nil || opt.Name != name {
			continue
		}
		v, ok := opt.Value.(string)
		if !ok || strings.TrimSpace(v) == "" {
			return "", fmt.Errorf("option %q must be a non-empty string: %w", name, ErrInvalidOptions)
		}
		return strings.TrimSpace(v), nil
	}
	return "", fmt.Errorf("option %q is required: %w", name, ErrInvalidOptions)
}
