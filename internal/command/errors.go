package command

import "errors"

// Kind classifies a command failure by who should hear about it.
type Kind int

const (
	// KindPrecondition failures are shown to the user verbatim.
	KindPrecondition Kind = iota + 1
	// KindProtocol failures are programming errors in the reply sequence.
	KindProtocol
	// KindUpstream failures come from Discord or a track source.
	KindUpstream
	// KindUnknownCommand means the payload does not match the registered schema.
	KindUnknownCommand
)

func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindProtocol:
		return "protocol"
	case KindUpstream:
		return "upstream"
	case KindUnknownCommand:
		return "unknown_command"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Msg     string
	Command string // set for KindUnknownCommand
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

var (
	ErrNotInGuild        = &Error{Kind: KindPrecondition, Msg: "You must be in a guild to execute this command!"}
	ErrNotInVoiceChannel = &Error{Kind: KindPrecondition, Msg: "You must be in a voice channel to execute this command!"}
	ErrNoActiveSession   = &Error{Kind: KindPrecondition, Msg: "I'm not in a voice channel in this guild."}
	ErrNothingPlaying    = &Error{Kind: KindPrecondition, Msg: "Nothing is playing right now."}
	ErrInvalidOptions    = &Error{Kind: KindPrecondition, Msg: "Invalid command options."}
	ErrSlowDown          = &Error{Kind: KindPrecondition, Msg: "You're sending commands too fast, slow down."}

	ErrAlreadyReplied  = &Error{Kind: KindProtocol, Msg: "interaction already replied"}
	ErrAlreadyDeferred = &Error{Kind: KindProtocol, Msg: "interaction already deferred"}
	ErrEmptyResponse   = &Error{Kind: KindProtocol, Msg: "response has no content or embed"}
)

// Upstream wraps a platform or source failure. msg is what the user sees; err is
// only logged.
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Msg: msg, Err: err}
}

func UnknownCommand(name string) *Error {
	return &Error{Kind: KindUnknownCommand, Msg: "unknown command: " + name, Command: name}
}

// KindOf reports the kind of err, or 0 when it is not a command error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// UserMessage renders err for the failure embed without leaking internals.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "Something went wrong while running this command."
	}
	switch e.Kind {
	case KindPrecondition, KindUpstream:
		return e.Msg
	case KindUnknownCommand:
		return "This command is not available."
	default:
		return "Something went wrong while responding."
	}
}
