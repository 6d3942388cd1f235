// Package core holds commands that need nothing but the interaction itself.
package core

import (
	"context"

	"github.com/keshon/basement/internal/command"
)

func Ping(ctx context.Context, cc *command.Context) error {
	return cc.Responder.Reply(ctx, command.Reply{Content: "Pong!"})
}
