package router

import (
	"context"
	"sync"
	"time"

	"github.com/keshon/basement/internal/command"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Middleware wraps a handler (logging, rate limiting).
type Middleware func(Handler) Handler

// Apply wraps h so that mws[0] runs first.
func Apply(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// WithLogger tags the context logger with the command name and logs how the
// command went.
func WithLogger() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, cc *command.Context, inv command.Invocation) error {
			log := zerolog.Ctx(ctx).With().Str("command", inv.Name()).Logger()
			ctx = log.WithContext(ctx)

			start := time.Now()
			log.Debug().Msg("command received")

			err := next(ctx, cc, inv)

			log.Info().
				Dur("took", time.Since(start)).
				Bool("ok", err == nil).
				Stringer("responder", cc.Responder.State()).
				Msg("command handled")
			return err
		}
	}
}

// cooldownPrune is the limiter count above which idle limiters are dropped.
const cooldownPrune = 1024

// WithCooldown limits each user to r commands per second with the given burst.
// A non-positive r disables the limit.
func WithCooldown(r rate.Limit, burst int) Middleware {
	if r <= 0 {
		return func(next Handler) Handler { return next }
	}
	c := &cooldown{limit: r, burst: burst, users: make(map[string]*rate.Limiter)}

	return func(next Handler) Handler {
		return func(ctx context.Context, cc *command.Context, inv command.Invocation) error {
			if !c.allow(cc.Interaction.UserID) {
				zerolog.Ctx(ctx).Debug().Msg("user rate limited")
				return command.ErrSlowDown
			}
			return next(ctx, cc, inv)
		}
	}
}

type cooldown struct {
	limit rate.Limit
	burst int

	mu    sync.Mutex
	users map[string]*rate.Limiter
}

func (c *cooldown) allow(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.users[userID]
	if !ok {
		if len(c.users) >= cooldownPrune {
			c.pruneLocked()
		}
		l = rate.NewLimiter(c.limit, c.burst)
		c.users[userID] = l
	}
	return l.Allow()
}

// pruneLocked drops limiters that have fully refilled; they behave like new ones.
func (c *cooldown) pruneLocked() {
	for id, l := range c.users {
		if l.Tokens() >= float64(c.burst) {
			delete(c.users, id)
		}
	}
}
