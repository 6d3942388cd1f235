package voice

import "context"

// Session is one guild's call. All access to the call goes through Do.
type Session struct {
	guildID   string
	channelID string
	call      Call

	// lock is a one-slot semaphore so waiting for it can be cancelled.
	lock   chan struct{}
	closed bool
}

func newSession(guildID, channelID string, call Call) *Session {
	return &Session{
		guildID:   guildID,
		channelID: channelID,
		call:      call,
		lock:      make(chan struct{}, 1),
	}
}

func (s *Session) GuildID() string   { return s.guildID }
func (s *Session) ChannelID() string { return s.channelID }

// Do runs fn while holding the guild's call lock. The lock is released when fn
// returns or panics. Waiting is bounded by ctx.
func (s *Session) Do(ctx context.Context, fn func(Call) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	if s.closed {
		return ErrSessionClosed
	}
	return fn(s.call)
}

func (s *Session) close(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.call.Close()
}

func (s *Session) acquire(ctx context.Context) error {
	select {
	case s.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) release() { <-s.lock }
