// Package voice keeps at most one voice call per guild and hands out the call
// only under that guild's lock.
package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/keshon/basement/internal/music"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNoSession     = errors.New("no voice session for guild")
	ErrSessionClosed = errors.New("voice session closed")
)

// Call is an active voice connection with its track queue.
type Call interface {
	Enqueue(track music.Track) (int, error)
	Pause() error
	Resume() error
	Skip() (music.Track, error)
	Len() int
	Paused() bool
	Current() (music.Track, bool)
	// Close stops playback, clears the queue and leaves the channel.
	Close() error
}

// Joiner asks the platform to connect to a voice channel.
type Joiner interface {
	Join(ctx context.Context, guildID, channelID string) (Call, error)
}

type Manager struct {
	joiner Joiner
	log    zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	joins    singleflight.Group
}

func NewManager(joiner Joiner, log zerolog.Logger) *Manager {
	return &Manager{
		joiner:   joiner,
		log:      log.With().Str("component", "voice").Logger(),
		sessions: make(map[string]*Session),
	}
}

// GetOrJoin returns the guild's session, joining channelID if there is none.
// Concurrent callers for one guild share a single join attempt; the first
// caller's ctx governs it.
func (m *Manager) GetOrJoin(ctx context.Context, guildID, channelID string) (*Session, error) {
	if s, ok := m.Get(guildID); ok {
		return s, nil
	}

	v, err, shared := m.joins.Do(guildID, func() (interface{}, error) {
		if s, ok := m.Get(guildID); ok {
			return s, nil
		}

		call, err := m.joiner.Join(ctx, guildID, channelID)
		if err != nil {
			return nil, err
		}

		s := newSession(guildID, channelID, call)
		m.mu.Lock()
		m.sessions[guildID] = s
		m.mu.Unlock()

		m.log.Info().Str("guild", guildID).Str("channel", channelID).Msg("joined voice channel")
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}
	if shared {
		m.log.Debug().Str("guild", guildID).Msg("shared in-flight voice join")
	}
	return v.(*Session), nil
}

// Get never creates a session.
func (m *Manager) Get(guildID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[guildID]
	return s, ok
}

// Remove tears the guild's session down. The next GetOrJoin starts from scratch.
func (m *Manager) Remove(ctx context.Context, guildID string) error {
	m.mu.Lock()
	s, ok := m.sessions[guildID]
	delete(m.sessions, guildID)
	m.mu.Unlock()

	if !ok {
		return ErrNoSession
	}

	if err := s.close(ctx); err != nil {
		return fmt.Errorf("failed to close voice session: %w", err)
	}
	m.log.Info().Str("guild", guildID).Msg("voice session removed")
	return nil
}

// CloseAll removes every session, returning the first error seen.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.RLock()
	guilds := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		guilds = append(guilds, id)
	}
	m.mu.RUnlock()

	var first error
	for _, id := range guilds {
		if err := m.Remove(ctx, id); err != nil && !errors.Is(err, ErrNoSession) && first == nil {
			first = err
		}
	}
	return first
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
