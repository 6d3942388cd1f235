package player

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/keshon/basement/internal/music"
	"github.com/rs/zerolog"
)

var (
	ErrNothingPlaying = errors.New("nothing is currently playing")
	ErrClosed         = errors.New("player is closed")
	ErrStartFailed    = errors.New("failed to start playback")
)

// Output starts audio for a track. The returned Playback reports completion
// exactly once on Done.
type Output interface {
	Play(track music.Track) (Playback, error)
}

type Playback interface {
	Done() <-chan error
	SetPaused(paused bool)
	Stop()
}

// Player is the track queue of one voice call. The paused flag belongs to the
// queue, so a track started while paused starts paused.
type Player struct {
	mu       sync.Mutex
	out      Output
	log      zerolog.Logger
	queue    []music.Track
	current  *music.Track
	playback Playback
	paused   bool
	closed   bool
	gen      uint64
}

func New(out Output, log zerolog.Logger) *Player {
	return &Player{
		out: out,
		log: log.With().Str("component", "player").Logger(),
	}
}

// Enqueue starts the track when the player is idle and appends it otherwise.
// It returns the track's 1-based position, where 1 means now playing. A track
// that cannot be started is not kept and fails with ErrStartFailed.
func (p *Player) Enqueue(track music.Track) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrClosed
	}

	if p.current == nil {
		if err := p.startLocked(track); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrStartFailed, err)
		}
		return p.lenLocked(), nil
	}

	p.queue = append(p.queue, track)
	p.log.Debug().Str("title", track.Title).Int("queue_len", len(p.queue)).Msg("track enqueued")
	return p.lenLocked(), nil
}

// Pause is a no-op when already paused.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return ErrNothingPlaying
	}
	if !p.paused {
		p.paused = true
		p.playback.SetPaused(true)
	}
	return nil
}

// Resume is a no-op when not paused.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return ErrNothingPlaying
	}
	if p.paused {
		p.paused = false
		p.playback.SetPaused(false)
	}
	return nil
}

// Skip stops the current track and starts the next one, if any.
func (p *Player) Skip() (music.Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return music.Track{}, ErrNothingPlaying
	}
	skipped := *p.current
	p.stopLocked()
	p.startNextLocked()
	return skipped, nil
}

// Close stops playback and drops the queue. Further enqueues fail with ErrClosed.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if p.current != nil {
		p.stopLocked()
	}
	p.queue = nil
	p.paused = false
}

// Len counts pending tracks plus the one playing.
func (p *Player) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lenLocked()
}

func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *Player) Current() (music.Track, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return music.Track{}, false
	}
	return *p.current, true
}

func (p *Player) lenLocked() int {
	n := len(p.queue)
	if p.current != nil {
		n++
	}
	return n
}

// stopLocked stops the current playback; bumping gen makes its watcher exit
// without advancing the queue.
func (p *Player) stopLocked() {
	p.gen++
	if p.playback != nil {
		p.playback.Stop()
	}
	p.current = nil
	p.playback = nil
}

// startNextLocked plays the first queued track that starts, dropping the ones
// that fail.
func (p *Player) startNextLocked() {
	for len(p.queue) > 0 {
		track := p.queue[0]
		p.queue = p.queue[1:]

		if err := p.startLocked(track); err != nil {
			p.log.Warn().Err(err).Str("title", track.Title).Msg("skipping track, playback failed to start")
			continue
		}
		return
	}

	p.current = nil
	p.playback = nil
	p.paused = false
}

func (p *Player) startLocked(track music.Track) error {
	pb, err := p.out.Play(track)
	if err != nil {
		return err
	}
	if p.paused {
		pb.SetPaused(true)
	}

	p.gen++
	p.current = &track
	p.playback = pb
	p.log.Info().Str("title", track.Title).Str("url", track.URL).Msg("now playing")

	go p.watch(p.gen, pb)
	return nil
}

func (p *Player) watch(gen uint64, pb Playback) {
	err := <-pb.Done()

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen || p.closed {
		return
	}
	if err != nil && !errors.Is(err, io.EOF) {
		p.log.Warn().Err(err).Msg("playback finished with error")
	}
	p.current = nil
	p.playback = nil
	p.startNextLocked()
}
