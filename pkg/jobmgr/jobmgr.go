// Package jobmgr runs short-lived jobs in their own goroutines, tracks them while
// they run, and drains them on shutdown.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(log, 30*time.Second)
//
//	err := jm.Go("interaction:123", func(ctx context.Context) error {
//	    // ctx expires after the job timeout
//	    return nil
//	})
//
//	// later, stop accepting and wait for running jobs
//	_ = jm.Shutdown(ctx)
package jobmgr

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrClosed is returned by Go once Shutdown has started.
var ErrClosed = errors.New("job manager is shutting down")

// Job is a snapshot of a running job.
type Job struct {
	ID      uint64
	Name    string
	Started time.Time

	cancel context.CancelFunc
}

// Manager is safe for concurrent use.
type Manager struct {
	log     zerolog.Logger
	timeout time.Duration

	mu     sync.Mutex
	jobs   map[uint64]*Job
	seq    uint64
	closed bool
	wg     sync.WaitGroup
}

// NewManager creates a Manager whose jobs run for at most timeout; zero means
// no limit.
func NewManager(log zerolog.Logger, timeout time.Duration) *Manager {
	return &Manager{
		log:     log.With().Str("component", "jobmgr").Logger(),
		timeout: timeout,
		jobs:    make(map[uint64]*Job),
	}
}

// Go starts fn in a new goroutine. Jobs are detached from the caller's context;
// they end when fn returns, the timeout passes, or Shutdown gives up waiting.
// A panic in fn is logged and does not take the process down.
func (m *Manager) Go(name string, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.seq++
	ctx, cancel := m.jobContext()
	job := &Job{ID: m.seq, Name: name, Started: time.Now(), cancel: cancel}
	m.jobs[job.ID] = job
	m.wg.Add(1)
	m.mu.Unlock()

	log := m.log.With().Str("job", name).Uint64("job_id", job.ID).Logger()
	ctx = log.WithContext(ctx)

	go func() {
		defer m.wg.Done()
		defer m.remove(job.ID)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("job panicked")
			}
		}()

		log.Debug().Msg("job running")
		if err := fn(ctx); err != nil {
			log.Debug().Err(err).Dur("took", time.Since(job.Started)).Msg("job failed")
			return
		}
		log.Debug().Dur("took", time.Since(job.Started)).Msg("job done")
	}()
	return nil
}

func (m *Manager) jobContext() (context.Context, context.CancelFunc) {
	if m.timeout > 0 {
		return context.WithTimeout(context.Background(), m.timeout)
	}
	return context.WithCancel(context.Background())
}

func (m *Manager) remove(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
}

// List returns the running jobs, oldest first.
func (m *Manager) List() []Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		out = append(out, Job{ID: job.ID, Name: job.Name, Started: job.Started})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Shutdown stops accepting jobs and waits for running ones. If ctx ends first,
// the remaining jobs are cancelled and ctx's error is returned.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
	}

	left := m.List()
	names := make([]string, len(left))
	for i, job := range left {
		names[i] = job.Name
	}

	m.mu.Lock()
	for _, job := range m.jobs {
		job.cancel()
	}
	m.mu.Unlock()

	m.log.Warn().
		Int("jobs", len(left)).
		Strs("names", names).
		Msg("shutdown deadline passed, cancelled remaining jobs")
	return ctx.Err()
}
