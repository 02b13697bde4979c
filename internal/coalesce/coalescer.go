// Package coalesce tracks at most one in-flight render job per request
// key. A new registration under a key supersedes the outstanding job,
// which resolves with an empty outcome rather than an error, and a
// completion signal is delivered only while the generation it was issued
// with is still the key's current one. Rapid re-requests under one key
// therefore never consume extra engine capacity and a stale result can
// never overwrite a newer one.
package coalesce

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"texd/internal/domain"
	"texd/internal/infra"
)

// Outcome is the terminal result of a render job. State is always a
// terminal domain.JobState; Data is set only for Completed, Err only for
// Failed and Cancelled. Superseded carries neither: it means "ignore,
// a newer request under this key is in flight".
type Outcome struct {
	State domain.JobState
	Data  []byte
	Err   error
}

// Ticket is the pending result handle returned at registration time.
// It resolves exactly once.
type Ticket struct {
	key string
	gen uint64
	ch  chan Outcome
}

// Key returns the request key the ticket was registered under.
func (t *Ticket) Key() string { return t.key }

// Generation returns the tag completion signals must carry to be
// attributed to this ticket.
func (t *Ticket) Generation() uint64 { return t.gen }

// Wait blocks until the job resolves or ctx ends. A ctx error means the
// caller abandoned the wait; the job itself is untouched and the owner
// of the scope is expected to cancel its key on the way out.
func (t *Ticket) Wait(ctx context.Context) (Outcome, error) {
	select {
	case out := <-t.ch:
		return out, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

type slot struct {
	gen    uint64
	ticket *Ticket
}

// Coalescer owns the key → in-flight job mapping. All mutations happen
// under the mutex; tickets are resolved through a buffered channel so no
// delivery ever blocks the lock.
type Coalescer struct {
	mu     sync.Mutex
	gen    uint64
	slots  map[string]*slot
	logger *infra.Logger
}

// New constructs a Coalescer. A nil logger discards debug output.
func New(logger *infra.Logger) *Coalescer {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Coalescer{
		slots:  make(map[string]*slot),
		logger: logger,
	}
}

// Register records a new pending job for key and returns its ticket.
// An outstanding job under the same key resolves Superseded first; its
// caller never sees the new job's result.
func (c *Coalescer) Register(key string) *Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.slots[key]; ok {
		s.ticket.ch <- Outcome{State: domain.JobStateSuperseded}
		c.logger.Debug().
			Str("key", key).
			Uint64("generation", s.gen).
			Msg("coalesce: superseded pending job")
	}

	// Generations are unique across keys and time, so a completion
	// signal held over from a freed slot can never match a later one.
	c.gen++
	t := &Ticket{key: key, gen: c.gen, ch: make(chan Outcome, 1)}
	c.slots[key] = &slot{gen: c.gen, ticket: t}
	return t
}

// Resolve delivers a completion signal. It is accepted only while gen is
// still the current generation for key; anything else is a signal for a
// superseded or cancelled job and is discarded. Returns whether the
// outcome was delivered.
func (c *Coalescer) Resolve(key string, gen uint64, out Outcome) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key]
	if !ok || s.gen != gen {
		c.logger.Debug().
			Str("key", key).
			Uint64("generation", gen).
			Msg("coalesce: discarded stale completion")
		return false
	}
	delete(c.slots, key)
	s.ticket.ch <- out
	return true
}

// Cancel resolves the pending job for key as Cancelled and frees the
// slot. Calling it with no outstanding job, or after the job already
// resolved, is a no-op. Returns whether a job was cancelled.
func (c *Coalescer) Cancel(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key]
	if !ok {
		return false
	}
	delete(c.slots, key)
	s.ticket.ch <- Outcome{State: domain.JobStateCancelled, Err: domain.ErrCancelled}
	return true
}

// CancelGeneration cancels the pending job for key only if gen is still
// its current generation. Used by scoped cleanup so a caller tearing
// down its own request cannot cancel a newer job that has since taken
// over the key.
func (c *Coalescer) CancelGeneration(key string, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key]
	if !ok || s.gen != gen {
		return false
	}
	delete(c.slots, key)
	s.ticket.ch <- Outcome{State: domain.JobStateCancelled, Err: domain.ErrCancelled}
	return true
}

// Pending reports whether key currently has an unresolved job.
func (c *Coalescer) Pending(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.slots[key]
	return ok
}
