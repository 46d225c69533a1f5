package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"clipflow/internal/logging"
)

// Pool is a named permit pool. Grants are replenished automatically after
// interval/permits, spreading capacity evenly across the interval. Callers
// never release permits themselves.
type Pool struct {
	name     string
	permits  chan struct{}
	max      int
	interval time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	granted   uint64
	lastGrant time.Time
}

// Status is a point-in-time view of a pool for reporting.
type Status struct {
	Name      string
	Available int
	Max       int
	Interval  time.Duration
	Granted   uint64
	LastGrant time.Time
}

func newPool(name string, permits int, interval time.Duration, logger *slog.Logger) *Pool {
	pool := &Pool{
		name:     name,
		permits:  make(chan struct{}, permits),
		max:      permits,
		interval: interval,
		logger:   logging.NewComponentLogger(logger, "ratelimit"),
	}
	for i := 0; i < permits; i++ {
		pool.permits <- struct{}{}
	}
	return pool
}

// Acquire blocks until a permit is granted or ctx is done.
func (p *Pool) Acquire(ctx context.Context) error {
	select {
	case <-p.permits:
		p.recordGrant()
		return nil
	default:
	}

	p.logger.Debug("waiting for permit", logging.String("pool", p.name))
	select {
	case <-p.permits:
		p.recordGrant()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire waits up to timeout for a permit and reports whether one was
// granted.
func (p *Pool) TryAcquire(ctx context.Context, timeout time.Duration) bool {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Acquire(waitCtx) == nil
}

// Available returns the number of permits that could be granted immediately.
func (p *Pool) Available() int {
	return len(p.permits)
}

// IsRateLimited reports whether a grant would currently block.
func (p *Pool) IsRateLimited() bool {
	return p.Available() == 0
}

// Status returns a snapshot of the pool's counters.
func (p *Pool) Status() Status {
	p.mu.Lock()
	granted, lastGrant := p.granted, p.lastGrant
	p.mu.Unlock()
	return Status{
		Name:      p.name,
		Available: p.Available(),
		Max:       p.max,
		Interval:  p.interval,
		Granted:   granted,
		LastGrant: lastGrant,
	}
}

func (p *Pool) recordGrant() {
	p.mu.Lock()
	p.granted++
	p.lastGrant = time.Now()
	p.mu.Unlock()

	// Each grant returns its own permit after an even slice of the interval.
	time.AfterFunc(p.replenishDelay(), p.release)
}

func (p *Pool) replenishDelay() time.Duration {
	if p.max <= 0 {
		return p.interval
	}
	return p.interval / time.Duration(p.max)
}

func (p *Pool) release() {
	select {
	case p.permits <- struct{}{}:
	default:
		// Pool already full. Can happen only if a replenish races a
		// freshly constructed pool; dropping keeps the cap exact.
	}
}
