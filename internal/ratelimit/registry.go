package ratelimit

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"clipflow/internal/config"
	"clipflow/internal/logging"
	"clipflow/internal/services"
)

const (
	defaultPermits  = 10
	defaultInterval = time.Minute
)

// Registry holds the declared permit pools. Pools are declared up front so
// that every caller observes the same limits; redeclaring a pool with
// different parameters is a configuration error rather than a silent win
// for whichever caller got there first.
type Registry struct {
	mu     sync.Mutex
	pools  map[string]*Pool
	logger *slog.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		pools:  make(map[string]*Pool),
		logger: logging.NewComponentLogger(logger, "ratelimit"),
	}
}

// FromConfig builds a registry with every pool from the configuration
// declared.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Registry, error) {
	registry := NewRegistry(logger)
	for name, pool := range cfg.RateLimit.Pools {
		interval := time.Duration(pool.IntervalSeconds) * time.Second
		if _, err := registry.Declare(name, pool.Permits, interval); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Declare registers a pool. Declaring the same name with identical
// parameters returns the existing pool; conflicting parameters fail loudly.
func (r *Registry) Declare(name string, permits int, interval time.Duration) (*Pool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ratelimit", "declare", "pool name must be non-empty", nil)
	}
	if permits <= 0 || interval <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, "ratelimit", "declare",
			fmt.Sprintf("pool %q needs positive permits and interval", name), nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.pools[name]; ok {
		if existing.max == permits && existing.interval == interval {
			return existing, nil
		}
		return nil, services.Wrap(services.ErrConfiguration, "ratelimit", "declare",
			fmt.Sprintf("pool %q already declared with %d permits per %s, refusing %d per %s",
				name, existing.max, existing.interval, permits, interval), nil)
	}

	pool := newPool(name, permits, interval, r.logger)
	r.pools[name] = pool
	r.logger.Debug("pool declared",
		logging.String("pool", name),
		logging.Int("permits", permits),
		logging.Duration("interval", interval))
	return pool, nil
}

// Get returns the named pool, lazily creating one with conservative
// defaults for callers that reference an undeclared API.
func (r *Registry) Get(name string) *Pool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pool, ok := r.pools[name]; ok {
		return pool
	}
	r.logger.Warn("pool not declared, using defaults",
		logging.String("pool", name),
		logging.Int("permits", defaultPermits),
		logging.Duration("interval", defaultInterval))
	pool := newPool(name, defaultPermits, defaultInterval, r.logger)
	r.pools[name] = pool
	return pool
}

// Snapshot returns the status of every pool sorted by name.
func (r *Registry) Snapshot() []Status {
	r.mu.Lock()
	pools := make([]*Pool, 0, len(r.pools))
	for _, pool := range r.pools {
		pools = append(pools, pool)
	}
	r.mu.Unlock()

	statuses := make([]Status, 0, len(pools))
	for _, pool := range pools {
		statuses = append(statuses, pool.Status())
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}
