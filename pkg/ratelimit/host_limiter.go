package ratelimit

import (
	"context"
	"sync"
	"time"
)

// HostLimiter enforces a minimum interval between requests to the same host.
// Hosts are registered lazily on first use, and repeated errors against a
// host trigger a temporary backoff.
type HostLimiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	hosts       map[string]*hostState
}

type hostState struct {
	nextAllowed  time.Time
	backoffUntil time.Time
	requestCount int64
	errorCount   int64
}

// NewHostLimiter creates a limiter that spaces requests to each host by at
// least minInterval.
func NewHostLimiter(minInterval time.Duration) *HostLimiter {
	return &HostLimiter{
		minInterval: minInterval,
		hosts:       make(map[string]*hostState),
	}
}

// Wait blocks until it is safe to make a request to host. The slot is
// reserved before sleeping so concurrent callers queue instead of all
// firing at once.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	l.mu.Lock()
	state, ok := l.hosts[host]
	if !ok {
		state = &hostState{}
		l.hosts[host] = state
	}

	now := time.Now()
	earliest := state.nextAllowed
	if state.backoffUntil.After(earliest) {
		earliest = state.backoffUntil
	}

	var wait time.Duration
	if earliest.After(now) {
		wait = earliest.Sub(now)
	}
	state.nextAllowed = now.Add(wait).Add(l.minInterval)
	state.requestCount++
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RecordError counts a failed request. After three consecutive failures the
// host is backed off, growing with the failure count up to five minutes.
func (l *HostLimiter) RecordError(host string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.hosts[host]
	if !ok {
		return
	}
	state.errorCount++
	if state.errorCount > 3 {
		backoff := time.Duration(state.errorCount) * 30 * time.Second
		if backoff > 5*time.Minute {
			backoff = 5 * time.Minute
		}
		state.backoffUntil = time.Now().Add(backoff)
	}
}

// RecordSuccess resets the consecutive error count for a host.
func (l *HostLimiter) RecordSuccess(host string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if state, ok := l.hosts[host]; ok {
		state.errorCount = 0
	}
}

// HostStats reports per-host request counts for run summaries.
type HostStats struct {
	RequestCount int64     `json:"request_count"`
	ErrorCount   int64     `json:"error_count"`
	InBackoff    bool      `json:"in_backoff"`
	BackoffUntil time.Time `json:"backoff_until,omitempty"`
}

// Stats returns a snapshot of all tracked hosts.
func (l *HostLimiter) Stats() map[string]HostStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	stats := make(map[string]HostStats, len(l.hosts))
	for host, state := range l.hosts {
		stats[host] = HostStats{
			RequestCount: state.requestCount,
			ErrorCount:   state.errorCount,
			InBackoff:    now.Before(state.backoffUntil),
			BackoffUntil: state.backoffUntil,
		}
	}
	return stats
}
