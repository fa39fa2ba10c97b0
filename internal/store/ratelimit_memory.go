package store

import (
	"context"
	"sync"
	"time"
)

// sweepInterval is how many Record calls pass between sweeps of idle visitor keys.
const sweepInterval = 1024

// RateLimitMemoryStore is an in-memory implementation of ratelimit.Store.
// Keys whose newest hit has left the window are dropped periodically, so
// one-off visitors do not accumulate.
type RateLimitMemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	windows  map[string]time.Duration
	calls    int
	now      func() time.Time
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
		windows:  make(map[string]time.Duration),
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (s *RateLimitMemoryStore) WithClock(now func() time.Time) *RateLimitMemoryStore {
	s.now = now

	return s
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	s.calls++
	if s.calls%sweepInterval == 0 {
		s.sweep(now)
	}

	valid := prune(s.requests[key], now.Add(-window))
	valid = append(valid, now)

	s.requests[key] = valid
	s.windows[key] = window

	return int64(len(valid)), nil
}

// Keys returns the number of keys currently tracked.
func (s *RateLimitMemoryStore) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

// Sweep drops every key with no hits left inside its window.
func (s *RateLimitMemoryStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep(s.now())
}

func (s *RateLimitMemoryStore) sweep(now time.Time) {
	for key, timestamps := range s.requests {
		if len(prune(timestamps, now.Add(-s.windows[key]))) == 0 {
			delete(s.requests, key)
			delete(s.windows, key)
		}
	}
}

func prune(timestamps []time.Time, cutoff time.Time) []time.Time {
	valid := make([]time.Time, 0, len(timestamps)+1)

	for _, ts := range timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	return valid
}
