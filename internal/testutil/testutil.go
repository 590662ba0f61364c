// Package testutil provides test doubles shared across packages.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chazuruo/reelflix/internal/kv"
)

// ErrInjected is returned by RecordingStore operations set to fail.
var ErrInjected = errors.New("injected failure")

// RecordingStore wraps a kv.Store, counting calls and failing on demand.
type RecordingStore struct {
	kv.Store

	mu         sync.Mutex
	Gets       int
	Sets       int
	Deletes    int
	FailGet    bool
	FailSet    bool
	FailDelete bool
}

// NewRecordingStore wraps an empty in-memory store.
func NewRecordingStore() *RecordingStore {
	return &RecordingStore{Store: kv.NewMemory()}
}

func (s *RecordingStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	s.Gets++
	fail := s.FailGet
	s.mu.Unlock()

	if fail {
		return "", false, ErrInjected
	}
	return s.Store.Get(ctx, key)
}

func (s *RecordingStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.Sets++
	fail := s.FailSet
	s.mu.Unlock()

	if fail {
		return ErrInjected
	}
	return s.Store.Set(ctx, key, value)
}

func (s *RecordingStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	s.Deletes++
	fail := s.FailDelete
	s.mu.Unlock()

	if fail {
		return ErrInjected
	}
	return s.Store.Delete(ctx, key)
}

// Writes returns the number of Set and Delete calls so far.
func (s *RecordingStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.Sets + s.Deletes
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock stopped at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current clock time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}
