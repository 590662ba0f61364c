package kv

import (
	"context"
	"strings"
	"sync"

	"github.com/huandu/skiplist"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a process-local Store. Its contents are lost on Close.
type MemoryStore struct {
	sync.RWMutex
	db *skiplist.SkipList
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	var comparator skiplist.GreaterThanFunc = func(lhs, rhs interface{}) bool {
		return strings.Compare(lhs.(string), rhs.(string)) == 1
	}

	return &MemoryStore{db: skiplist.New(comparator)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.RLock()
	defer s.RUnlock()

	value, found := s.db.GetValue(key)
	if !found {
		return "", false, nil
	}
	return value.(string), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.Lock()
	defer s.Unlock()

	_ = s.db.Set(key, value)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.Lock()
	defer s.Unlock()

	_ = s.db.Remove(key)
	return nil
}

// Len returns the number of keys held.
func (s *MemoryStore) Len() int {
	s.RLock()
	defer s.RUnlock()

	return s.db.Len()
}

func (s *MemoryStore) Close() error {
	s.Lock()
	defer s.Unlock()

	s.db.Init()
	return nil
}
