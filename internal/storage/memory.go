package storage

import (
	"context"
	"sync"
)

// MemoryKV is an in-process KV store with the same contract as RedisKV.
// Suitable for standalone deployments and tests; nothing survives a
// restart.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string

	// FailReads and FailWrites force errors; tests use them to exercise
	// the degrade-to-default paths of the preference store.
	FailReads  error
	FailWrites error
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Get retrieves the value for key, or ErrNotFound.
func (s *MemoryKV) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailReads != nil {
		return "", s.FailReads
	}
	val, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

// Set stores value under key.
func (s *MemoryKV) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.values[key] = value
	return nil
}
