package verification

import (
	"context"
	"sync"
	"time"
)

// CodeStore keeps the latest code sent to each phone. Put replaces any
// earlier code for the same phone.
type CodeStore interface {
	Put(ctx context.Context, phone string, code string, ttl time.Duration) error
	Get(ctx context.Context, phone string) (string, bool, error)
}

// MemoryCodeStore never expires codes; ttl is ignored.
type MemoryCodeStore struct {
	mu    sync.RWMutex
	codes map[string]string
}

func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{codes: make(map[string]string)}
}

func (s *MemoryCodeStore) Put(_ context.Context, phone string, code string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[phone] = code
	return nil
}

func (s *MemoryCodeStore) Get(_ context.Context, phone string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.codes[phone]
	return code, ok, nil
}
