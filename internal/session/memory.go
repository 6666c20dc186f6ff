package session

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu      sync.RWMutex
	periods map[int64]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{periods: make(map[int64]int)}
}

func (s *MemoryStore) Period(_ context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if days, ok := s.periods[userID]; ok {
		return days, nil
	}
	return DefaultPeriod, nil
}

func (s *MemoryStore) SetPeriod(_ context.Context, userID int64, days int) error {
	if !ValidPeriod(days) {
		return ErrInvalidPeriod
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.periods[userID] = days
	return nil
}
