package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/spsworld03/sps-bill-brew/internal/slot"
)

var (
	ErrWriteUnavailable = errors.New("memory slot: write unavailable")
	ErrReadUnavailable  = errors.New("memory slot: read unavailable")
)

// Slot keeps values in process memory. The failure switches simulate a
// storage layer that refuses reads or writes (quota exceeded, disabled).
type Slot struct {
	mu         sync.RWMutex
	values     map[string]string
	failWrites bool
	failReads  bool
	writes     int
}

func New() *Slot {
	return &Slot{values: make(map[string]string)}
}

func (s *Slot) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failReads {
		return "", ErrReadUnavailable
	}
	value, ok := s.values[key]
	if !ok {
		return "", slot.ErrNotFound
	}
	return value, nil
}

func (s *Slot) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return ErrWriteUnavailable
	}
	s.values[key] = value
	s.writes++
	return nil
}

func (s *Slot) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return ErrWriteUnavailable
	}
	delete(s.values, key)
	return nil
}

func (s *Slot) FailWrites(fail bool) {
	s.mu.Lock()
	s.failWrites = fail
	s.mu.Unlock()
}

func (s *Slot) FailReads(fail bool) {
	s.mu.Lock()
	s.failReads = fail
	s.mu.Unlock()
}

// Writes reports how many successful Set calls the slot has served.
func (s *Slot) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
