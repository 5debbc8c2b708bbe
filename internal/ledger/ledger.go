// Package ledger holds the ordered, append-only list of issued bills and
// mirrors it to a durable slot.
//
// Appends never fail from the caller's point of view: the in-memory list is
// authoritative for the session and a storage failure only degrades
// durability. Every append ends with a synchronous billsUpdated broadcast to
// the registered listeners, in registration order.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spsworld03/sps-bill-brew/internal/domain"
	"github.com/spsworld03/sps-bill-brew/internal/slot"
)

const (
	DefaultKey        = "billRecords"
	EventBillsUpdated = "billsUpdated"
)

// Event is broadcast after every change. Appended carries a copy of the new
// record for appends and is nil for Replace and Reset.
type Event struct {
	Name     string
	Appended *domain.BillRecord
}

type Listener func(Event)

type subscription struct {
	id       int
	listener Listener
}

type Store struct {
	mu      sync.Mutex
	records []domain.BillRecord
	slot    slot.Slot
	key     string
	logger  *zap.Logger

	listenersMu sync.Mutex
	listeners   []subscription
	nextID      int
}

func New(s slot.Slot, key string, logger *zap.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		records: make([]domain.BillRecord, 0, 32),
		slot:    s,
		key:     key,
		logger:  logger,
	}
}

// Append adds record to the end of the ledger, then writes the whole ledger
// to the slot. A failed write is logged and the record stays in memory.
func (s *Store) Append(ctx context.Context, record domain.BillRecord) {
	s.mu.Lock()
	s.records = append(s.records, record.Clone())
	count := len(s.records)
	err := s.persist(ctx)
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("ledger persist failed; keeping bill in memory only",
			zap.String("key", s.key),
			zap.String("bill_no", record.BillNumber),
			zap.Int("records", count),
			zap.Error(err),
		)
	}

	appended := record.Clone()
	s.notify(Event{Name: EventBillsUpdated, Appended: &appended})
}

// Load replaces the in-memory ledger with the slot contents. An absent,
// unreadable or unparseable slot leaves memory as it is. Unlike Replace it
// does not notify listeners.
func (s *Store) Load(ctx context.Context) {
	if s.slot == nil {
		return
	}

	raw, err := s.slot.Get(ctx, s.key)
	if errors.Is(err, slot.ErrNotFound) {
		s.logger.Debug("ledger slot empty", zap.String("key", s.key))
		return
	}
	if err != nil {
		s.logger.Warn("ledger load failed", zap.String("key", s.key), zap.Error(err))
		return
	}

	records, err := Decode([]byte(raw))
	if err != nil {
		s.logger.Warn("ledger slot unparseable; ignoring stored data", zap.String("key", s.key), zap.Error(err))
		return
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	s.logger.Debug("ledger loaded", zap.String("key", s.key), zap.Int("records", len(records)))
}

// Snapshot returns an independent copy of the ledger in insertion order.
func (s *Store) Snapshot() []domain.BillRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.BillRecord, len(s.records))
	for i, record := range s.records {
		out[i] = record.Clone()
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Replace swaps the whole in-memory ledger without touching the slot.
func (s *Store) Replace(records []domain.BillRecord) {
	next := make([]domain.BillRecord, len(records))
	for i, record := range records {
		next[i] = record.Clone()
	}

	s.mu.Lock()
	s.records = next
	s.mu.Unlock()

	s.notify(Event{Name: EventBillsUpdated})
}

// Reset clears the ledger in memory and removes the durable slot.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	s.records = make([]domain.BillRecord, 0, 32)
	var err error
	if s.slot != nil {
		err = s.slot.Remove(ctx, s.key)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("ledger slot remove failed", zap.String("key", s.key), zap.Error(err))
	}

	s.notify(Event{Name: EventBillsUpdated})
}

// Subscribe registers listener for ledger change events. The returned
// function removes it again and may be called more than once.
func (s *Store) Subscribe(listener Listener) func() {
	s.listenersMu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, listener: listener})
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			defer s.listenersMu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context) error {
	if s.slot == nil {
		return errors.New("no durable slot configured")
	}
	payload, err := Encode(s.records)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := s.slot.Set(ctx, s.key, string(payload)); err != nil {
		return fmt.Errorf("write slot %s: %w", s.key, err)
	}
	return nil
}

func (s *Store) notify(event Event) {
	s.listenersMu.Lock()
	subs := make([]subscription, len(s.listeners))
	copy(subs, s.listeners)
	s.listenersMu.Unlock()

	for _, sub := range subs {
		sub.listener(event)
	}
}
