package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/spsworld03/sps-bill-brew/internal/slot"
)

var _ slot.Slot = (*Slot)(nil)

func TestGetMissingKey(t *testing.T) {
	s := New()
	if _, err := s.Get(context.Background(), "billRecords"); !errors.Is(err, slot.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetReplacesValue(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Set(ctx, "k", "one"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "k", "two"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "two" {
		t.Fatalf("expected two, got %q", got)
	}
	if s.Writes() != 2 {
		t.Fatalf("expected 2 writes, got %d", s.Writes())
	}
}

func TestFailureSwitches(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Set(ctx, "k", "v")

	s.FailWrites(true)
	if err := s.Set(ctx, "k", "w"); !errors.Is(err, ErrWriteUnavailable) {
		t.Fatalf("expected write failure, got %v", err)
	}
	if err := s.Remove(ctx, "k"); !errors.Is(err, ErrWriteUnavailable) {
		t.Fatalf("expected remove failure, got %v", err)
	}

	s.FailReads(true)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrReadUnavailable) {
		t.Fatalf("expected read failure, got %v", err)
	}

	s.FailReads(false)
	s.FailWrites(false)
	got, err := s.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("expected original value after failures, got %q, %v", got, err)
	}
}

func TestRemoveAbsentKey(t *testing.T) {
	if err := New().Remove(context.Background(), "nope"); err != nil {
		t.Fatalf("remove absent key: %v", err)
	}
}
