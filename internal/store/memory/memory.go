// Package memory provides an in-memory ledger store for development and
// tests.
package memory

import (
	"context"
	"sync"

	"rentbot/internal/core"
	"rentbot/internal/ledger"
)

type Store struct {
	mu     sync.Mutex
	months map[core.MonthKey]core.MonthLedger
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{months: make(map[core.MonthKey]core.MonthLedger)}
}

func (s *Store) GetMonth(_ context.Context, key core.MonthKey) (core.MonthLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.months[key]
	if !ok {
		return core.MonthLedger{}, core.ErrMonthNotFound
	}
	return l.Clone(), nil
}

func (s *Store) PutMonth(_ context.Context, l core.MonthLedger) error {
	if err := l.Month.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.months[l.Month] = l.Clone()
	return nil
}

func (s *Store) LatestMonthBefore(_ context.Context, key core.MonthKey) (core.MonthLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		found bool
		best  core.MonthKey
	)
	for k := range s.months {
		if !k.Before(key) {
			continue
		}
		if !found || best.Before(k) {
			best = k
			found = true
		}
	}
	if !found {
		return core.MonthLedger{}, core.ErrMonthNotFound
	}
	return s.months[best].Clone(), nil
}
