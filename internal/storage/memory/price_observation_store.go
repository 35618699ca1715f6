package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fund-momentum-lab/internal/domain"
	"fund-momentum-lab/internal/storage"
)

// PriceObservationStore is an in-memory implementation of
// storage.PriceObservationStore.
type PriceObservationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceObservation // keyed by (ticker, date)
}

// NewPriceObservationStore creates a new in-memory price observation store.
func NewPriceObservationStore() *PriceObservationStore {
	return &PriceObservationStore{
		data: make(map[string]*domain.PriceObservation),
	}
}

var _ storage.PriceObservationStore = (*PriceObservationStore)(nil)

// obsKey generates a unique key for an observation.
func obsKey(o *domain.PriceObservation) string {
	return fmt.Sprintf("%s|%d", o.Ticker, o.Date.Unix())
}

// InsertBulk adds multiple observations. Fails entire batch on duplicate.
func (s *PriceObservationStore) InsertBulk(_ context.Context, obs []*domain.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(obs))
	for _, o := range obs {
		if o == nil || o.Ticker == "" {
			return storage.ErrInvalidInput
		}
		key := obsKey(o)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, o := range obs {
		obsCopy := *o
		s.data[obsKey(o)] = &obsCopy
	}
	return nil
}

// GetByTicker retrieves all observations for a ticker, ordered by date ASC.
func (s *PriceObservationStore) GetByTicker(_ context.Context, ticker string) ([]*domain.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceObservation
	for _, o := range s.data {
		if o.Ticker == ticker {
			obsCopy := *o
			result = append(result, &obsCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// GetTickers retrieves the distinct tickers present, sorted ascending.
func (s *PriceObservationStore) GetTickers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, o := range s.data {
		seen[o.Ticker] = struct{}{}
	}

	tickers := make([]string, 0, len(seen))
	for t := range seen {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers, nil
}
