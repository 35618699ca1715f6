package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fund-momentum-lab/internal/domain"
	"fund-momentum-lab/internal/storage"
)

// SignalRecordStore is an in-memory implementation of
// storage.SignalRecordStore.
type SignalRecordStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SignalRecord // keyed by (date, ticker)
}

// NewSignalRecordStore creates a new in-memory signal record store.
func NewSignalRecordStore() *SignalRecordStore {
	return &SignalRecordStore{
		data: make(map[string]*domain.SignalRecord),
	}
}

var _ storage.SignalRecordStore = (*SignalRecordStore)(nil)

func recordKey(r *domain.SignalRecord) string {
	return fmt.Sprintf("%d|%s", r.Date.Unix(), r.Ticker)
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *SignalRecordStore) InsertBulk(_ context.Context, records []*domain.SignalRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.Ticker == "" {
			return storage.ErrInvalidInput
		}
		key := recordKey(r)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range records {
		recCopy := *r
		s.data[recordKey(r)] = &recCopy
	}
	return nil
}

// GetAll retrieves every record, ordered by (date, ticker) ASC.
func (s *SignalRecordStore) GetAll(_ context.Context) ([]*domain.SignalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SignalRecord, 0, len(s.data))
	for _, r := range s.data {
		recCopy := *r
		result = append(result, &recCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Ticker < result[j].Ticker
	})
	return result, nil
}

// GetByTicker retrieves all records for a ticker, ordered by date ASC.
func (s *SignalRecordStore) GetByTicker(_ context.Context, ticker string) ([]*domain.SignalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SignalRecord
	for _, r := range s.data {
		if r.Ticker == ticker {
			recCopy := *r
			result = append(result, &recCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}
