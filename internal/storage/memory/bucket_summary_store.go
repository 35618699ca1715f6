package memory

import (
	"context"
	"sort"
	"sync"

	"fund-momentum-lab/internal/domain"
	"fund-momentum-lab/internal/storage"
)

// BucketSummaryStore is an in-memory implementation of
// storage.BucketSummaryStore.
type BucketSummaryStore struct {
	mu   sync.RWMutex
	data map[int]*domain.BucketSummary // keyed by bucket
}

// NewBucketSummaryStore creates a new in-memory bucket summary store.
func NewBucketSummaryStore() *BucketSummaryStore {
	return &BucketSummaryStore{
		data: make(map[int]*domain.BucketSummary),
	}
}

var _ storage.BucketSummaryStore = (*BucketSummaryStore)(nil)

// InsertBulk adds multiple summaries atomically. Fails entire batch on any duplicate.
func (s *BucketSummaryStore) InsertBulk(_ context.Context, summaries []*domain.BucketSummary) error {
	if len(summaries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[int]struct{}, len(summaries))
	for _, sum := range summaries {
		if sum == nil || sum.Bucket < 1 {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[sum.Bucket]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[sum.Bucket]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[sum.Bucket] = struct{}{}
	}

	for _, sum := range summaries {
		sumCopy := *sum
		s.data[sum.Bucket] = &sumCopy
	}
	return nil
}

// Get retrieves the summary for one bucket.
func (s *BucketSummaryStore) Get(_ context.Context, bucket int) (*domain.BucketSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, ok := s.data[bucket]
	if !ok {
		return nil, storage.ErrNotFound
	}
	sumCopy := *sum
	return &sumCopy, nil
}

// GetAll retrieves every summary, ordered by bucket ASC.
func (s *BucketSummaryStore) GetAll(_ context.Context) ([]*domain.BucketSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.BucketSummary, 0, len(s.data))
	for _, sum := range s.data {
		sumCopy := *sum
		result = append(result, &sumCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Bucket < result[j].Bucket
	})
	return result, nil
}
