package postgres

import (
	"context"
	"fmt"

	"fund-momentum-lab/internal/domain"
	"fund-momentum-lab/internal/storage"
)

// BucketSummaryStore implements storage.BucketSummaryStore using PostgreSQL.
type BucketSummaryStore struct {
	pool *Pool
}

// NewBucketSummaryStore creates a new BucketSummaryStore.
func NewBucketSummaryStore(pool *Pool) *BucketSummaryStore {
	return &BucketSummaryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BucketSummaryStore = (*BucketSummaryStore)(nil)

// InsertBulk adds multiple summaries atomically. Fails entire batch on any duplicate.
func (s *BucketSummaryStore) InsertBulk(ctx context.Context, summaries []*domain.BucketSummary) error {
	if len(summaries) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO bucket_summaries (bucket, mean_next_month_ret, record_count)
		VALUES ($1, $2, $3)
	`

	for _, sum := range summaries {
		_, err := tx.Exec(ctx, query, sum.Bucket, sum.MeanNextMret, sum.Count)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert bucket summary: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Get retrieves the summary for one bucket.
func (s *BucketSummaryStore) Get(ctx context.Context, bucket int) (*domain.BucketSummary, error) {
	query := `
		SELECT bucket, mean_next_month_ret, record_count
		FROM bucket_summaries
		WHERE bucket = $1
	`

	var sum domain.BucketSummary
	err := s.pool.QueryRow(ctx, query, bucket).Scan(&sum.Bucket, &sum.MeanNextMret, &sum.Count)
	if isNotFoundError(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query bucket summary: %w", err)
	}
	return &sum, nil
}

// GetAll retrieves every summary, ordered by bucket ASC.
func (s *BucketSummaryStore) GetAll(ctx context.Context) ([]*domain.BucketSummary, error) {
	query := `
		SELECT bucket, mean_next_month_ret, record_count
		FROM bucket_summaries
		ORDER BY bucket ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query bucket summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.BucketSummary
	for rows.Next() {
		var sum domain.BucketSummary
		if err := rows.Scan(&sum.Bucket, &sum.MeanNextMret, &sum.Count); err != nil {
			return nil, fmt.Errorf("scan bucket summary: %w", err)
		}
		summaries = append(summaries, &sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bucket summaries: %w", err)
	}
	return summaries, nil
}
