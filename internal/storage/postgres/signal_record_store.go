package postgres

import (
	"context"
	"fmt"

	"fund-momentum-lab/internal/domain"
	"fund-momentum-lab/internal/storage"
)

// SignalRecordStore implements storage.SignalRecordStore using PostgreSQL.
type SignalRecordStore struct {
	pool *Pool
}

// NewSignalRecordStore creates a new SignalRecordStore.
func NewSignalRecordStore(pool *Pool) *SignalRecordStore {
	return &SignalRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SignalRecordStore = (*SignalRecordStore)(nil)

const insertSignalRecord = `
	INSERT INTO signal_records (
		date, ticker, trailing_12m, next_month_ret, bucket
	) VALUES (
		$1, $2, $3, $4, $5
	)
`

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *SignalRecordStore) InsertBulk(ctx context.Context, records []*domain.SignalRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		_, err := tx.Exec(ctx, insertSignalRecord,
			r.Date, r.Ticker, r.Trailing12M, r.NextMonthRet, r.Bucket,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert signal record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves every record, ordered by (date, ticker) ASC.
func (s *SignalRecordStore) GetAll(ctx context.Context) ([]*domain.SignalRecord, error) {
	query := `
		SELECT date, ticker, trailing_12m, next_month_ret, bucket
		FROM signal_records
		ORDER BY date ASC, ticker ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query signal records: %w", err)
	}
	defer rows.Close()

	var records []*domain.SignalRecord
	for rows.Next() {
		var r domain.SignalRecord
		if err := rows.Scan(&r.Date, &r.Ticker, &r.Trailing12M, &r.NextMonthRet, &r.Bucket); err != nil {
			return nil, fmt.Errorf("scan signal record: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signal records: %w", err)
	}
	return records, nil
}

// GetByTicker retrieves all records for a ticker, ordered by date ASC.
func (s *SignalRecordStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.SignalRecord, error) {
	query := `
		SELECT date, ticker, trailing_12m, next_month_ret, bucket
		FROM signal_records
		WHERE ticker = $1
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("query signal records by ticker: %w", err)
	}
	defer rows.Close()

	var records []*domain.SignalRecord
	for rows.Next() {
		var r domain.SignalRecord
		if err := rows.Scan(&r.Date, &r.Ticker, &r.Trailing12M, &r.NextMonthRet, &r.Bucket); err != nil {
			return nil, fmt.Errorf("scan signal record: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signal records: %w", err)
	}
	return records, nil
}
