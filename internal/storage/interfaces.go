package storage

import (
	"context"

	"fund-momentum-lab/internal/domain"
)

// PriceObservationStore provides access to price_observations storage.
type PriceObservationStore interface {
	// InsertBulk adds multiple observations. Fails entire batch on
	// duplicate (ticker, date).
	InsertBulk(ctx context.Context, obs []*domain.PriceObservation) error

	// GetByTicker retrieves all observations for a ticker, ordered by date ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.PriceObservation, error)

	// GetTickers retrieves the distinct tickers present, sorted ascending.
	GetTickers(ctx context.Context) ([]string, error)
}

// SignalRecordStore provides access to signal_records storage.
type SignalRecordStore interface {
	// InsertBulk adds multiple records atomically. Fails entire batch on
	// duplicate (date, ticker).
	InsertBulk(ctx context.Context, records []*domain.SignalRecord) error

	// GetAll retrieves every record, ordered by (date, ticker) ASC.
	GetAll(ctx context.Context) ([]*domain.SignalRecord, error)

	// GetByTicker retrieves all records for a ticker, ordered by date ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.SignalRecord, error)
}

// BucketSummaryStore provides access to bucket_summaries storage.
type BucketSummaryStore interface {
	// InsertBulk adds multiple summaries atomically. Fails entire batch on
	// duplicate bucket.
	InsertBulk(ctx context.Context, summaries []*domain.BucketSummary) error

	// Get retrieves the summary for one bucket. Returns ErrNotFound when
	// no summary is stored for it.
	Get(ctx context.Context, bucket int) (*domain.BucketSummary, error)

	// GetAll retrieves every summary, ordered by bucket ASC.
	GetAll(ctx context.Context) ([]*domain.BucketSummary, error)
}
