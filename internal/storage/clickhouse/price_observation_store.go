package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"fund-momentum-lab/internal/domain"
	"fund-momentum-lab/internal/storage"
)

// PriceObservationStore implements storage.PriceObservationStore using
// ClickHouse. MergeTree does not enforce uniqueness at insert time, so
// duplicates are checked explicitly before the batch is sent.
type PriceObservationStore struct {
	conn *Conn
}

// NewPriceObservationStore creates a new PriceObservationStore.
func NewPriceObservationStore(conn *Conn) *PriceObservationStore {
	return &PriceObservationStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceObservationStore = (*PriceObservationStore)(nil)

// InsertBulk adds multiple observations. Fails entire batch on duplicate
// (ticker, date).
func (s *PriceObservationStore) InsertBulk(ctx context.Context, obs []*domain.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		ticker string
		date   time.Time
	}
	seen := make(map[key]struct{})
	for _, o := range obs {
		k := key{o.Ticker, o.Date}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, o := range obs {
		exists, err := s.exists(ctx, o.Ticker, o.Date)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_observations (ticker, date, adj_close)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, o := range obs {
		if err := batch.Append(o.Ticker, o.Date, o.AdjClose); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByTicker retrieves all observations for a ticker, ordered by date ASC.
func (s *PriceObservationStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.PriceObservation, error) {
	query := `
		SELECT ticker, date, adj_close
		FROM price_observations
		WHERE ticker = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("query by ticker: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// GetTickers retrieves the distinct tickers present, sorted ascending.
func (s *PriceObservationStore) GetTickers(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT ticker
		FROM price_observations
		ORDER BY ticker ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickers: %w", err)
	}
	return tickers, nil
}

// exists checks if an observation with the given key exists.
func (s *PriceObservationStore) exists(ctx context.Context, ticker string, date time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM price_observations
		WHERE ticker = ? AND date = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, ticker, date).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanObservations scans multiple rows.
func scanObservations(rows driver.Rows) ([]*domain.PriceObservation, error) {
	var obs []*domain.PriceObservation

	for rows.Next() {
		var o domain.PriceObservation
		if err := rows.Scan(&o.Ticker, &o.Date, &o.AdjClose); err != nil {
			return nil, fmt.Errorf("scan price observation row: %w", err)
		}
		o.Date = o.Date.UTC()
		obs = append(obs, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price observation rows: %w", err)
	}
	return obs, nil
}
