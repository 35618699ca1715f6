// Package pricetable aligns heterogeneous per-instrument price series into
// one date-indexed table.
package pricetable

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fund-momentum-lab/internal/domain"
	"fund-momentum-lab/internal/marketdata"
	"fund-momentum-lab/internal/observability"
)

// Builder fetches every instrument in a universe and assembles the results
// into a single domain.Table.
type Builder struct {
	provider    marketdata.Provider
	concurrency int
	log         zerolog.Logger
}

// NewBuilder creates a Builder. Concurrency below 1 is treated as 1.
func NewBuilder(provider marketdata.Provider, concurrency int, log zerolog.Logger) *Builder {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Builder{provider: provider, concurrency: concurrency, log: log}
}

// Build fetches each ticker within [from, to) and aligns the series by date.
// Fetches run on a bounded worker pool but columns always appear in the
// input ticker order, never completion order. Instruments whose fetch fails
// or returns nothing are logged and omitted; if every instrument is omitted
// the result is an empty table, which callers treat as a graceful halt.
func (b *Builder) Build(ctx context.Context, tickers []string, from, to time.Time) (*domain.Table, error) {
	series := make([][]domain.PriceObservation, len(tickers))

	var wg sync.WaitGroup
	sem := make(chan struct{}, b.concurrency)

	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			obs, err := b.provider.FetchMonthly(ctx, ticker, from, to)
			if err != nil {
				b.log.Warn().Err(err).Str("ticker", ticker).Msg("dropping instrument: fetch failed")
				observability.RecordFetchFailure(ticker)
				return
			}
			observability.RecordInstrumentFetched()
			series[i] = obs
		}(i, ticker)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return align(tickers, series), nil
}

// align builds a table over the union of observed dates. Tickers with no
// observations are omitted as columns entirely.
func align(tickers []string, series [][]domain.PriceObservation) *domain.Table {
	var kept []string
	var keptSeries [][]domain.PriceObservation
	dateSet := make(map[time.Time]struct{})

	for i, ticker := range tickers {
		if len(series[i]) == 0 {
			continue
		}
		kept = append(kept, ticker)
		keptSeries = append(keptSeries, series[i])
		for _, o := range series[i] {
			dateSet[o.Date] = struct{}{}
		}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	table := domain.NewTable(dates, kept)
	rowIndex := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		rowIndex[d] = i
	}

	for col, obs := range keptSeries {
		for _, o := range obs {
			table.Set(rowIndex[o.Date], col, o.AdjClose)
		}
	}

	return table
}

// FromObservations rebuilds an aligned table from stored observations.
// Columns appear in first-seen ticker order, dates are the sorted union.
func FromObservations(obs []*domain.PriceObservation) *domain.Table {
	var tickers []string
	seen := make(map[string]int)
	series := make(map[string][]domain.PriceObservation)

	for _, o := range obs {
		if _, ok := seen[o.Ticker]; !ok {
			seen[o.Ticker] = len(tickers)
			tickers = append(tickers, o.Ticker)
		}
		series[o.Ticker] = append(series[o.Ticker], *o)
	}

	grouped := make([][]domain.PriceObservation, len(tickers))
	for i, t := range tickers {
		grouped[i] = series[t]
	}
	return align(tickers, grouped)
}

// Observations flattens a price table back into per-cell observations,
// ordered by ticker then date. Used by the persistence path.
func Observations(t *domain.Table) []*domain.PriceObservation {
	if t.Empty() {
		return nil
	}
	var out []*domain.PriceObservation
	for col, ticker := range t.Tickers {
		for row, date := range t.Dates {
			if v := t.At(row, col); v != nil {
				out = append(out, &domain.PriceObservation{Ticker: ticker, Date: date, AdjClose: *v})
			}
		}
	}
	return out
}
