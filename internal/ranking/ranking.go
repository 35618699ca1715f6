// Package ranking joins trailing-return signals with next-month outcomes
// and assigns instruments to equal-population tertile buckets per date.
package ranking

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"fund-momentum-lab/internal/domain"
)

// DefaultBuckets is the tertile split used by the momentum analysis.
const DefaultBuckets = 3

// MinInstruments is the smallest cross-section that can be split into
// three non-degenerate buckets.
const MinInstruments = 3

// ErrDegenerateSignal is returned by bucket assignment when the signal
// distribution collapses to fewer than one interval (all values equal).
var ErrDegenerateSignal = errors.New("degenerate signal distribution: cannot form buckets")

// Ranker produces signal records from trailing and monthly return tables.
type Ranker struct {
	numBuckets int
	log        zerolog.Logger
}

// NewRanker creates a Ranker with the given bucket count (minimum 2).
func NewRanker(numBuckets int, log zerolog.Logger) *Ranker {
	if numBuckets < 2 {
		numBuckets = DefaultBuckets
	}
	return &Ranker{numBuckets: numBuckets, log: log}
}

// Rank walks every trailing-return date except the last, pairs each
// instrument's signal with its return over the following month, and emits
// one record per instrument that has both values. Dates with no later
// return row are skipped silently; dates with fewer than MinInstruments
// survivors are skipped silently; dates whose signal distribution cannot
// be bucketed are skipped with a warning. No per-date failure aborts the
// remaining dates.
//
// Output is ordered by date ascending, then table column order within a
// date.
func (r *Ranker) Rank(trailing, monthly *domain.Table) []domain.SignalRecord {
	if trailing.Empty() || monthly.Empty() {
		return nil
	}

	var records []domain.SignalRecord

	for row := 0; row < len(trailing.Dates)-1; row++ {
		date := trailing.Dates[row]

		nextRow, ok := nextDateAfter(monthly.Dates, date)
		if !ok {
			continue // no outcome observable
		}

		var tickers []string
		var signals, outcomes []float64
		for col, ticker := range trailing.Tickers {
			sig := trailing.At(row, col)
			if sig == nil {
				continue
			}
			mcol := monthly.ColumnIndex(ticker)
			if mcol < 0 {
				continue
			}
			out := monthly.At(nextRow, mcol)
			if out == nil {
				continue
			}
			tickers = append(tickers, ticker)
			signals = append(signals, *sig)
			outcomes = append(outcomes, *out)
		}

		if len(tickers) < MinInstruments {
			continue
		}

		buckets, err := AssignBuckets(signals, r.numBuckets)
		if err != nil {
			r.log.Warn().Err(err).Time("date", date).Msg("skipping date: bucket assignment failed")
			continue
		}

		for i, ticker := range tickers {
			records = append(records, domain.SignalRecord{
				Date:         date,
				Ticker:       ticker,
				Trailing12M:  signals[i],
				NextMonthRet: outcomes[i],
				Bucket:       buckets[i],
			})
		}
	}

	return records
}

// AssignBuckets labels each signal with a quantile bucket in 1..numBuckets.
// Edges sit at quantiles k/numBuckets of the sample (linear interpolation);
// duplicate edges are collapsed, so heavy ties yield fewer effective labels
// numbered consecutively from 1. A value equal to an interior edge falls to
// the lower bucket. Returns ErrDegenerateSignal when fewer than two
// distinct edges remain.
func AssignBuckets(signals []float64, numBuckets int) ([]int, error) {
	sorted := make([]float64, len(signals))
	copy(sorted, signals)
	sort.Float64s(sorted)

	edges := make([]float64, 0, numBuckets+1)
	for k := 0; k <= numBuckets; k++ {
		q := quantile(float64(k)/float64(numBuckets), sorted)
		if len(edges) == 0 || q > edges[len(edges)-1] {
			edges = append(edges, q)
		}
	}
	if len(edges) < 2 {
		return nil, ErrDegenerateSignal
	}

	buckets := make([]int, len(signals))
	for i, v := range signals {
		idx := sort.SearchFloat64s(edges, v)
		if idx < 1 {
			idx = 1 // sample minimum belongs to the first interval
		}
		buckets[i] = idx
	}
	return buckets, nil
}

// quantile returns the p-quantile of an ascending sample, interpolating
// linearly between order statistics (index h = p*(n-1)).
func quantile(p float64, sorted []float64) float64 {
	h := p * float64(len(sorted)-1)
	i := int(math.Floor(h))
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-float64(i))*(sorted[i+1]-sorted[i])
}

// nextDateAfter returns the row index of the smallest date strictly greater
// than d. Dates must be ascending.
func nextDateAfter(dates []time.Time, d time.Time) (int, bool) {
	idx := sort.Search(len(dates), func(i int) bool { return dates[i].After(d) })
	if idx == len(dates) {
		return 0, false
	}
	return idx, true
}
