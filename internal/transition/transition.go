// Package transition pairs each instrument's consecutive bucket
// assignments to measure how funds move between tertiles over time.
package transition

import (
	"sort"

	"fund-momentum-lab/internal/domain"
)

// Compute derives transition records from signal records. Records are
// grouped by ticker and ordered by date; each record except the last in
// its group is paired with the bucket of the immediately following record.
// The final record per instrument has no successor and is dropped, so an
// instrument appearing only once contributes nothing.
//
// Output is sorted by (ticker, date), matching the exported table order.
func Compute(records []domain.SignalRecord) []domain.TransitionRecord {
	if len(records) == 0 {
		return nil
	}

	ordered := make([]domain.SignalRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Ticker != ordered[j].Ticker {
			return ordered[i].Ticker < ordered[j].Ticker
		}
		return ordered[i].Date.Before(ordered[j].Date)
	})

	var out []domain.TransitionRecord
	for i := 0; i < len(ordered)-1; i++ {
		next := ordered[i+1]
		if next.Ticker != ordered[i].Ticker {
			continue // last record of its group
		}
		out = append(out, domain.TransitionRecord{
			SignalRecord: ordered[i],
			NextBucket:   next.Bucket,
		})
	}
	return out
}
