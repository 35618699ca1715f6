// Package summary aggregates next-month returns by tertile bucket.
package summary

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"fund-momentum-lab/internal/domain"
)

// Compute returns one BucketSummary per distinct bucket present in the
// records, holding the arithmetic mean of NextMonthRet across that bucket.
// Buckets with zero records are omitted. Output is sorted by bucket
// ascending.
func Compute(records []domain.SignalRecord) []domain.BucketSummary {
	if len(records) == 0 {
		return nil
	}

	grouped := make(map[int][]float64)
	for _, r := range records {
		grouped[r.Bucket] = append(grouped[r.Bucket], r.NextMonthRet)
	}

	buckets := make([]int, 0, len(grouped))
	for b := range grouped {
		buckets = append(buckets, b)
	}
	sort.Ints(buckets)

	out := make([]domain.BucketSummary, 0, len(buckets))
	for _, b := range buckets {
		outcomes := grouped[b]
		out = append(out, domain.BucketSummary{
			Bucket:       b,
			MeanNextMret: stat.Mean(outcomes, nil),
			Count:        len(outcomes),
		})
	}
	return out
}
