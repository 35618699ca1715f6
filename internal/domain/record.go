package domain

import "time"

// Tertile bucket labels. Bucket 1 holds the lowest-signal third of the
// universe at a date, bucket 3 the highest. Heavy signal ties can leave
// some labels unused for a date.
const (
	BucketLow  = 1
	BucketMid  = 2
	BucketHigh = 3
)

// SignalRecord pairs an instrument's trailing return (signal) at a date
// with its following month's return (outcome) and its tertile bucket.
// Corresponds to signal_records table in Postgres.
type SignalRecord struct {
	Date         time.Time // signal observation date
	Ticker       string    // instrument identifier
	Trailing12M  float64   // trailing 12-month return at Date
	NextMonthRet float64   // return over the month following Date
	Bucket       int       // tertile label, 1..3
}

// TransitionRecord is a SignalRecord extended with the bucket the same
// instrument was assigned at its next recorded date. Records without a
// chronological successor are never materialized as transitions.
type TransitionRecord struct {
	SignalRecord
	NextBucket int // bucket at the instrument's next recorded date
}

// BucketSummary is the mean outcome across all signal records sharing a
// bucket. Buckets with no records are omitted rather than emitted as zero.
// Corresponds to bucket_summaries table in Postgres.
type BucketSummary struct {
	Bucket       int     // tertile label, 1..3
	MeanNextMret float64 // arithmetic mean of NextMonthRet
	Count        int     // number of records in the bucket
}
