package transition

import (
	"testing"
	"time"

	"fund-momentum-lab/internal/domain"
)

func date(y, m int) time.Time {
	return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
}

func TestCompute_PairsConsecutiveBuckets(t *testing.T) {
	records := []domain.SignalRecord{
		{Date: date(2024, 1), Ticker: "AAA.L", Bucket: 1},
		{Date: date(2024, 2), Ticker: "AAA.L", Bucket: 3},
		{Date: date(2024, 3), Ticker: "AAA.L", Bucket: 2},
	}

	got := Compute(records)

	if len(got) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(got))
	}
	if got[0].Bucket != 1 || got[0].NextBucket != 3 {
		t.Errorf("first transition: expected 1→3, got %d→%d", got[0].Bucket, got[0].NextBucket)
	}
	if got[1].Bucket != 3 || got[1].NextBucket != 2 {
		t.Errorf("second transition: expected 3→2, got %d→%d", got[1].Bucket, got[1].NextBucket)
	}
}

func TestCompute_LastRecordPerTickerDropped(t *testing.T) {
	// Output size is records minus one per instrument with any record.
	records := []domain.SignalRecord{
		{Date: date(2024, 1), Ticker: "AAA.L", Bucket: 1},
		{Date: date(2024, 2), Ticker: "AAA.L", Bucket: 2},
		{Date: date(2024, 1), Ticker: "BBB.L", Bucket: 3},
		{Date: date(2024, 2), Ticker: "BBB.L", Bucket: 3},
		{Date: date(2024, 3), Ticker: "BBB.L", Bucket: 1},
		{Date: date(2024, 1), Ticker: "CCC.L", Bucket: 2}, // single record
	}

	got := Compute(records)

	if want := len(records) - 3; len(got) != want {
		t.Fatalf("expected %d transitions, got %d", want, len(got))
	}
	for _, tr := range got {
		if tr.Ticker == "CCC.L" {
			t.Errorf("single-record instrument must not produce a transition")
		}
	}
}

func TestCompute_InterleavedInputRegrouped(t *testing.T) {
	// Records arrive date-major, as the ranker emits them; pairing still
	// follows each instrument's own timeline.
	records := []domain.SignalRecord{
		{Date: date(2024, 1), Ticker: "AAA.L", Bucket: 1},
		{Date: date(2024, 1), Ticker: "BBB.L", Bucket: 3},
		{Date: date(2024, 2), Ticker: "AAA.L", Bucket: 2},
		{Date: date(2024, 2), Ticker: "BBB.L", Bucket: 1},
	}

	got := Compute(records)

	if len(got) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(got))
	}
	// Sorted by (ticker, date).
	if got[0].Ticker != "AAA.L" || got[0].NextBucket != 2 {
		t.Errorf("expected AAA.L 1→2 first, got %s %d→%d", got[0].Ticker, got[0].Bucket, got[0].NextBucket)
	}
	if got[1].Ticker != "BBB.L" || got[1].NextBucket != 1 {
		t.Errorf("expected BBB.L 3→1 second, got %s %d→%d", got[1].Ticker, got[1].Bucket, got[1].NextBucket)
	}
}

func TestCompute_Empty(t *testing.T) {
	if got := Compute(nil); len(got) != 0 {
		t.Errorf("expected no transitions from no records, got %d", len(got))
	}
}
