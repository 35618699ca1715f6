package reporting

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fund-momentum-lab/internal/domain"
)

func TestRenderPricesCSV(t *testing.T) {
	dates := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	table := domain.NewTable(dates, []string{"ISF.L", "VMID.L"})
	table.Set(0, 0, 100.5)
	table.Set(1, 0, 110)
	table.Set(1, 1, 55.25)
	// (0,1) stays missing

	got := RenderPricesCSV(table)

	want := "date,ISF.L,VMID.L\n" +
		"2024-01-01,100.5,\n" +
		"2024-02-01,110,55.25\n"
	if got != want {
		t.Errorf("unexpected prices CSV:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderAnalysisCSV(t *testing.T) {
	records := []domain.SignalRecord{
		{
			Date:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Ticker:       "ISF.L",
			Trailing12M:  0.0853219,
			NextMonthRet: -0.0123456,
			Bucket:       2,
		},
	}

	got := RenderAnalysisCSV(records)

	want := "trailing_12m,next_month_ret,quintile,date,ticker\n" +
		"0.085322,-0.012346,2,2024-01-01,ISF.L\n"
	if got != want {
		t.Errorf("unexpected analysis CSV:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderTransitionsCSV(t *testing.T) {
	records := []domain.TransitionRecord{
		{
			SignalRecord: domain.SignalRecord{
				Date:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Ticker:       "ISF.L",
				Trailing12M:  0.05,
				NextMonthRet: 0.01,
				Bucket:       1,
			},
			NextBucket: 3,
		},
	}

	got := RenderTransitionsCSV(records)

	want := "trailing_12m,next_month_ret,quintile,date,ticker,next_quintile\n" +
		"0.050000,0.010000,1,2024-01-01,ISF.L,3\n"
	if got != want {
		t.Errorf("unexpected transitions CSV:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderSummaryCSV(t *testing.T) {
	summaries := []domain.BucketSummary{
		{Bucket: 1, MeanNextMret: -0.002345, Count: 42},
		{Bucket: 2, MeanNextMret: 0.0061239, Count: 41},
	}

	got := RenderSummaryCSV(summaries)

	want := "quintile,next_month_ret\n" +
		"1,-0.002345\n" +
		"2,0.006124\n"
	if got != want {
		t.Errorf("unexpected summary CSV:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderCSV_EmptyInputsKeepHeaders(t *testing.T) {
	if got := RenderAnalysisCSV(nil); got != "trailing_12m,next_month_ret,quintile,date,ticker\n" {
		t.Errorf("unexpected empty analysis CSV: %q", got)
	}
	if got := RenderSummaryCSV(nil); got != "quintile,next_month_ret\n" {
		t.Errorf("unexpected empty summary CSV: %q", got)
	}
}

func TestSink_WriteCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	sink := NewSink(dir, zerolog.Nop())

	if err := sink.Write(SummaryFile, "quintile,next_month_ret\n"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if !strings.HasPrefix(string(data), "quintile,") {
		t.Errorf("unexpected file content: %q", string(data))
	}
}
