// Package reporting renders analysis tables as delimited text outputs.
package reporting

import (
	"fmt"
	"strconv"
	"strings"

	"fund-momentum-lab/internal/domain"
)

// Output file names. Names keep the original "quintile" wording of the
// exported tables even though the analysis buckets into tertiles.
const (
	PricesFile      = "monthly_prices.csv"
	AnalysisFile    = "monthly_analysis.csv"
	TransitionsFile = "quintile_transitions.csv"
	SummaryFile     = "quintile_performance_summary.csv"
)

const dateLayout = "2006-01-02"

// RenderPricesCSV renders the raw price table. The first column is the
// date index; missing observations render as empty fields.
func RenderPricesCSV(t *domain.Table) string {
	var sb strings.Builder

	sb.WriteString("date")
	for _, ticker := range t.Tickers {
		sb.WriteByte(',')
		sb.WriteString(ticker)
	}
	sb.WriteByte('\n')

	for row, date := range t.Dates {
		sb.WriteString(date.Format(dateLayout))
		for col := range t.Tickers {
			sb.WriteByte(',')
			if v := t.At(row, col); v != nil {
				sb.WriteString(strconv.FormatFloat(*v, 'f', -1, 64))
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

// RenderAnalysisCSV renders signal records as CSV.
func RenderAnalysisCSV(records []domain.SignalRecord) string {
	var sb strings.Builder

	sb.WriteString("trailing_12m,next_month_ret,quintile,date,ticker\n")
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("%.6f,%.6f,%d,%s,%s\n",
			r.Trailing12M,
			r.NextMonthRet,
			r.Bucket,
			r.Date.Format(dateLayout),
			r.Ticker,
		))
	}

	return sb.String()
}

// RenderTransitionsCSV renders transition records as CSV.
func RenderTransitionsCSV(records []domain.TransitionRecord) string {
	var sb strings.Builder

	sb.WriteString("trailing_12m,next_month_ret,quintile,date,ticker,next_quintile\n")
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("%.6f,%.6f,%d,%s,%s,%d\n",
			r.Trailing12M,
			r.NextMonthRet,
			r.Bucket,
			r.Date.Format(dateLayout),
			r.Ticker,
			r.NextBucket,
		))
	}

	return sb.String()
}

// RenderSummaryCSV renders bucket summaries as CSV.
func RenderSummaryCSV(summaries []domain.BucketSummary) string {
	var sb strings.Builder

	sb.WriteString("quintile,next_month_ret\n")
	for _, s := range summaries {
		sb.WriteString(fmt.Sprintf("%d,%.6f\n", s.Bucket, s.MeanNextMret))
	}

	return sb.String()
}
