// Package orchestrator coordinates the end-to-end analysis pipeline:
// price table → returns → ranking → transitions → summary → outputs.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"fund-momentum-lab/internal/domain"
	"fund-momentum-lab/internal/observability"
	"fund-momentum-lab/internal/pricetable"
	"fund-momentum-lab/internal/ranking"
	"fund-momentum-lab/internal/reporting"
	"fund-momentum-lab/internal/returns"
	"fund-momentum-lab/internal/storage"
	"fund-momentum-lab/internal/summary"
	"fund-momentum-lab/internal/transition"
)

// Orchestrator owns the stage sequencing and the halt-early semantics:
// an empty intermediate result stops the run with a report instead of an
// error, and no downstream outputs are written.
type Orchestrator struct {
	builder        *pricetable.Builder
	ranker         *ranking.Ranker
	sink           *reporting.Sink
	trailingMonths int

	// Optional persistence; nil stores keep the run file-only.
	priceStore   storage.PriceObservationStore
	recordStore  storage.SignalRecordStore
	summaryStore storage.BucketSummaryStore

	log zerolog.Logger
}

// Options for creating an Orchestrator.
type Options struct {
	Builder        *pricetable.Builder
	Ranker         *ranking.Ranker
	Sink           *reporting.Sink
	TrailingMonths int

	PriceStore   storage.PriceObservationStore
	RecordStore  storage.SignalRecordStore
	SummaryStore storage.BucketSummaryStore

	Log zerolog.Logger
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	trailing := opts.TrailingMonths
	if trailing < 1 {
		trailing = returns.TrailingYearMonths
	}
	return &Orchestrator{
		builder:        opts.Builder,
		ranker:         opts.Ranker,
		sink:           opts.Sink,
		trailingMonths: trailing,
		priceStore:     opts.PriceStore,
		recordStore:    opts.RecordStore,
		summaryStore:   opts.SummaryStore,
		log:            opts.Log,
	}
}

// RunResult contains per-stage counts from a pipeline execution.
type RunResult struct {
	Instruments int // columns in the aligned price table
	PriceRows   int
	Records     int
	Transitions int
	Summaries   int

	// HaltedAt names the stage that produced no data, empty when the run
	// completed all stages.
	HaltedAt string
}

// Run executes the full pipeline over the given universe and date range.
// Stages:
//  1. Build aligned price table (parallel fetch)
//  2. Derive monthly and trailing return tables
//  3. Rank into tertile buckets against next-month outcomes
//  4. Derive bucket transitions
//  5. Summarize mean outcome per bucket
//
// Outputs are written after the stage that produces them, so a halt at the
// ranking stage still leaves the price table on disk — matching the
// contract that failure degrades to "produce less output, report why".
func (o *Orchestrator) Run(ctx context.Context, tickers []string, from, to time.Time) (*RunResult, error) {
	result := &RunResult{}
	started := time.Now()

	o.log.Info().Int("tickers", len(tickers)).Time("from", from).Time("to", to).Msg("fetching price history")
	prices, err := o.builder.Build(ctx, tickers, from, to)
	if err != nil {
		return nil, fmt.Errorf("build price table: %w", err)
	}
	if prices.Empty() {
		o.log.Warn().Msg("no data could be fetched for any instrument; halting")
		result.HaltedAt = "fetch"
		observability.RecordPipelineRun("halted_fetch", time.Since(started).Seconds())
		return result, nil
	}
	result.Instruments = len(prices.Tickers)
	result.PriceRows = len(prices.Dates)

	if err := o.sink.Write(reporting.PricesFile, reporting.RenderPricesCSV(prices)); err != nil {
		return nil, err
	}
	if err := o.persistPrices(ctx, prices); err != nil {
		return nil, err
	}

	monthly := returns.Monthly(prices)
	trailing := returns.Compute(prices, o.trailingMonths)
	o.log.Info().
		Int("monthly_rows", len(monthly.Dates)).
		Int("trailing_rows", len(trailing.Dates)).
		Msg("computed return tables")

	records := o.ranker.Rank(trailing, monthly)
	if len(records) == 0 {
		o.log.Warn().Msg("no valid months found for analysis; halting")
		result.HaltedAt = "ranking"
		observability.RecordPipelineRun("halted_ranking", time.Since(started).Seconds())
		return result, nil
	}
	result.Records = len(records)
	observability.RecordSignalRecords(len(records))

	if err := o.sink.Write(reporting.AnalysisFile, reporting.RenderAnalysisCSV(records)); err != nil {
		return nil, err
	}
	if err := o.persistRecords(ctx, records); err != nil {
		return nil, err
	}

	transitions := transition.Compute(records)
	result.Transitions = len(transitions)
	observability.RecordTransitions(len(transitions))
	if err := o.sink.Write(reporting.TransitionsFile, reporting.RenderTransitionsCSV(transitions)); err != nil {
		return nil, err
	}

	summaries := summary.Compute(records)
	result.Summaries = len(summaries)
	if err := o.sink.Write(reporting.SummaryFile, reporting.RenderSummaryCSV(summaries)); err != nil {
		return nil, err
	}
	if err := o.persistSummaries(ctx, summaries); err != nil {
		return nil, err
	}

	o.log.Info().
		Int("instruments", result.Instruments).
		Int("records", result.Records).
		Int("transitions", result.Transitions).
		Int("summaries", result.Summaries).
		Msg("pipeline completed")

	observability.RecordPipelineRun("completed", time.Since(started).Seconds())
	observability.DefaultMetrics.LastSuccessfulRun.SetToCurrentTime()

	return result, nil
}

// persistPrices stores the price table when a price store is configured.
// Already-present observations are skipped, not fatal.
func (o *Orchestrator) persistPrices(ctx context.Context, prices *domain.Table) error {
	if o.priceStore == nil {
		return nil
	}
	err := o.priceStore.InsertBulk(ctx, pricetable.Observations(prices))
	if errors.Is(err, storage.ErrDuplicateKey) {
		o.log.Debug().Msg("price observations already stored; skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("persist price observations: %w", err)
	}
	return nil
}

func (o *Orchestrator) persistRecords(ctx context.Context, records []domain.SignalRecord) error {
	if o.recordStore == nil {
		return nil
	}
	ptrs := make([]*domain.SignalRecord, len(records))
	for i := range records {
		ptrs[i] = &records[i]
	}
	err := o.recordStore.InsertBulk(ctx, ptrs)
	if errors.Is(err, storage.ErrDuplicateKey) {
		o.log.Debug().Msg("signal records already stored; skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("persist signal records: %w", err)
	}
	return nil
}

func (o *Orchestrator) persistSummaries(ctx context.Context, summaries []domain.BucketSummary) error {
	if o.summaryStore == nil {
		return nil
	}
	ptrs := make([]*domain.BucketSummary, len(summaries))
	for i := range summaries {
		ptrs[i] = &summaries[i]
	}
	err := o.summaryStore.InsertBulk(ctx, ptrs)
	if errors.Is(err, storage.ErrDuplicateKey) {
		o.log.Debug().Msg("bucket summaries already stored; skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("persist bucket summaries: %w", err)
	}
	return nil
}
