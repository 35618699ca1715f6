// Package main regenerates the analysis reports from persisted signal
// records instead of refetching market data. Postgres holds the records;
// ClickHouse, when configured, supplies the raw price table.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fund-momentum-lab/internal/config"
	"fund-momentum-lab/internal/domain"
	"fund-momentum-lab/internal/logging"
	"fund-momentum-lab/internal/pricetable"
	"fund-momentum-lab/internal/reporting"
	"fund-momentum-lab/internal/storage/clickhouse"
	"fund-momentum-lab/internal/storage/postgres"
	"fund-momentum-lab/internal/summary"
	"fund-momentum-lab/internal/transition"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (defaults apply when empty)")
	outputDir := flag.String("output-dir", "", "Override configured output directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if cfg.Postgres.DSN == "" {
		fmt.Fprintln(os.Stderr, "Error: report requires a postgres DSN in the config")
		os.Exit(1)
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	stored, err := postgres.NewSignalRecordStore(pool).GetAll(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading signal records: %v\n", err)
		os.Exit(1)
	}
	if len(stored) == 0 {
		fmt.Println("No signal records stored. Run the pipeline first.")
		return
	}

	records := make([]domain.SignalRecord, 0, len(stored))
	for _, r := range stored {
		records = append(records, *r)
	}
	transitions := transition.Compute(records)
	summaries := summary.Compute(records)

	sink := reporting.NewSink(cfg.Output.Dir, log)
	files := []struct {
		name    string
		content string
	}{
		{reporting.AnalysisFile, reporting.RenderAnalysisCSV(records)},
		{reporting.TransitionsFile, reporting.RenderTransitionsCSV(transitions)},
		{reporting.SummaryFile, reporting.RenderSummaryCSV(summaries)},
	}
	for _, f := range files {
		if err := sink.Write(f.name, f.content); err != nil {
			fmt.Fprintf(os.Stderr, "Write error: %v\n", err)
			os.Exit(1)
		}
	}

	if cfg.ClickHouse.DSN != "" {
		if err := writePricesFromClickhouse(ctx, cfg, sink); err != nil {
			fmt.Fprintf(os.Stderr, "Error rebuilding price table: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Report complete. %d records, %d transitions, %d buckets.\n",
		len(records), len(transitions), len(summaries))
}

func writePricesFromClickhouse(ctx context.Context, cfg *config.Config, sink *reporting.Sink) error {
	conn, err := clickhouse.NewConn(ctx, cfg.ClickHouse.DSN)
	if err != nil {
		return err
	}
	defer conn.Close()

	store := clickhouse.NewPriceObservationStore(conn)
	tickers, err := store.GetTickers(ctx)
	if err != nil {
		return err
	}
	var obs []*domain.PriceObservation
	for _, ticker := range tickers {
		series, err := store.GetByTicker(ctx, ticker)
		if err != nil {
			return err
		}
		obs = append(obs, series...)
	}
	if len(obs) == 0 {
		return nil
	}
	return sink.Write(reporting.PricesFile, reporting.RenderPricesCSV(pricetable.FromObservations(obs)))
}
