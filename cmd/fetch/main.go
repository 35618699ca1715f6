// Package main fetches the configured universe's monthly price history,
// writes the raw price table CSV, and optionally persists it to ClickHouse.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fund-momentum-lab/internal/config"
	"fund-momentum-lab/internal/logging"
	"fund-momentum-lab/internal/marketdata"
	"fund-momentum-lab/internal/pricetable"
	"fund-momentum-lab/internal/reporting"
	"fund-momentum-lab/internal/storage"
	"fund-momentum-lab/internal/storage/clickhouse"
	"fund-momentum-lab/internal/storage/migrations"
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

	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	provider := marketdata.NewChartClient(cfg.Provider.BaseURL,
		marketdata.WithTimeout(cfg.Provider.Timeout),
		marketdata.WithMaxRetries(cfg.Provider.MaxRetries),
	)
	builder := pricetable.NewBuilder(provider, cfg.Provider.Concurrency, log)

	prices, err := builder.Build(ctx, cfg.Universe, cfg.StartDate(), cfg.EndDate())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fetch error: %v\n", err)
		os.Exit(1)
	}
	if prices.Empty() {
		fmt.Println("No data fetched. Check connectivity or the configured universe.")
		return
	}

	sink := reporting.NewSink(cfg.Output.Dir, log)
	if err := sink.Write(reporting.PricesFile, reporting.RenderPricesCSV(prices)); err != nil {
		fmt.Fprintf(os.Stderr, "Write error: %v\n", err)
		os.Exit(1)
	}

	if cfg.ClickHouse.DSN != "" {
		conn, err := clickhouse.NewConn(ctx, cfg.ClickHouse.DSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to clickhouse: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			fmt.Fprintf(os.Stderr, "Error applying clickhouse migrations: %v\n", err)
			os.Exit(1)
		}
		store := clickhouse.NewPriceObservationStore(conn)
		err = store.InsertBulk(ctx, pricetable.Observations(prices))
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			fmt.Fprintf(os.Stderr, "Error persisting observations: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Fetched %d instruments, %d months.\n", len(prices.Tickers), len(prices.Dates))
}
