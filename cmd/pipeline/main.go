// Package main runs the full momentum persistence pipeline:
// fetch → price table → returns → ranking → transitions → summary → CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fund-momentum-lab/internal/config"
	"fund-momentum-lab/internal/logging"
	"fund-momentum-lab/internal/marketdata"
	"fund-momentum-lab/internal/marketdata/stub"
	"fund-momentum-lab/internal/observability"
	"fund-momentum-lab/internal/orchestrator"
	"fund-momentum-lab/internal/pricetable"
	"fund-momentum-lab/internal/ranking"
	"fund-momentum-lab/internal/reporting"
	"fund-momentum-lab/internal/storage/clickhouse"
	"fund-momentum-lab/internal/storage/migrations"
	"fund-momentum-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (defaults apply when empty)")
	outputDir := flag.String("output-dir", "", "Override configured output directory")
	useStub := flag.Bool("use-stub", false, "Use deterministic fixture prices instead of the network provider")
	metricsAddr := flag.String("metrics-addr", "", "Address for the Prometheus /metrics endpoint (disabled when empty)")
	postgresDSN := flag.String("postgres-dsn", "", "Override configured Postgres DSN")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "Override configured ClickHouse DSN")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *postgresDSN != "" {
		cfg.Postgres.DSN = *postgresDSN
	}
	if *clickhouseDSN != "" {
		cfg.ClickHouse.DSN = *clickhouseDSN
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	// Cancel the run on shutdown signals
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			log.Info().Str("addr", *metricsAddr).Msg("starting metrics server")
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	var provider marketdata.Provider
	if *useStub {
		provider = stub.NewProvider(fixtureObservations(cfg.Universe, cfg.StartDate()))
	} else {
		provider = marketdata.NewChartClient(cfg.Provider.BaseURL,
			marketdata.WithTimeout(cfg.Provider.Timeout),
			marketdata.WithMaxRetries(cfg.Provider.MaxRetries),
		)
	}

	opts := orchestrator.Options{
		Builder:        pricetable.NewBuilder(provider, cfg.Provider.Concurrency, log),
		Ranker:         ranking.NewRanker(cfg.Analysis.Buckets, log),
		Sink:           reporting.NewSink(cfg.Output.Dir, log),
		TrailingMonths: cfg.Analysis.TrailingMonths,
		Log:            log,
	}

	if cfg.Postgres.DSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			fmt.Fprintf(os.Stderr, "Error applying postgres migrations: %v\n", err)
			os.Exit(1)
		}
		opts.RecordStore = postgres.NewSignalRecordStore(pool)
		opts.SummaryStore = postgres.NewBucketSummaryStore(pool)
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
		opts.PriceStore = clickhouse.NewPriceObservationStore(conn)
	}

	result, err := orchestrator.New(opts).Run(ctx, cfg.Universe, cfg.StartDate(), cfg.EndDate())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", err)
		os.Exit(1)
	}

	switch result.HaltedAt {
	case "fetch":
		fmt.Println("No data fetched. Check connectivity or the configured universe.")
	case "ranking":
		fmt.Println("Analysis could not be performed due to insufficient data.")
	default:
		fmt.Println("Analysis complete. Files generated:")
		fmt.Printf("- %s (raw data)\n", reporting.PricesFile)
		fmt.Printf("- %s (detailed calculations)\n", reporting.AnalysisFile)
		fmt.Printf("- %s (bucket transitions)\n", reporting.TransitionsFile)
		fmt.Printf("- %s (per-bucket means)\n", reporting.SummaryFile)
	}
}
