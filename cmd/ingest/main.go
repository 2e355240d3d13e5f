package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/yuniezzx/MarketSeer/internal/adapter"
	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/ingest"
	"github.com/yuniezzx/MarketSeer/internal/observability"
	"github.com/yuniezzx/MarketSeer/internal/reconcile"
	"github.com/yuniezzx/MarketSeer/internal/storage"
	chstore "github.com/yuniezzx/MarketSeer/internal/storage/clickhouse"
	"github.com/yuniezzx/MarketSeer/internal/storage/memory"
	"github.com/yuniezzx/MarketSeer/internal/storage/migrations"
	pgstore "github.com/yuniezzx/MarketSeer/internal/storage/postgres"
)

func main() {
	mode := flag.String("mode", "profiles", "Ingest mode: profiles, bars, or listevents")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (bars mode)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of databases")
	migrate := flag.Bool("migrate", false, "Run schema migrations before ingesting")
	sources := flag.String("sources", "akshare,efinance,tushare,yfinance", "Comma-separated providers in precedence order")
	tushareToken := flag.String("tushare-token", os.Getenv("TUSHARE_TOKEN"), "Tushare API token (or TUSHARE_TOKEN env)")
	symbols := flag.String("symbols", "", "Comma-separated symbols, e.g. 002104.SZ,600519.SH")
	startDate := flag.String("start", "", "Start date YYYY-MM-DD (bars mode)")
	endDate := flag.String("end", "", "End date YYYY-MM-DD (bars mode)")
	dates := flag.String("dates", "", "Comma-separated trade dates YYYY-MM-DD (listevents mode)")
	concurrency := flag.Int("concurrency", 4, "Parallel entities per run")
	maxRetries := flag.Int("max-retries", 3, "Retries per fetch after the first attempt")
	httpTimeout := flag.Duration("http-timeout", 30*time.Second, "Per-request provider timeout")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	metrics := observability.NewMetrics("")
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	opts := runOptions{
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
		useMemory:     *useMemory,
		migrate:       *migrate,
		tushareToken:  *tushareToken,
		concurrency:   *concurrency,
		maxRetries:    *maxRetries,
		httpTimeout:   *httpTimeout,
		metrics:       metrics,
		logger:        logger,
	}

	var err error
	switch *mode {
	case "profiles":
		err = runProfiles(ctx, opts, *sources, *symbols)
	case "bars":
		err = runBars(ctx, opts, *sources, *symbols, *startDate, *endDate)
	case "listevents":
		err = runListEvents(ctx, opts, *sources, *dates)
	default:
		logger.Fatalf("Unknown mode: %s", *mode)
	}

	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// runOptions carries the flag values shared by every mode.
type runOptions struct {
	postgresDSN   string
	clickhouseDSN string
	useMemory     bool
	migrate       bool
	tushareToken  string
	concurrency   int
	maxRetries    int
	httpTimeout   time.Duration
	metrics       *observability.Metrics
	logger        *log.Logger
}

// buildAdapters resolves the -sources flag into adapters in
// precedence order. Tushare is skipped with a warning when no token
// was supplied.
func buildAdapters(opts runOptions, sourceList string) ([]adapter.Adapter, error) {
	client := adapter.NewHTTPClient(adapter.WithTimeout(opts.httpTimeout))

	var adapters []adapter.Adapter
	for _, part := range strings.Split(sourceList, ",") {
		name := domain.Source(strings.TrimSpace(strings.ToLower(part)))
		if name == "" {
			continue
		}
		if !name.IsValid() {
			return nil, fmt.Errorf("unknown source %q", name)
		}
		if name == domain.SourceTushare {
			if opts.tushareToken == "" {
				opts.logger.Println("No tushare token supplied, skipping tushare")
				continue
			}
			adapters = append(adapters, adapter.NewTushare(client, opts.tushareToken))
			continue
		}
		a, err := adapter.New(name, client)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no usable sources in %q", sourceList)
	}
	return adapters, nil
}

// stores bundles the storage backends one mode needs. Close is nil-safe.
type stores struct {
	raw        storage.RawRecordStore
	profiles   storage.StockProfileStore
	events     storage.ListEventStore
	bars       storage.DailyBarStore
	checkpoint storage.CheckpointStore

	closers []func()
}

func (s *stores) Close() {
	for _, c := range s.closers {
		c()
	}
}

// buildStores connects the configured backends. With -use-memory all
// stores are in-process; otherwise PostgreSQL serves the curated and
// archive tables and ClickHouse (when a DSN is given) the bar series.
func buildStores(ctx context.Context, opts runOptions, needBars bool) (*stores, error) {
	if opts.useMemory {
		return &stores{
			raw:        memory.NewRawRecordStore(),
			profiles:   memory.NewStockProfileStore(),
			events:     memory.NewListEventStore(),
			bars:       memory.NewDailyBarStore(),
			checkpoint: memory.NewCheckpointStore(),
		}, nil
	}

	if opts.postgresDSN == "" {
		return nil, fmt.Errorf("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	pool, err := pgstore.NewPool(ctx, opts.postgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	s := &stores{
		raw:        pgstore.NewRawRecordStore(pool),
		profiles:   pgstore.NewStockProfileStore(pool),
		events:     pgstore.NewListEventStore(pool),
		checkpoint: pgstore.NewCheckpointStore(pool),
		closers:    []func(){pool.Close},
	}

	if opts.migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			s.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		opts.logger.Println("PostgreSQL migrations applied")
	}

	if needBars {
		if opts.clickhouseDSN == "" {
			s.Close()
			return nil, fmt.Errorf("--clickhouse-dsn is required for bars mode")
		}
		var conn *chstore.Conn
		if opts.migrate {
			conn, err = migrations.RunClickhouseMigrations(ctx, opts.clickhouseDSN)
			if err == nil {
				opts.logger.Println("ClickHouse migrations applied")
			}
		} else {
			conn, err = chstore.NewConn(ctx, opts.clickhouseDSN)
		}
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		s.bars = chstore.NewDailyBarStore(conn)
		s.closers = append(s.closers, func() { conn.Close() })
	}

	return s, nil
}

func buildOrchestrator(ctx context.Context, opts runOptions, sourceList string, needBars bool) (*ingest.Orchestrator, *stores, error) {
	adapters, err := buildAdapters(opts, sourceList)
	if err != nil {
		return nil, nil, err
	}

	st, err := buildStores(ctx, opts, needBars)
	if err != nil {
		return nil, nil, err
	}

	rec, err := reconcile.NewReconciler(reconcile.ProfileSchema(), opts.logger)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	orch, err := ingest.NewOrchestrator(ingest.Options{
		Adapters:        adapters,
		Reconciler:      rec,
		RawStore:        st.raw,
		ProfileStore:    st.profiles,
		ListEventStore:  st.events,
		DailyBarStore:   st.bars,
		CheckpointStore: st.checkpoint,
		Metrics:         opts.metrics,
		Logger:          opts.logger,
		Concurrency:     opts.concurrency,
		MaxRetries:      opts.maxRetries,
	})
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return orch, st, nil
}

// parseSymbols splits and validates the -symbols flag.
func parseSymbols(list string) ([]domain.Symbol, error) {
	var syms []domain.Symbol
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sym, err := domain.ParseSymbol(part)
		if err != nil {
			return nil, fmt.Errorf("parse symbol %q: %w", part, err)
		}
		syms = append(syms, sym)
	}
	if len(syms) == 0 {
		return nil, fmt.Errorf("--symbols is required")
	}
	return syms, nil
}

func runProfiles(ctx context.Context, opts runOptions, sourceList, symbolList string) error {
	syms, err := parseSymbols(symbolList)
	if err != nil {
		return err
	}

	orch, st, err := buildOrchestrator(ctx, opts, sourceList, false)
	if err != nil {
		return err
	}
	defer st.Close()

	opts.logger.Printf("Ingesting profiles for %d symbols from [%s]", len(syms), sourceList)
	summary, err := orch.IngestProfiles(ctx, syms)
	if err != nil {
		return err
	}
	logSummary(opts.logger, summary)
	return nil
}

func runBars(ctx context.Context, opts runOptions, sourceList, symbolList, start, end string) error {
	syms, err := parseSymbols(symbolList)
	if err != nil {
		return err
	}

	params := adapter.Params{}
	if start != "" {
		if _, err := time.Parse("2006-01-02", start); err != nil {
			return fmt.Errorf("parse --start: %w", err)
		}
		params[adapter.ParamStartDate] = start
	}
	if end != "" {
		if _, err := time.Parse("2006-01-02", end); err != nil {
			return fmt.Errorf("parse --end: %w", err)
		}
		params[adapter.ParamEndDate] = end
	}

	orch, st, err := buildOrchestrator(ctx, opts, sourceList, true)
	if err != nil {
		return err
	}
	defer st.Close()

	opts.logger.Printf("Ingesting daily bars for %d symbols", len(syms))
	summary, err := orch.IngestDailyBars(ctx, syms, params)
	if err != nil {
		return err
	}
	logSummary(opts.logger, summary)
	return nil
}

func runListEvents(ctx context.Context, opts runOptions, sourceList, dateList string) error {
	var tradeDates []string
	for _, part := range strings.Split(dateList, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", part); err != nil {
			return fmt.Errorf("parse --dates entry %q: %w", part, err)
		}
		tradeDates = append(tradeDates, part)
	}
	if len(tradeDates) == 0 {
		// Default to the most recent weekday.
		tradeDates = []string{lastWeekday(time.Now()).Format("2006-01-02")}
	}

	orch, st, err := buildOrchestrator(ctx, opts, sourceList, false)
	if err != nil {
		return err
	}
	defer st.Close()

	opts.logger.Printf("Ingesting Dragon-Tiger lists for %v", tradeDates)
	summary, err := orch.IngestListEvents(ctx, tradeDates)
	if err != nil {
		return err
	}
	logSummary(opts.logger, summary)
	return nil
}

// lastWeekday returns t's date, stepped back past Saturday and Sunday.
// Exchange holidays still yield an empty (successful) run.
func lastWeekday(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

func logSummary(logger *log.Logger, s *ingest.RunSummary) {
	logger.Printf("Run complete: %d/%d entities ok, %d raw archived, %d created, %d updated, %d bars in %v",
		s.Succeeded, s.Total, s.RawArchived, s.Created, s.Updated, s.Bars, s.Duration)
	for _, e := range s.Errors {
		logger.Printf("  error: %s %s [%s]: %s", e.Source, e.Symbol, e.Stage, e.Message)
	}
}
