package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/storage"
	pgstore "github.com/yuniezzx/MarketSeer/internal/storage/postgres"
)

// rawadmin inspects the append-only raw archive and the per-endpoint
// checkpoints without touching curated tables. The archive is the
// replay substrate: when a parser bug is found, the fix re-reads from
// here instead of re-fetching from the provider.
func main() {
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	mode := flag.String("mode", "counts", "Operation: counts, records, payload, checkpoints, or resetseq")
	symbol := flag.String("symbol", "", "Plain stock code, e.g. 002104 (records mode)")
	source := flag.String("source", "", "Provider name (records mode)")
	endpoint := flag.String("endpoint", "", "Logical endpoint name (records mode)")
	id := flag.Int64("id", 0, "Raw record ID (payload mode)")
	flag.Parse()

	if *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required")
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	rawStore := pgstore.NewRawRecordStore(pool)
	checkpointStore := pgstore.NewCheckpointStore(pool)

	switch *mode {
	case "counts":
		err = showCounts(ctx, rawStore)
	case "records":
		err = showRecords(ctx, rawStore, *symbol, *source, *endpoint)
	case "payload":
		err = showPayload(ctx, rawStore, *id)
	case "checkpoints":
		err = showCheckpoints(ctx, checkpointStore)
	case "resetseq":
		if err = rawStore.ResetSequence(ctx); err == nil {
			fmt.Println("raw record sequence realigned")
		}
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func showCounts(ctx context.Context, store storage.RawRecordStore) error {
	counts, err := store.CountBySource(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tRECORDS")
	for _, src := range domain.AllSources() {
		if n, ok := counts[src]; ok {
			fmt.Fprintf(w, "%s\t%d\n", src, n)
		}
	}
	return w.Flush()
}

func showRecords(ctx context.Context, store storage.RawRecordStore, symbol, source, endpoint string) error {
	if symbol == "" || source == "" || endpoint == "" {
		return fmt.Errorf("--symbol, --source and --endpoint are required for records mode")
	}
	src := domain.Source(strings.ToLower(source))
	if !src.IsValid() {
		return fmt.Errorf("unknown source %q", source)
	}

	records, err := store.GetBySymbolSourceEndpoint(ctx, symbol, src, endpoint)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYMBOL\tSOURCE\tENDPOINT\tKIND\tFETCHED\tBYTES")
	for _, r := range records {
		sym := "-"
		if r.Symbol != nil {
			sym = *r.Symbol
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
			r.ID, sym, r.Source, r.Endpoint, r.Kind,
			r.FetchedAt.Format("2006-01-02 15:04:05"), len(r.Payload))
	}
	return w.Flush()
}

// showPayload prints one archived payload byte-for-byte as it arrived
// from the provider.
func showPayload(ctx context.Context, store storage.RawRecordStore, id int64) error {
	if id <= 0 {
		return fmt.Errorf("--id is required for payload mode")
	}
	r, err := store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("raw record %d not found", id)
		}
		return err
	}
	fmt.Println(r.Payload)
	return nil
}

func showCheckpoints(ctx context.Context, store storage.CheckpointStore) error {
	checkpoints, err := store.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENDPOINT\tLAST FETCHED\tPARAMS")
	for _, c := range checkpoints {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			c.Endpoint, c.LastFetchedAt.Format("2006-01-02 15:04:05"), c.Params)
	}
	return w.Flush()
}
