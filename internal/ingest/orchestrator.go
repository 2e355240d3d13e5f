// Package ingest coordinates the fetch → archive → reconcile →
// upsert pipeline across the configured source adapters. Failures are
// contained per (entity, source): a provider outage degrades the data
// for the affected entities and never aborts the run.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yuniezzx/MarketSeer/internal/adapter"
	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/observability"
	"github.com/yuniezzx/MarketSeer/internal/reconcile"
	"github.com/yuniezzx/MarketSeer/internal/storage"
)

const (
	defaultConcurrency = 4
	defaultMaxRetries  = 3
	defaultRetryBase   = 500 * time.Millisecond
)

// Orchestrator runs ingest cycles against the configured adapters
// and stores.
type Orchestrator struct {
	adapters   []adapter.Adapter
	reconciler *reconcile.Reconciler

	rawStore        storage.RawRecordStore
	profileStore    storage.StockProfileStore
	listEventStore  storage.ListEventStore
	dailyBarStore   storage.DailyBarStore
	checkpointStore storage.CheckpointStore

	metrics *observability.Metrics
	logger  *log.Logger

	concurrency int
	maxRetries  int
	retryBase   time.Duration
}

// Options contains configuration for creating an Orchestrator.
type Options struct {
	// Adapters in precedence order; earlier sources win ties during
	// reconciliation and are consulted first for bars and list events.
	Adapters   []adapter.Adapter
	Reconciler *reconcile.Reconciler

	RawStore        storage.RawRecordStore
	ProfileStore    storage.StockProfileStore
	ListEventStore  storage.ListEventStore
	DailyBarStore   storage.DailyBarStore
	CheckpointStore storage.CheckpointStore

	Metrics *observability.Metrics // optional
	Logger  *log.Logger            // optional

	Concurrency int           // parallel entities, default 4
	MaxRetries  int           // retries after the first attempt, default 3
	RetryBase   time.Duration // first backoff delay, default 500ms
}

// NewOrchestrator validates the options and creates the orchestrator.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if len(opts.Adapters) == 0 {
		return nil, fmt.Errorf("at least one adapter required")
	}
	if opts.RawStore == nil {
		return nil, fmt.Errorf("raw record store required")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = defaultRetryBase
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Orchestrator{
		adapters:        opts.Adapters,
		reconciler:      opts.Reconciler,
		rawStore:        opts.RawStore,
		profileStore:    opts.ProfileStore,
		listEventStore:  opts.ListEventStore,
		dailyBarStore:   opts.DailyBarStore,
		checkpointStore: opts.CheckpointStore,
		metrics:         opts.Metrics,
		logger:          opts.Logger,
		concurrency:     opts.Concurrency,
		maxRetries:      opts.MaxRetries,
		retryBase:       opts.RetryBase,
	}, nil
}

// IngestProfiles runs the metadata pipeline for the given symbols:
// every adapter is consulted per symbol, everything fetched is
// archived verbatim, then the tables are reconciled into one patch
// and upserted. A source failing for one symbol neither stops the
// other sources for that symbol nor the other symbols.
func (o *Orchestrator) IngestProfiles(ctx context.Context, symbols []domain.Symbol) (*RunSummary, error) {
	if o.profileStore == nil {
		return nil, fmt.Errorf("profile store not configured")
	}
	if o.reconciler == nil {
		return nil, fmt.Errorf("reconciler not configured")
	}

	start := time.Now()
	col := newCollector(domain.EndpointMetadata)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, sym := range symbols {
		g.Go(func() error {
			o.ingestProfile(gctx, sym, col)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return col.finish(start), err
	}

	o.advanceCheckpoints(ctx, col, nil)
	summary := col.finish(start)
	o.recordRun("profiles", summary)
	return summary, nil
}

func (o *Orchestrator) ingestProfile(ctx context.Context, sym domain.Symbol, col *collector) {
	var tables []*adapter.Table

	for _, a := range o.adapters {
		got, err := o.fetchAndArchive(ctx, a, sym, domain.EndpointMetadata, nil, col)
		tables = append(tables, got...)
		if err != nil {
			col.addError(RunError{Symbol: sym.String(), Source: a.Source(), Stage: StageFetch, Message: err.Error()})
			o.logger.Printf("ingest %s: source %s failed: %v", sym, a.Source(), err)
		}
	}

	if len(tables) == 0 {
		col.entityDone(false)
		o.countEntity(false)
		return
	}

	patch, err := o.reconciler.Reconcile(sym, tables)
	if err != nil {
		col.addError(RunError{Symbol: sym.String(), Stage: StageReconcile, Message: err.Error()})
		col.entityDone(false)
		o.countEntity(false)
		return
	}

	outcome, err := o.profileStore.Upsert(ctx, patch)
	if err != nil {
		col.addError(RunError{Symbol: sym.String(), Stage: StageUpsert, Message: err.Error()})
		col.entityDone(false)
		o.countEntity(false)
		return
	}

	col.upserted(outcome == storage.OutcomeCreated)
	if o.metrics != nil {
		o.metrics.ProfilesUpserted.WithLabelValues(string(outcome)).Inc()
	}
	col.entityDone(true)
	o.countEntity(true)
}

// IngestDailyBars pulls OHLCV history for the given symbols. Sources
// are tried in precedence order; the first one that returns bars for
// a symbol wins, the rest are skipped for that symbol.
func (o *Orchestrator) IngestDailyBars(ctx context.Context, symbols []domain.Symbol, params adapter.Params) (*RunSummary, error) {
	if o.dailyBarStore == nil {
		return nil, fmt.Errorf("daily bar store not configured")
	}

	start := time.Now()
	col := newCollector(domain.EndpointDaily)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, sym := range symbols {
		g.Go(func() error {
			o.ingestDaily(gctx, sym, params, col)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return col.finish(start), err
	}

	o.advanceCheckpoints(ctx, col, params)
	summary := col.finish(start)
	o.recordRun("bars", summary)
	return summary, nil
}

func (o *Orchestrator) ingestDaily(ctx context.Context, sym domain.Symbol, params adapter.Params, col *collector) {
	answered := false

	for _, a := range o.adapters {
		tables, err := o.fetchAndArchive(ctx, a, sym, domain.EndpointDaily, params, col)
		if err != nil {
			col.addError(RunError{Symbol: sym.String(), Source: a.Source(), Stage: StageFetch, Message: err.Error()})
			o.logger.Printf("ingest bars %s: source %s failed: %v", sym, a.Source(), err)
			continue
		}
		answered = true

		bars := o.convertBars(sym, tables, col)
		if len(bars) == 0 {
			continue // empty result, try the next source
		}

		if err := o.dailyBarStore.InsertBulk(ctx, bars); err != nil {
			col.addError(RunError{Symbol: sym.String(), Source: a.Source(), Stage: StageUpsert, Message: err.Error()})
			col.entityDone(false)
			o.countEntity(false)
			return
		}

		col.addBars(len(bars))
		if o.metrics != nil {
			o.metrics.BarsIngested.Add(float64(len(bars)))
		}
		col.entityDone(true)
		o.countEntity(true)
		return
	}

	// No source produced bars. If at least one answered, the empty
	// history is a valid result, not a failure; every fully failed
	// source already left its RunError.
	col.entityDone(answered)
	o.countEntity(answered)
}

// IngestListEvents pulls the Dragon-Tiger disclosures for the given
// trade dates. Sources are tried in precedence order per date.
func (o *Orchestrator) IngestListEvents(ctx context.Context, dates []string) (*RunSummary, error) {
	if o.listEventStore == nil {
		return nil, fmt.Errorf("list event store not configured")
	}

	start := time.Now()
	col := newCollector(domain.EndpointListEvent)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, date := range dates {
		g.Go(func() error {
			o.ingestListEvents(gctx, date, col)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return col.finish(start), err
	}

	o.advanceCheckpoints(ctx, col, nil)
	summary := col.finish(start)
	o.recordRun("listevents", summary)
	return summary, nil
}

func (o *Orchestrator) ingestListEvents(ctx context.Context, date string, col *collector) {
	params := adapter.Params{adapter.ParamTradeDate: date}

	for _, a := range o.adapters {
		tables, err := o.fetchAndArchive(ctx, a, domain.Symbol{}, domain.EndpointListEvent, params, col)
		if err != nil {
			col.addError(RunError{Symbol: date, Source: a.Source(), Stage: StageFetch, Message: err.Error()})
			o.logger.Printf("ingest list events %s: source %s failed: %v", date, a.Source(), err)
			continue
		}

		events := o.convertListEvents(a.Source(), date, tables, col)
		if len(events) == 0 {
			continue
		}

		ok := true
		for _, e := range events {
			outcome, err := o.listEventStore.Upsert(ctx, e)
			if err != nil {
				col.addError(RunError{Symbol: e.Code, Source: a.Source(), Stage: StageUpsert, Message: err.Error()})
				ok = false
				continue
			}
			col.upserted(outcome == storage.OutcomeCreated)
			if o.metrics != nil {
				o.metrics.ListEventsUpserted.WithLabelValues(string(outcome)).Inc()
			}
		}

		col.entityDone(ok)
		o.countEntity(ok)
		return
	}

	// No source produced events. An empty list day is still success:
	// the providers answered, there was nothing disclosed.
	col.entityDone(true)
	o.countEntity(true)
}

// fetchAndArchive fetches one capability from one adapter with
// bounded retry on transient failures, archiving every table that
// arrives regardless of the overall outcome. The archive happens
// before any downstream processing: a payload that was received is
// never lost to a later parse or store failure.
func (o *Orchestrator) fetchAndArchive(ctx context.Context, a adapter.Adapter, sym domain.Symbol, kind domain.EndpointKind, params adapter.Params, col *collector) ([]*adapter.Table, error) {
	delay := o.retryBase
	archivedKeys := make(map[string]bool)
	var tables []*adapter.Table

	for attempt := 0; ; attempt++ {
		fetchStart := time.Now()
		got, err := a.Fetch(ctx, sym, kind, params)
		if o.metrics != nil {
			o.metrics.FetchLatency.WithLabelValues(string(a.Source())).Observe(time.Since(fetchStart).Seconds())
		}

		for _, t := range got {
			// Endpoints that already archived a parsed payload on an
			// earlier attempt are not re-archived within one fetch
			// cycle. Row-less tables (error bodies, empty answers) are
			// archived but never marked, so a later attempt's parsed
			// payload still reaches the archive.
			if archivedKeys[t.Endpoint] {
				continue
			}
			if archiveErr := o.archive(ctx, sym, t, col); archiveErr != nil {
				col.addError(RunError{Symbol: sym.String(), Source: a.Source(), Stage: StageArchive, Message: archiveErr.Error()})
				continue
			}
			if len(t.Rows) > 0 {
				archivedKeys[t.Endpoint] = true
			}
			tables = append(tables, t)
		}

		if err == nil {
			o.countFetch(a.Source(), kind, "success")
			return tables, nil
		}

		if !adapter.IsTransient(err) || attempt >= o.maxRetries {
			o.countFetch(a.Source(), kind, "failure")
			if o.metrics != nil {
				kindLabel := "permanent"
				if adapter.IsTransient(err) {
					kindLabel = "transient"
				}
				o.metrics.FetchFailures.WithLabelValues(string(a.Source()), kindLabel).Inc()
			}
			return tables, err
		}

		if o.metrics != nil {
			o.metrics.FetchRetries.WithLabelValues(string(a.Source()), string(kind)).Inc()
		}
		o.logger.Printf("ingest %s: source %s transient failure, retry %d/%d in %s: %v",
			sym, a.Source(), attempt+1, o.maxRetries, delay, err)

		select {
		case <-ctx.Done():
			return tables, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// archive appends one table's verbatim payload to the raw store.
func (o *Orchestrator) archive(ctx context.Context, sym domain.Symbol, t *adapter.Table, col *collector) error {
	fetchedAt := t.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	rec := &domain.RawRecord{
		Source:    t.Source,
		Endpoint:  t.Endpoint,
		Kind:      t.Kind,
		Payload:   t.Raw,
		FetchedAt: fetchedAt,
	}
	if sym.Code != "" {
		code := sym.Code
		rec.Symbol = &code
	}

	if err := o.rawStore.Insert(ctx, rec); err != nil {
		return fmt.Errorf("archive %s/%s: %w", t.Source, t.Endpoint, err)
	}

	col.archived(t.Endpoint, fetchedAt)
	if o.metrics != nil {
		o.metrics.RawRecordsArchived.WithLabelValues(string(t.Source)).Inc()
	}
	return nil
}

// advanceCheckpoints persists the per-endpoint high-water marks. Only
// endpoints that archived at least one payload this run move; a fully
// failed endpoint keeps its previous mark so the next run re-covers
// the gap.
func (o *Orchestrator) advanceCheckpoints(ctx context.Context, col *collector, params adapter.Params) {
	if o.checkpointStore == nil {
		return
	}

	paramsJSON := "{}"
	if len(params) > 0 {
		if b, err := json.Marshal(params); err == nil {
			paramsJSON = string(b)
		}
	}

	for endpoint, mark := range col.marks() {
		cp := &domain.IngestCheckpoint{
			Endpoint:      endpoint,
			LastFetchedAt: mark,
			Params:        paramsJSON,
		}
		if err := o.checkpointStore.Save(ctx, cp); err != nil {
			o.logger.Printf("ingest: save checkpoint %s: %v", endpoint, err)
		}
	}
}

func (o *Orchestrator) countFetch(source domain.Source, kind domain.EndpointKind, outcome string) {
	if o.metrics != nil {
		o.metrics.FetchesTotal.WithLabelValues(string(source), string(kind), outcome).Inc()
	}
}

func (o *Orchestrator) countEntity(succeeded bool) {
	if o.metrics == nil {
		return
	}
	if succeeded {
		o.metrics.EntitiesSucceeded.Inc()
	} else {
		o.metrics.EntitiesFailed.Inc()
	}
}

func (o *Orchestrator) recordRun(kind string, s *RunSummary) {
	o.logger.Printf("ingest %s: %d entities, %d ok, %d failed, %d archived, %d created, %d updated in %s",
		kind, s.Total, s.Succeeded, s.Failed, s.RawArchived, s.Created, s.Updated, s.Duration.Round(time.Millisecond))
	if o.metrics == nil {
		return
	}
	o.metrics.RunsTotal.WithLabelValues(kind).Inc()
	o.metrics.RunDuration.WithLabelValues(kind).Observe(s.Duration.Seconds())
	if s.Failed == 0 {
		o.metrics.LastSuccessfulRun.SetToCurrentTime()
	}
}
