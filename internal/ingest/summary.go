package ingest

import (
	"sync"
	"time"

	"github.com/yuniezzx/MarketSeer/internal/domain"
)

// Stage names the pipeline step an error occurred in.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageArchive   Stage = "archive"
	StageReconcile Stage = "reconcile"
	StageUpsert    Stage = "upsert"
)

// RunError is one contained failure: a (entity, source) pair that
// could not complete a stage. It never aborts the run.
type RunError struct {
	Symbol  string
	Source  domain.Source
	Stage   Stage
	Message string
}

// RunSummary reports what one ingest run did.
type RunSummary struct {
	Kind      domain.EndpointKind
	Total     int // entities attempted
	Succeeded int
	Failed    int

	RawArchived int // payloads appended to the archive
	Created     int // records inserted for the first time
	Updated     int // records refreshed in place
	Bars        int // daily bars written

	Errors   []RunError
	Duration time.Duration
}

// Failures reports whether any entity failed.
func (s *RunSummary) Failures() bool {
	return s.Failed > 0
}

// collector accumulates a RunSummary from concurrent workers, plus
// the per-endpoint archive high-water marks used to advance
// checkpoints after the run.
type collector struct {
	mu      sync.Mutex
	summary RunSummary

	// endpoint -> newest FetchedAt among successfully archived
	// payloads. Only endpoints present here get their checkpoint
	// advanced.
	endpointMarks map[string]time.Time
}

func newCollector(kind domain.EndpointKind) *collector {
	return &collector{
		summary:       RunSummary{Kind: kind},
		endpointMarks: make(map[string]time.Time),
	}
}

func (c *collector) addError(e RunError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary.Errors = append(c.summary.Errors, e)
}

func (c *collector) entityDone(succeeded bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary.Total++
	if succeeded {
		c.summary.Succeeded++
	} else {
		c.summary.Failed++
	}
}

func (c *collector) archived(endpoint string, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary.RawArchived++
	if fetchedAt.After(c.endpointMarks[endpoint]) {
		c.endpointMarks[endpoint] = fetchedAt
	}
}

func (c *collector) upserted(created bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if created {
		c.summary.Created++
	} else {
		c.summary.Updated++
	}
}

func (c *collector) addBars(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary.Bars += n
}

func (c *collector) finish(start time.Time) *RunSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary.Duration = time.Since(start)
	s := c.summary
	return &s
}

func (c *collector) marks() map[string]time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := make(map[string]time.Time, len(c.endpointMarks))
	for k, v := range c.endpointMarks {
		m[k] = v
	}
	return m
}
