// Package processor runs civic analyses in bulk with a bounded worker pool.
package processor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/domain"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/logger"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/telemetry"
)

const defaultConcurrency = 4

// Analyzer is the single-request pipeline the batch fans out to.
type Analyzer interface {
	Analyze(ctx context.Context, req *domain.Request) *domain.Response
}

type job struct {
	index int
	req   *domain.Request
}

type result struct {
	index int
	resp  *domain.Response
}

// BatchProcessor analyzes many requests in parallel and returns the
// responses in input order.
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	telemetry   *telemetry.Provider
	logger      logger.Logger
	active      atomic.Int64
}

// NewBatchProcessor creates a batch processor. Non-positive concurrency
// falls back to the default.
func NewBatchProcessor(
	a Analyzer, concurrency int, tp *telemetry.Provider, log logger.Logger,
) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &BatchProcessor{
		analyzer:    a,
		concurrency: concurrency,
		telemetry:   tp,
		logger:      log,
	}
}

// Concurrency returns the worker count.
func (b *BatchProcessor) Concurrency() int {
	return b.concurrency
}

// Process analyzes every request. The returned slice is index-aligned with
// reqs. When ctx is cancelled the requests not yet started are left nil and
// ctx.Err() is returned alongside the partial results.
func (b *BatchProcessor) Process(ctx context.Context, reqs []*domain.Request) ([]*domain.Response, error) {
	if len(reqs) == 0 {
		return []*domain.Response{}, nil
	}

	b.telemetry.RecordBatchSize(len(reqs))
	b.logger.Info("Starting batch processing",
		logger.Int("batch_size", len(reqs)),
		logger.Int("concurrency", b.concurrency))
	start := time.Now()

	workers := min(b.concurrency, len(reqs))
	jobs := make(chan job, len(reqs))
	results := make(chan result, len(reqs))

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go b.worker(ctx, i, jobs, results, &wg)
	}

	for i, req := range reqs {
		jobs <- job{index: i, req: req}
	}
	close(jobs)

	wg.Wait()
	close(results)

	out := make([]*domain.Response, len(reqs))
	succeeded, failed := 0, 0
	for r := range results {
		out[r.index] = r.resp
		if r.resp.Success {
			succeeded++
		} else {
			failed++
		}
	}

	duration := time.Since(start)
	b.logger.Info("Batch processing complete",
		logger.Int("total", len(reqs)),
		logger.Int("success", succeeded),
		logger.Int("fallback", failed),
		logger.Int("skipped", len(reqs)-succeeded-failed),
		logger.Duration("duration", duration))

	return out, ctx.Err()
}

func (b *BatchProcessor) worker(
	ctx context.Context,
	id int,
	jobs <-chan job,
	results chan<- result,
	wg *sync.WaitGroup,
) {
	defer wg.Done()
	b.logger.Debug("Worker started", logger.Int("worker_id", id))

	for j := range jobs {
		if ctx.Err() != nil {
			b.logger.Warn("Worker stopping due to context cancellation", logger.Int("worker_id", id))
			return
		}

		b.telemetry.SetActiveWorkers(int(b.active.Add(1)))
		resp := b.analyzer.Analyze(ctx, j.req)
		b.telemetry.SetActiveWorkers(int(b.active.Add(-1)))

		results <- result{index: j.index, resp: resp}
	}

	b.logger.Debug("Worker finished", logger.Int("worker_id", id))
}
