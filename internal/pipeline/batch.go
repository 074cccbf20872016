package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/a11yctl/a11yctl/internal/model"
)

// BatchProcessor handles concurrent checking of multiple URLs.
// It uses errgroup to manage goroutines and respect concurrency limits,
// and an optional rate limiter to space out checker process launches.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because it keeps the Pipeline focused on
// single-URL execution and provides cleaner separation of concerns.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each URL so pipeline
	// state never leaks between checks.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent checks.
	concurrency int

	// limiter spaces out checker launches. Nil means unlimited.
	limiter *rate.Limiter

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed check results by input index.
	// Access is synchronized via mutex.
	results []*model.CheckResult
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent checks.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithLaunchInterval enforces a minimum spacing between checker process
// launches. Zero disables spacing.
func WithLaunchInterval(d time.Duration) BatchOption {
	return func(b *BatchProcessor) {
		if d > 0 {
			b.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
// The pipelineFactory function is called once per URL.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// Process checks all URLs concurrently and returns one result per URL in
// the input order. Workers complete out of order, but each writes into
// the slot matching its input index, so the returned slice preserves the
// ingestion order and repeated runs on identical checker output produce
// identical tables.
//
// Cancellation stops new launches; in-flight checker processes are killed
// through their per-URL contexts. URLs that never started are returned as
// failed results, so the output slice always has one entry per input URL.
func (bp *BatchProcessor) Process(ctx context.Context, urls []string) ([]*model.CheckResult, error) {
	bp.logger.Info("starting batch",
		"total_urls", len(urls),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	bp.results = make([]*model.CheckResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			// Stop launching once the batch is cancelled.
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if bp.limiter != nil {
				if err := bp.limiter.Wait(gctx); err != nil {
					return err
				}
			}

			bp.logger.Info("checking url",
				"url", u,
				"index", i+1,
				"total", len(urls),
			)

			result := model.NewCheckResult(u)
			// Execute records per-URL failures in the result, so the
			// returned error only reflects cancellation; either way the
			// result is stored and the batch continues.
			_ = bp.pipelineFactory().Execute(gctx, result) //nolint:errcheck // Error is stored in result

			bp.mu.Lock()
			bp.results[i] = result
			bp.mu.Unlock()

			return nil
		})
	}

	err := g.Wait()

	// Fill slots for URLs that were never started so the output stays
	// aligned with the input.
	bp.mu.Lock()
	for i, r := range bp.results {
		if r == nil {
			cancelled := model.NewCheckResult(urls[i])
			cancelled.Fail("cancelled before start")
			bp.results[i] = cancelled
		}
	}
	results := bp.results
	bp.mu.Unlock()

	bp.logger.Info("batch complete",
		"total_urls", len(urls),
		"elapsed", time.Since(startTime),
	)

	return results, err
}
