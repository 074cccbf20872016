package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/a11yctl/a11yctl/internal/checker"
	"github.com/a11yctl/a11yctl/internal/model"
)

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })
		if bp.concurrency != 4 {
			t.Errorf("expected default concurrency 4, got %d", bp.concurrency)
		}
		if bp.limiter != nil {
			t.Error("expected no limiter by default")
		}
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(
			func() *Pipeline { return New() },
			WithConcurrency(8),
			WithLaunchInterval(10*time.Millisecond),
		)
		if bp.concurrency != 8 {
			t.Errorf("expected concurrency 8, got %d", bp.concurrency)
		}
		if bp.limiter == nil {
			t.Error("expected limiter configured")
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(0))
		if bp.concurrency != 4 {
			t.Errorf("expected concurrency 4, got %d", bp.concurrency)
		}
	})
}

// TestBatchProcessorProcess tests concurrent checking with order preservation.
func TestBatchProcessorProcess(t *testing.T) {
	t.Parallel()

	t.Run("results preserve input order despite uneven latency", func(t *testing.T) {
		t.Parallel()

		// The first URL is the slowest; without index-addressed result
		// storage it would land last.
		delays := map[string]time.Duration{
			"https://a.edu/1": 60 * time.Millisecond,
			"https://a.edu/2": 5 * time.Millisecond,
			"https://a.edu/3": 20 * time.Millisecond,
		}

		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: "sleep", doFunc: func(ctx context.Context, r *model.CheckResult) error {
				select {
				case <-time.After(delays[r.URL]):
				case <-ctx.Done():
				}
				return nil
			}})
			return p
		}, WithConcurrency(3))

		urls := []string{"https://a.edu/1", "https://a.edu/2", "https://a.edu/3"}
		results, err := bp.Process(context.Background(), urls)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		for i, u := range urls {
			if results[i].URL != u {
				t.Errorf("result %d: got %s, expected %s", i, results[i].URL, u)
			}
		}
	})

	t.Run("one failure does not abort the batch", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{
			issues: map[string][]model.Issue{
				"https://a.edu/1": {
					{Severity: model.SeverityError, Message: "e1"},
					{Severity: model.SeverityError, Message: "e2"},
					{Severity: model.SeverityError, Message: "e3"},
				},
			},
			errs: map[string]error{
				"https://a.edu/2": errors.New("checker timed out"),
			},
		}

		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(NewCheckStep(runner, checker.Options{}, time.Second))
			return p
		})

		results, err := bp.Process(context.Background(), []string{"https://a.edu/1", "https://a.edu/2"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if results[0].Failed || results[0].IssueCount() != 3 {
			t.Errorf("unexpected first result: %+v", results[0])
		}
		if !results[1].Failed {
			t.Error("expected second result flagged as failed")
		}

		// The exported table has 3 issue rows plus 1 failure row.
		table := model.BuildResultsTable(results)
		if len(table.Rows) != 4 {
			t.Errorf("expected 4 rows, got %d", len(table.Rows))
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32

		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: "track", doFunc: func(_ context.Context, _ *model.CheckResult) error {
				n := current.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				current.Add(-1)
				return nil
			}})
			return p
		}, WithConcurrency(2))

		urls := []string{"u1.edu", "u2.edu", "u3.edu", "u4.edu", "u5.edu", "u6.edu"}
		if _, err := bp.Process(context.Background(), urls); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("concurrency limit exceeded: peak %d", peak.Load())
		}
	})

	t.Run("cancellation yields flagged results for unstarted URLs", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: "slow", doFunc: func(c context.Context, _ *model.CheckResult) error {
				cancel()
				<-c.Done()
				return nil
			}})
			return p
		}, WithConcurrency(1))

		urls := []string{"https://a.edu/1", "https://a.edu/2", "https://a.edu/3"}
		results, err := bp.Process(ctx, urls)
		if err == nil {
			t.Error("expected cancellation error")
		}
		if len(results) != len(urls) {
			t.Fatalf("expected %d results, got %d", len(urls), len(results))
		}
		for i, r := range results {
			if r == nil {
				t.Fatalf("result %d is nil", i)
			}
			if r.URL != urls[i] {
				t.Errorf("result %d: got %s, expected %s", i, r.URL, urls[i])
			}
		}
		failed := 0
		for _, r := range results {
			if r.Failed {
				failed++
			}
		}
		if failed == 0 {
			t.Error("expected at least one flagged result after cancellation")
		}
	})

	t.Run("empty url list", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })
		results, err := bp.Process(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("expected no results, got %d", len(results))
		}
	})
}
