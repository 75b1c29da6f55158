package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/user/email-finder/internal/domain"
)

// Coordinator fans a batch of candidate URLs out over a bounded worker pool.
type Coordinator struct {
	processor *Processor
	workers   int
	logger    *zap.Logger
}

func NewCoordinator(p *Processor, workers int, l *zap.Logger) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	return &Coordinator{processor: p, workers: workers, logger: l}
}

// Run processes every candidate URL with a fresh per-run visited set and
// returns one SiteResult per unique homepage, in completion order. The batch
// always finishes: unreachable sites yield results with no email, duplicates
// yield nothing.
func (c *Coordinator) Run(ctx context.Context, urls []string) []domain.SiteResult {
	return c.RunWithVisited(ctx, urls, NewMemoryVisited())
}

// RunWithVisited is Run with a caller-owned visited set, letting service mode
// share a Redis-backed store across batches.
func (c *Coordinator) RunWithVisited(ctx context.Context, urls []string, visited Visited) []domain.SiteResult {
	tasks := make(chan string)
	results := make(chan domain.SiteResult)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rawURL := range tasks {
				if res, ok := c.processor.ProcessSite(ctx, rawURL, visited); ok {
					results <- res
				}
			}
		}()
	}

	go func() {
		defer close(tasks)
		for _, u := range urls {
			select {
			case tasks <- u:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]domain.SiteResult, 0, len(urls))
	for res := range results {
		out = append(out, res)
	}

	c.logger.Info("batch complete",
		zap.Int("candidates", len(urls)),
		zap.Int("processed", len(out)))
	return out
}
