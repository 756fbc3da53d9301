package ai

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchOutcome is the per-input result of a batch run: exactly one of Result
// or Err is set.
type BatchOutcome struct {
	Result *SummaryResult
	Err    error
}

// SummarizeBatch fans requests through the orchestrator with bounded
// concurrency. One outcome per input, in input order; a failing request
// never aborts its siblings.
func (s *Service) SummarizeBatch(ctx context.Context, requests []SummaryRequest, concurrency int) []BatchOutcome {
	if concurrency < 1 {
		concurrency = 1
	}

	outcomes := make([]BatchOutcome, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, req := range requests {
		g.Go(func() error {
			res, err := s.Summarize(gctx, req)
			if err != nil {
				outcomes[i] = BatchOutcome{Err: err}
				return nil // partial failure is expected
			}
			outcomes[i] = BatchOutcome{Result: res}
			return nil
		})
	}

	// Workers never return errors; Wait only orders the outcome writes.
	_ = g.Wait()
	return outcomes
}
