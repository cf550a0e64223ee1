package optimizer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SolveBatch solves every request in parallel, bounded by the solver's worker count.
// Requests share no state, so results are identical to solving them one by one.
//
// Postcondition: On success, results[i] is the result of reqs[i]. The first
// error cancels the remaining requests.
func (s *Solver) SolveBatch(ctx context.Context, reqs []Request) ([]*Result, error) {
	results := make([]*Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := s.Solve(gctx, req)
			if err != nil {
				return fmt.Errorf("request %d (%s): %w", i, req.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.logger.Info("batch solved", zap.Int("requests", len(reqs)), zap.Int("workers", s.workers))
	return results, nil
}
