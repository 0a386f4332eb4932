package sim

import (
	"context"
	"sync"
)

// RunAll runs the same targets on several independent simulators at once.
// Each simulator owns its controller, so no state is shared between runs.
func RunAll(ctx context.Context, sims []*Simulator, targets []Target, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(sims))
	errs := make([]error, len(sims))

	var wg sync.WaitGroup
	for i, s := range sims {
		wg.Add(1)
		go func(idx int, s *Simulator) {
			defer wg.Done()
			results[idx], errs[idx] = s.Run(ctx, targets, cfg)
		}(i, s)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}

	return results, nil
}
