package evaluator

import (
	"context"
	"sync"

	"github.com/sandrolain/gorebol/pkg/types"
)

// EvalMany evaluates each script in its own user frame and returns the
// results in input order. With Concurrency enabled the scripts run in
// parallel, one goroutine each; otherwise they run one after another.
func (e *Evaluator) EvalMany(ctx context.Context, scripts []*types.Script) ([]types.Value, []error) {
	results := make([]types.Value, len(scripts))
	errs := make([]error, len(scripts))

	if !e.opts.Concurrency {
		for i, script := range scripts {
			results[i], errs[i] = e.Eval(ctx, script)
		}
		return results, errs
	}

	var wg sync.WaitGroup
	for i, script := range scripts {
		wg.Go(func() {
			results[i], errs[i] = e.Eval(ctx, script)
		})
	}
	wg.Wait()
	return results, errs
}
