package evaldriver

import (
	"context"
	"sync"
)

// runPool invokes fn(ctx, i) for i in [0, n) with at most maxWorkers
// goroutines in flight. Once ctx is done, remaining indices are still
// dispatched so fn can record their cancelled state, but they observe the
// expired context and return immediately.
func runPool(ctx context.Context, maxWorkers, n int, fn func(ctx context.Context, i int)) {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxWorkers)

	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(ctx, i)
		}(i)
	}
	wg.Wait()
}
