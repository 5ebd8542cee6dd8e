package evo

import (
	"context"
	"sync"
)

// forEach runs fn for every index in [0, n) on up to workers goroutines and
// returns the error of the lowest failing index.
func forEach(ctx context.Context, workers, n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	type result struct {
		idx int
		err error
	}

	jobs := make(chan int)
	results := make(chan result, n)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: idx, err: err}
					continue
				}
				results <- result{idx: idx, err: fn(idx)}
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(results)

	firstIdx := n
	var firstErr error
	for res := range results {
		if res.err != nil && res.idx < firstIdx {
			firstIdx = res.idx
			firstErr = res.err
		}
	}
	return firstErr
}
