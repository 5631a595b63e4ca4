package pipeline

import (
	"context"
	"runtime"
	"sync"
)

// workItem holds one independent group of input for a worker.
type workItem[In any] struct {
	Seq   int
	Input In
}

// workResult holds a worker's output for one group.
type workResult[Out any] struct {
	Seq    int
	Output Out
}

// parallelGroups applies fn to every group using a pool of workers and
// returns the outputs in group order. If workers is 0, runtime.NumCPU()
// is used. Cancellation of ctx stops the feeding of new groups.
func parallelGroups[In, Out any](ctx context.Context, groups []In, workers int, fn func(In) Out) ([]Out, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, max(len(groups), 1))

	items := make(chan workItem[In], 2*workers)
	results := make(chan workResult[Out], 2*workers)

	go func() {
		defer close(items)
		for i, g := range groups {
			select {
			case items <- workItem[In]{Seq: i, Input: g}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				results <- workResult[Out]{Seq: item.Seq, Output: fn(item.Input)}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]Out, 0, len(groups))
	err := orderedCollect(results, func(r workResult[Out]) error {
		out = append(out, r.Output)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// orderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func orderedCollect[Out any](results <-chan workResult[Out], fn func(workResult[Out]) error) error {
	pending := make(map[int]workResult[Out])
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
