package util

import (
	"context"
	"sync"

	"golang.org/x/exp/constraints"
)

type indexedItem[K any] struct {
	index int
	item  K
}

// ProcessItemsWithThreadPool calls processFunc for every item, running at most maxThreadCount calls at once, and
// returns once every worker has finished. processFunc receives the position of the item in itemsToProcess so
// callers can write results into a pre-sized slice without locking.
// Items not yet started when ctx is done are skipped.
func ProcessItemsWithThreadPool[K any](ctx context.Context, maxThreadCount int, itemsToProcess []K, processFunc func(int, K)) {
	wg := &sync.WaitGroup{}
	processChannel := make(chan indexedItem[K])

	for i := 0; i < Min(len(itemsToProcess), maxThreadCount); i++ {
		wg.Add(1)
		go poolWorker(ctx, wg, processChannel, processFunc)
	}

	for i, item := range itemsToProcess {
		processChannel <- indexedItem[K]{index: i, item: item}
	}

	close(processChannel)
	wg.Wait()
}

func poolWorker[K any](ctx context.Context, wg *sync.WaitGroup, itemsToProcess chan indexedItem[K], processFunc func(int, K)) {
	defer wg.Done()

	for item := range itemsToProcess {
		// Skip processing once context is finished
		if ctx.Err() != nil {
			continue
		}
		processFunc(item.index, item.item)
	}
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}
