package usecase

import (
	"context"
	"fmt"
	"sync"
)

// unitOutcome — результат одной единицы работы.
type unitOutcome[T any] struct {
	value T
	err   error
}

// fanOut выполняет fn для каждого входа, не более limit задач одновременно.
// outcomes[i] всегда соответствует inputs[i] независимо от порядка завершения.
// Паника внутри задачи превращается в ошибку этой единицы.
func fanOut[In, Out any](ctx context.Context, inputs []In, limit int, fn func(ctx context.Context, in In) (Out, error)) []unitOutcome[Out] {
	if limit <= 0 {
		limit = 1
	}

	outcomes := make([]unitOutcome[Out], len(inputs))
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				outcomes[i].err = ctx.Err()
				return
			}
			defer func() { <-sem }()

			defer func() {
				if r := recover(); r != nil {
					outcomes[i].err = fmt.Errorf("panic: %v", r)
				}
			}()

			outcomes[i].value, outcomes[i].err = fn(ctx, inputs[i])
		}(i)
	}
	wg.Wait()

	return outcomes
}
