package batch

import (
	"context"
	"fmt"

	"Motorsize/internal/calc/motor"
	"Motorsize/internal/metrics"

	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

type BatchInput struct {
	Items []motor.Input `json:"items"`
}

type BatchResult struct {
	Results []motor.Result `json:"results"`
}

// Calculate sizes every item with up to workers concurrent calculations.
// Each motor owns its geometry, so items never share state. The first
// failing item cancels the batch.
func Calculate(ctx context.Context, in BatchInput, workers int) (BatchResult, error) {
	if len(in.Items) == 0 {
		return BatchResult{}, fmt.Errorf("no items")
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	metrics.BatchSize.Observe(float64(len(in.Items)))

	results := make([]motor.Result, len(in.Items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range in.Items {
		i, item := i, item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := motor.Calculate(item)
			if err != nil {
				return fmt.Errorf("item %d (%s): %w", i, item.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}
	return BatchResult{Results: results}, nil
}
