package costing

import (
	"context"

	"golang.org/x/sync/errgroup"

	applog "costbook/internal/log"
)

// Entry is the outcome of one recipe inside ResolveAll. Err holds a fatal resolution
// error for that recipe only.
type Entry struct {
	RecipeID uint
	Result   CostResult
	Err      error
}

// ResolveAll resolves each recipe independently, at most concurrency at a time (no limit
// when concurrency <= 0). Every resolution gets its own cache. Once ctx is done no further
// recipe is started and the context error is returned.
func ResolveAll(ctx context.Context, g Graph, recipeIDs []uint, concurrency int) ([]Entry, error) {
	entries := make([]Entry, len(recipeIDs))
	resolver := NewResolver(g)

	group, groupCtx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		group.SetLimit(concurrency)
	}

	for i, id := range recipeIDs {
		i, id := i, id
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			result, err := resolver.Resolve(groupCtx, id)
			entries[i] = Entry{RecipeID: id, Result: result, Err: err}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		applog.Debug(ctx, "bulk resolution interrupted", "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
