package concurrency_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/evalengine/core/internal/concurrency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPreservesOrder(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	results, errs := concurrency.Run(context.Background(), items, concurrency.Options{Concurrency: 4},
		func(ctx context.Context, item int, index int) (int, error) {
			// Sleep inversely so later items would finish first if order
			// weren't index-based.
			time.Sleep(time.Duration(10-item) * time.Millisecond)
			return item * 2, nil
		})

	for i := range items {
		require.NoError(t, errs[i])
		assert.Equal(t, i*2, results[i])
	}
}

func TestRunCollectsPerItemErrors(t *testing.T) {
	items := []int{1, 2, 3}
	results, errs := concurrency.Run(context.Background(), items, concurrency.Options{Concurrency: 2},
		func(ctx context.Context, item int, index int) (int, error) {
			if item == 2 {
				return 0, fmt.Errorf("boom")
			}
			return item, nil
		})

	assert.NoError(t, errs[0])
	assert.Error(t, errs[1])
	assert.NoError(t, errs[2])
	assert.Equal(t, 1, results[0])
	assert.Equal(t, 3, results[2])
}

func TestRunEmpty(t *testing.T) {
	results, errs := concurrency.Run(context.Background(), []int{}, concurrency.Options{}, func(ctx context.Context, item int, index int) (int, error) {
		return item, nil
	})
	assert.Empty(t, results)
	assert.Empty(t, errs)
}
