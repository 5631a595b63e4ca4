package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeGroups(n int) []int {
	groups := make([]int, n)
	for i := range n {
		groups[i] = i
	}
	return groups
}

func TestParallelGroups_OrderPreservation(t *testing.T) {
	out, err := parallelGroups(context.Background(), makeGroups(200), 8, func(i int) int { return i * 2 })
	require.NoError(t, err)

	assert.Len(t, out, 200)
	for i, v := range out {
		assert.Equal(t, i*2, v, "result %d out of order", i)
	}
}

func TestParallelGroups_SingleWorker(t *testing.T) {
	out, err := parallelGroups(context.Background(), makeGroups(50), 1, func(i int) string { return fmt.Sprint(i) })
	require.NoError(t, err)

	assert.Len(t, out, 50)
	for i, v := range out {
		assert.Equal(t, fmt.Sprint(i), v)
	}
}

func TestParallelGroups_EmptyInput(t *testing.T) {
	calls := 0
	out, err := parallelGroups(context.Background(), nil, 4, func(i int) int {
		calls++
		return i
	})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 0, calls)
}

func TestOrderedCollect_EarlyError(t *testing.T) {
	results := make(chan workResult[int], 10)
	for i := 9; i >= 0; i-- {
		results <- workResult[int]{Seq: i, Output: i}
	}
	close(results)

	count := 0
	err := orderedCollect(results, func(r workResult[int]) error {
		assert.Equal(t, count, r.Seq)
		count++
		if count == 5 {
			return fmt.Errorf("stop at 5")
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 5, count)
}
