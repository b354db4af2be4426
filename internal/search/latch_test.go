package search

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLatchFiresOnLastSignal(t *testing.T) {
	t.Parallel()

	var fired int
	latch := NewLatch(2, func() { fired++ })
	require.Equal(t, 2, latch.Remaining())

	latch.Done()
	require.Zero(t, fired)
	require.Equal(t, 1, latch.Remaining())

	latch.Done()
	require.Equal(t, 1, fired)
	require.Zero(t, latch.Remaining())
}

func TestLatchIgnoresExtraSignals(t *testing.T) {
	t.Parallel()

	var fired int
	latch := NewLatch(1, func() { fired++ })
	latch.Done()
	latch.Done()
	latch.Done()

	require.Equal(t, 1, fired)
	require.Zero(t, latch.Remaining())
}

func TestLatchNonPositiveCountFiresImmediately(t *testing.T) {
	t.Parallel()

	var fired int
	NewLatch(0, func() { fired++ })
	require.Equal(t, 1, fired)
}

func TestLatchConcurrentSignals(t *testing.T) {
	t.Parallel()

	const n = 64
	var fired atomic.Int32
	latch := NewLatch(n, func() { fired.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < n*2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			latch.Done()
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), fired.Load())
}
