package service

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestGradingPoolRunsDispatchedTasks(t *testing.T) {
	pool := NewGradingPool(2, 8, zerolog.Nop())

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		pool.Dispatch(func() {
			defer wg.Done()
			ran.Add(1)
		})
	}
	wg.Wait()
	pool.Close()

	require.Equal(t, int32(20), ran.Load())
}

func TestGradingPoolRunsInlineWhenQueueFull(t *testing.T) {
	pool := NewGradingPool(1, 1, zerolog.Nop())
	defer pool.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	pool.Dispatch(func() {
		close(started)
		<-block
	})
	<-started

	// Occupy the single queue slot while the worker is blocked.
	pool.Dispatch(func() {})

	inline := false
	pool.Dispatch(func() { inline = true })
	require.True(t, inline, "full queue falls back to running on the caller")

	close(block)
}

func TestGradingPoolDispatchAfterCloseRunsInline(t *testing.T) {
	pool := NewGradingPool(1, 4, zerolog.Nop())
	pool.Close()

	ran := false
	require.NotPanics(t, func() {
		pool.Dispatch(func() { ran = true })
	})
	require.True(t, ran, "a closed pool still runs the task on the caller")
}

func TestGradingPoolCloseIsIdempotent(t *testing.T) {
	pool := NewGradingPool(1, 1, zerolog.Nop())
	pool.Close()
	require.NotPanics(t, pool.Close)
}

func TestSyncExecutorRunsInline(t *testing.T) {
	ran := false
	SyncExecutor{}.Dispatch(func() { ran = true })
	require.True(t, ran)
}
