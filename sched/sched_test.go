package sched

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_FIFO(t *testing.T) {
	s := New()
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		s.Post(func() { got = append(got, i) })
	}
	require.Equal(t, 5, s.Pending())

	n := s.RunPending()
	assert.Equal(t, 5, n)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.Equal(t, 0, s.Pending())
}

func TestRunPending_RunsTasksPostedWhileDraining(t *testing.T) {
	s := New()
	var got []string
	s.Post(func() {
		got = append(got, "a")
		s.Post(func() { got = append(got, "c") })
	})
	s.Post(func() { got = append(got, "b") })

	assert.Equal(t, 3, s.RunPending())
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestPost_IgnoresNil(t *testing.T) {
	s := New()
	s.Post(nil)
	assert.Equal(t, 0, s.Pending())
}

func TestRunOnce_WaitsForWork(t *testing.T) {
	s := New()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ran := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Post(func() { close(ran) })
	}()

	require.NoError(t, s.RunOnce(ctx))
	select {
	case <-ran:
	default:
		t.Fatal("task not executed by RunOnce")
	}
}

func TestRunOnce_ContextDone(t *testing.T) {
	s := New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.RunOnce(ctx), context.DeadlineExceeded)
}

func TestRun_ConcurrentProducers(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const producers, each = 4, 100
	var (
		mu   sync.Mutex
		seen int
		wg   sync.WaitGroup
	)
	wg.Add(producers * each)
	go s.Run(ctx)

	for p := 0; p < producers; p++ {
		go func() {
			for i := 0; i < each; i++ {
				s.Post(func() {
					mu.Lock()
					seen++
					mu.Unlock()
					wg.Done()
				})
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, producers*each, seen)
}
