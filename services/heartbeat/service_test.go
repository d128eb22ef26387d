package heartbeat

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ n atomic.Int32 }

func (c *counter) Refresh() { c.n.Add(1) }

func TestHeartbeat_RefreshesEveryTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := &counter{}
	var beats atomic.Int32
	s := New(c, 5*time.Millisecond, func(time.Time) { beats.Add(1) })
	s.Start(ctx)

	require.Eventually(t, func() bool { return c.n.Load() >= 3 }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, beats.Load(), int32(2))
}

func TestHeartbeat_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &counter{}
	New(c, 2*time.Millisecond, nil).Start(ctx)

	require.Eventually(t, func() bool { return c.n.Load() >= 1 }, time.Second, time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)
	n := c.n.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, c.n.Load())
}

func TestHeartbeat_SetInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := &counter{}
	s := New(c, time.Hour, nil)
	s.SetInterval(0) // ignored
	s.SetInterval(time.Minute)
	s.SetInterval(2 * time.Millisecond) // latest wins without blocking
	s.Start(ctx)

	require.Eventually(t, func() bool { return c.n.Load() >= 2 }, time.Second, time.Millisecond)
}

func TestNew_DefaultsInterval(t *testing.T) {
	s := New(&counter{}, 0, nil)
	assert.Equal(t, time.Second, s.interval)
}
