package blebattery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	levels []uint8
	err    error
}

func (w *fakeWriter) WriteLevel(pct uint8) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.levels = append(w.levels, pct)
	return nil
}

func (w *fakeWriter) snapshot() []uint8 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]uint8(nil), w.levels...)
}

func TestPercent(t *testing.T) {
	cases := []struct {
		in   int16
		want uint8
		ok   bool
	}{
		{-1, 0, false},
		{0, 0, true},
		{4, 0, true},
		{5, 1, true},
		{505, 51, true},
		{994, 99, true},
		{1000, 100, true},
		{1200, 100, true},
	}
	for _, c := range cases {
		got, ok := Percent(c.in)
		assert.Equal(t, c.ok, ok, "in=%d", c.in)
		assert.Equal(t, c.want, got, "in=%d", c.in)
	}
}

// publish is driven directly so the expected sequence is deterministic.
func TestPublish_SkipsUnknownAndRepeats(t *testing.T) {
	w := &fakeWriter{}
	s := New(w)

	s.PerMilleChanged(-1)
	s.publish()
	s.PerMilleChanged(505)
	s.publish()
	s.PerMilleChanged(510) // still 51 %
	s.publish()
	s.PerMilleChanged(400)
	s.publish()
	s.PerMilleChanged(-1)
	s.publish()

	assert.Equal(t, []uint8{51, 40}, w.snapshot())
}

func TestPublish_FailureRetriesOnNextChange(t *testing.T) {
	w := &fakeWriter{err: errors.New("not connected")}
	s := New(w)

	s.PerMilleChanged(700)
	s.publish()
	assert.Equal(t, uint32(1), s.Failures())
	assert.Empty(t, w.snapshot())

	w.mu.Lock()
	w.err = nil
	w.mu.Unlock()
	s.PerMilleChanged(700)
	s.publish()
	assert.Equal(t, []uint8{70}, w.snapshot())
}

func TestRun_LatestWins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &fakeWriter{}
	s := New(w)

	// Burst before the worker runs: one wake, latest value.
	s.PerMilleChanged(100)
	s.PerMilleChanged(200)
	s.PerMilleChanged(300)

	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()

	require.Eventually(t, func() bool { return len(w.snapshot()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []uint8{30}, w.snapshot())

	s.PerMilleChanged(900)
	require.Eventually(t, func() bool { return len(w.snapshot()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []uint8{30, 90}, w.snapshot())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
