package wsfeed

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"batterygauge-go/gauge"
	"batterygauge-go/sched"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	perMille  atomic.Int32
	milliVolt atomic.Int32
}

func (s *fakeSource) PerMille() int16  { return int16(s.perMille.Load()) }
func (s *fakeSource) MilliVolt() int16 { return int16(s.milliVolt.Load()) }

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readReading(t *testing.T, conn *websocket.Conn) Reading {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var r Reading
	require.NoError(t, conn.ReadJSON(&r))
	return r
}

func TestFeed_SnapshotThenChanges(t *testing.T) {
	src := &fakeSource{}
	src.perMille.Store(-1)
	src.milliVolt.Store(-1)

	f := New(src, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.Run(ctx)

	srv := httptest.NewServer(f)
	defer srv.Close()

	conn := dial(t, srv)
	assert.Equal(t, Reading{PerMille: -1, MilliVolt: -1}, readReading(t, conn))
	require.Eventually(t, func() bool { return f.Clients() == 1 }, time.Second, time.Millisecond)

	src.perMille.Store(505)
	src.milliVolt.Store(3700)
	f.PerMilleChanged(505)
	assert.Equal(t, Reading{PerMille: 505, MilliVolt: 3700}, readReading(t, conn))
}

func TestFeed_ClientCloseIsDropped(t *testing.T) {
	src := &fakeSource{}
	f := New(src, zap.NewNop())
	srv := httptest.NewServer(f)
	defer srv.Close()

	conn := dial(t, srv)
	readReading(t, conn)
	require.Eventually(t, func() bool { return f.Clients() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return f.Clients() == 0 }, time.Second, time.Millisecond)
}

func TestFeed_RunClosesClientsOnCancel(t *testing.T) {
	src := &fakeSource{}
	f := New(src, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { f.Run(ctx); close(done) }()

	srv := httptest.NewServer(f)
	defer srv.Close()

	conn := dial(t, srv)
	readReading(t, conn)
	require.Eventually(t, func() bool { return f.Clients() == 1 }, time.Second, time.Millisecond)

	cancel()
	<-done
	assert.Zero(t, f.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestFeed_PerMilleChangedNeverBlocks(t *testing.T) {
	f := New(&fakeSource{}, zap.NewNop())
	for i := 0; i < 10; i++ {
		f.PerMilleChanged(int16(i))
	}
	assert.Len(t, f.wake, 1)
}

// parkedBackend holds every read until the test completes it.
type parkedBackend struct {
	mu      sync.Mutex
	pending []gauge.Completion
}

func (b *parkedBackend) PerMille(done gauge.Completion)  { b.park(done) }
func (b *parkedBackend) MilliVolt(done gauge.Completion) { b.park(done) }

func (b *parkedBackend) SetChangeCallback(gauge.ChangeHandler)    {}
func (b *parkedBackend) CancelChangeCallback(gauge.ChangeHandler) {}

func (b *parkedBackend) park(done gauge.Completion) {
	b.mu.Lock()
	b.pending = append(b.pending, done)
	b.mu.Unlock()
}

// take removes the single outstanding read.
func (b *parkedBackend) take(t *testing.T) gauge.Completion {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.Len(t, b.pending, 1)
	done := b.pending[0]
	b.pending = b.pending[1:]
	return done
}

// The gauge caches a level only after every listener has returned; the
// broadcast must carry the notified level even while a later listener is
// still running.
func TestFeed_BroadcastsNotifiedLevelFromGauge(t *testing.T) {
	b := &parkedBackend{}
	s := sched.New()
	g := gauge.New(b, s, gauge.Params{Present: true})

	f := New(g, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.Run(ctx)

	release := make(chan struct{})
	g.Subscribe(f)
	g.Subscribe(gauge.Func(func(int16) { <-release }))

	srv := httptest.NewServer(f)
	defer srv.Close()
	conn := dial(t, srv)
	assert.Equal(t, Reading{PerMille: -1, MilliVolt: -1}, readReading(t, conn))

	s.RunPending()
	b.take(t)(3700) // voltage
	s.RunPending()

	level := b.take(t)
	completed := make(chan struct{})
	go func() {
		level(812) // blocks in the second listener
		close(completed)
	}()

	assert.Equal(t, Reading{PerMille: 812, MilliVolt: 3700}, readReading(t, conn))
	assert.Equal(t, int16(-1), g.PerMille(), "gauge has not cached the level yet")

	close(release)
	<-completed
	assert.Equal(t, int16(812), g.PerMille())
}
