//go:build !baremetal

// Package wsfeed streams gauge readings to websocket clients as JSON. Each
// client gets the current reading on connect and another on every level
// change.
package wsfeed

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"batterygauge-go/gauge"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Source is the cached view of the gauge. *gauge.Gauge implements it. The
// gauge caches a new level only after its listeners return, so the level a
// change carries is taken from the notification, not from PerMille.
type Source interface {
	PerMille() int16
	MilliVolt() int16
}

// Reading is the message sent to clients. -1 means unknown.
type Reading struct {
	PerMille  int16 `json:"per_mille"`
	MilliVolt int16 `json:"milli_volt"`
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) send(r Reading) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(r)
}

type Feed struct {
	src Source
	log *zap.Logger

	mu      sync.Mutex
	clients map[*client]struct{}

	level atomic.Int32 // last notified per-mille
	wake  chan struct{}
}

var (
	_ gauge.Listener = (*Feed)(nil)
	_ http.Handler   = (*Feed)(nil)
)

func New(src Source, log *zap.Logger) *Feed {
	f := &Feed{
		src:     src,
		log:     log,
		clients: make(map[*client]struct{}),
		wake:    make(chan struct{}, 1),
	}
	f.level.Store(int32(src.PerMille()))
	return f
}

// PerMilleChanged records the level and wakes Run; it never blocks the gauge.
func (f *Feed) PerMilleChanged(perMille int16) {
	f.level.Store(int32(perMille))
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn}

	f.mu.Lock()
	f.clients[c] = struct{}{}
	f.mu.Unlock()
	f.log.Debug("feed client connected", zap.String("remote", r.RemoteAddr))

	if err := c.send(f.reading()); err != nil {
		f.drop(c)
		return
	}
	// Clients never send; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			f.drop(c)
			return
		}
	}
}

// Run broadcasts the current reading after each change until ctx ends, then
// closes every client.
func (f *Feed) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			f.closeAll()
			return
		case <-f.wake:
			f.broadcast(f.reading())
		}
	}
}

func (f *Feed) reading() Reading {
	return Reading{PerMille: int16(f.level.Load()), MilliVolt: f.src.MilliVolt()}
}

func (f *Feed) broadcast(r Reading) {
	f.mu.Lock()
	cs := make([]*client, 0, len(f.clients))
	for c := range f.clients {
		cs = append(cs, c)
	}
	f.mu.Unlock()

	for _, c := range cs {
		if err := c.send(r); err != nil {
			f.log.Debug("feed client write failed", zap.Error(err))
			f.drop(c)
		}
	}
}

func (f *Feed) drop(c *client) {
	f.mu.Lock()
	_, ok := f.clients[c]
	delete(f.clients, c)
	f.mu.Unlock()
	if ok {
		_ = c.conn.Close()
	}
}

func (f *Feed) closeAll() {
	f.mu.Lock()
	cs := f.clients
	f.clients = make(map[*client]struct{})
	f.mu.Unlock()
	for c := range cs {
		_ = c.conn.Close()
	}
}
