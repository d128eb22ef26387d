// Package heartbeat periodically asks the gauge for fresh readings. The chip's
// own alerts cover level steps; the heartbeat keeps voltage current and
// recovers from a missed alert.
package heartbeat

import (
	"context"
	"time"
)

// Refresher queues a new voltage and level read. *gauge.Gauge implements it.
type Refresher interface {
	Refresh()
}

type Service struct {
	target   Refresher
	interval time.Duration
	onBeat   func(time.Time)
	set      chan time.Duration
}

// New builds a heartbeat that refreshes target every interval. onBeat, if
// non-nil, runs after each refresh on the heartbeat goroutine.
func New(target Refresher, interval time.Duration, onBeat func(time.Time)) *Service {
	if interval <= 0 {
		interval = time.Second
	}
	return &Service{
		target:   target,
		interval: interval,
		onBeat:   onBeat,
		set:      make(chan time.Duration, 1),
	}
}

// SetInterval changes the period from the next beat. It never blocks; when
// called faster than the loop drains, the latest value wins.
func (s *Service) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	for {
		select {
		case s.set <- d:
			return
		default:
		}
		select {
		case <-s.set:
		default:
		}
	}
}

func (s *Service) serviceLoop(ctx context.Context) {
	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("[heartbeat] stopping")
			return
		case t := <-tick.C:
			s.target.Refresh()
			if s.onBeat != nil {
				s.onBeat(t)
			}
		case d := <-s.set:
			tick.Reset(d)
			println("[heartbeat] interval set to", int64(d/time.Millisecond), "ms")
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context) {
	go s.serviceLoop(ctx)
}
