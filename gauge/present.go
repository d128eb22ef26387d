package gauge

import (
	"context"
	"sync/atomic"

	"batterygauge-go/errcode"
	"batterygauge-go/sched"
	"batterygauge-go/x/critsec"
)

// Driver is a synchronous fuel-gauge chip driver. Calls may block on the bus.
type Driver interface {
	PerMille() (uint16, error)
	MilliVolt() (uint16, error)
}

// Alerter is implemented by drivers whose chip latches an alert condition
// that must be acknowledged before the alert line is released.
type Alerter interface {
	ClearAlert() error
}

const presentQueueLen = 4

type presentReq struct {
	kind Kind
	done Completion
}

// Present is the backend for boards with a gauge chip. Driver calls run on a
// single worker goroutine (the only owner of the driver); results are posted
// back to the scheduler, so completions never run on the worker.
type Present struct {
	drv   Driver
	sched sched.Poster

	reqs  chan presentReq
	alert chan struct{} // ISR -> worker, coalescing

	cs       critsec.Lock
	handlers []ChangeHandler

	alertDrops atomic.Uint32
	readErrs   atomic.Uint32
}

var _ Backend = (*Present)(nil)

func NewPresent(drv Driver, s sched.Poster) *Present {
	return &Present{
		drv:   drv,
		sched: s,
		reqs:  make(chan presentReq, presentQueueLen),
		alert: make(chan struct{}, 1),
	}
}

// Start launches the worker. Reads issued before Start wait in the request
// queue.
func (p *Present) Start(ctx context.Context) {
	go p.worker(ctx)
}

func (p *Present) PerMille(done Completion)  { p.submit(KindCapacity, done) }
func (p *Present) MilliVolt(done Completion) { p.submit(KindVoltage, done) }

func (p *Present) SetChangeCallback(h ChangeHandler) {
	if !keyable(h) {
		return
	}
	p.cs.Lock()
	defer p.cs.Unlock()
	for _, cur := range p.handlers {
		if cur == h {
			return
		}
	}
	p.handlers = append(p.handlers, h)
}

func (p *Present) CancelChangeCallback(h ChangeHandler) {
	if !keyable(h) {
		return
	}
	p.cs.Lock()
	defer p.cs.Unlock()
	for i, cur := range p.handlers {
		if cur == h {
			p.handlers = append(p.handlers[:i], p.handlers[i+1:]...)
			return
		}
	}
}

// Alert is the entry point for the chip's alert line. It is safe to call
// from an interrupt handler: it never blocks, and bursts coalesce into one
// worker pass. The worker only acknowledges the chip and tells the handlers
// the level changed; they read it through the normal request path.
func (p *Present) Alert() {
	select {
	case p.alert <- struct{}{}:
	default:
		p.alertDrops.Add(1)
	}
}

// AlertDrops reports how many alerts were coalesced away.
func (p *Present) AlertDrops() uint32 { return p.alertDrops.Load() }

// ReadErrors reports how many driver reads failed.
func (p *Present) ReadErrors() uint32 { return p.readErrs.Load() }

func (p *Present) submit(k Kind, done Completion) {
	if done == nil {
		return
	}
	select {
	case p.reqs <- presentReq{kind: k, done: done}:
	default:
		// The gauge keeps at most one read outstanding, so this only trips
		// when a second client shares the backend.
		println("[battery] present: request queue full, dropping", k.String())
		p.post(done, rawUnknown)
	}
}

func (p *Present) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-p.reqs:
			p.post(r.done, p.read(r.kind))
		case <-p.alert:
			p.handleAlert()
		}
	}
}

func (p *Present) read(k Kind) uint16 {
	var (
		v   uint16
		err error
	)
	switch k {
	case KindCapacity:
		v, err = p.drv.PerMille()
	case KindVoltage:
		v, err = p.drv.MilliVolt()
	}
	if err != nil {
		p.readErrs.Add(1)
		println("[battery] present:", k.String(), "read failed:", string(errcode.MapDriverErr(err)))
		return rawUnknown
	}
	return v
}

func (p *Present) handleAlert() {
	if a, ok := p.drv.(Alerter); ok {
		if err := a.ClearAlert(); err != nil {
			println("[battery] present: clear alert failed:", string(errcode.MapDriverErr(err)))
		}
	}
	p.cs.Lock()
	hs := make([]ChangeHandler, len(p.handlers))
	copy(hs, p.handlers)
	p.cs.Unlock()

	for _, h := range hs {
		h := h
		p.sched.Post(func() { h.RawPerMilleChanged(rawUnknown) })
	}
}

func (p *Present) post(done Completion, v uint16) {
	p.sched.Post(func() { done(v) })
}
