// Package gauge is the battery gauge engine: it serialises reads onto an
// asynchronous Backend one transaction at a time, caches the last voltage and
// level for synchronous readers, and notifies listeners when the level
// changes.
//
// All backend completions and listener invocations run on the scheduler the
// gauge was built with. Public methods may be called from any goroutine; they
// return the cached value immediately and never block on the backend.
package gauge

import (
	"sync/atomic"

	"batterygauge-go/sched"
	"batterygauge-go/x/critsec"
)

// trace enables the chatty subscribe/cancel/notify log lines.
const trace = false

// Params are the static pack parameters surfaced verbatim by the gauge.
type Params struct {
	Present        bool
	TotalCapacity  uint32 // mAh
	AverageCurrent uint32 // mA
}

// Stats is a diagnostic snapshot.
type Stats struct {
	Queued      int
	InFlight    bool
	Subscribers int
	Initialised bool
}

type Gauge struct {
	backend Backend
	sched   sched.Poster
	params  Params

	// Guarded by cs.
	cs         critsec.Lock
	needsInit  bool
	queue      txQueue
	inFlight   bool // a read is outstanding on the backend
	wakePosted bool // processQueue is already on the scheduler
	reg        registry

	// Written only from completions; read from anywhere.
	voltage  atomic.Int32
	capacity atomic.Int32

	done    Completion
	process sched.Task
}

var _ ChangeHandler = (*Gauge)(nil)

// New builds a gauge over b. Nothing touches the backend until the first
// public call.
func New(b Backend, s sched.Poster, p Params) *Gauge {
	g := &Gauge{
		backend:   b,
		sched:     s,
		params:    p,
		needsInit: true,
	}
	g.voltage.Store(int32(Unknown16))
	g.capacity.Store(int32(Unknown16))
	g.done = g.complete
	g.process = g.processQueue
	return g
}

// PerMille returns the last known level (0..1000), or -1 before the first
// capacity reading completes.
func (g *Gauge) PerMille() int16 {
	g.ensureInit()
	return int16(g.capacity.Load())
}

// MilliVolt returns the last known voltage, or -1 before the first voltage
// reading completes.
func (g *Gauge) MilliVolt() int16 {
	g.ensureInit()
	return int16(g.voltage.Load())
}

// TotalCapacity returns the nominal pack capacity in mAh, or Unknown32 when
// no battery is fitted.
func (g *Gauge) TotalCapacity() uint32 {
	g.ensureInit()
	if !g.params.Present {
		return Unknown32
	}
	return g.params.TotalCapacity
}

// AverageCurrent returns the estimated current draw in mA, or Unknown32 when
// no battery is fitted.
func (g *Gauge) AverageCurrent() uint32 {
	g.ensureInit()
	if !g.params.Present {
		return Unknown32
	}
	return g.params.AverageCurrent
}

// Subscribe adds l to the change listeners. Subscribing the same listener
// twice has no further effect. Listeners of uncomparable type are ignored.
func (g *Gauge) Subscribe(l Listener) {
	g.ensureInit()
	if !keyable(l) {
		if l != nil {
			println("[battery] subscribe: listener type is not comparable, ignored")
		}
		return
	}
	g.cs.Lock()
	added := g.reg.add(l)
	g.cs.Unlock()
	if added && trace {
		println("[battery] insert")
	}
}

// Cancel removes l. It takes effect immediately, including for a
// notification that is currently being delivered. Unknown listeners are
// ignored.
func (g *Gauge) Cancel(l Listener) {
	g.ensureInit()
	if !keyable(l) {
		return
	}
	g.cs.Lock()
	removed := g.reg.remove(l)
	g.cs.Unlock()
	if removed && trace {
		println("[battery] remove")
	}
}

// Request queues one read per kind, in order. Invalid kinds are dropped.
func (g *Gauge) Request(kinds ...Kind) {
	g.ensureInit()
	g.enqueue(kinds...)
}

// Refresh queues a voltage read followed by a capacity read.
func (g *Gauge) Refresh() {
	g.Request(KindVoltage, KindCapacity)
}

// RawPerMilleChanged is the backend's native change callback. The value is
// ignored: a capacity transaction is queued so the new level goes through the
// same ordering and notification rules as any other read.
func (g *Gauge) RawPerMilleChanged(uint16) {
	g.enqueue(KindCapacity)
}

// Close detaches the gauge from the backend's change notifications.
func (g *Gauge) Close() {
	g.backend.CancelChangeCallback(g)
}

func (g *Gauge) Stats() Stats {
	g.cs.Lock()
	defer g.cs.Unlock()
	return Stats{
		Queued:      g.queue.len(),
		InFlight:    g.inFlight,
		Subscribers: g.reg.len(),
		Initialised: !g.needsInit,
	}
}

// ensureInit seeds the queue with a voltage read then a capacity read on the
// first call; the order decides which reading lands first.
func (g *Gauge) ensureInit() {
	g.cs.Lock()
	if !g.needsInit {
		g.cs.Unlock()
		return
	}
	g.needsInit = false
	g.queue.push(Transaction{Kind: KindVoltage})
	g.queue.push(Transaction{Kind: KindCapacity})
	wake := g.armWakeLocked()
	g.cs.Unlock()

	println("[battery] init")
	g.backend.SetChangeCallback(g)
	if wake {
		g.sched.Post(g.process)
	}
}

func (g *Gauge) enqueue(kinds ...Kind) {
	g.cs.Lock()
	n := 0
	for _, k := range kinds {
		if !k.valid() {
			continue
		}
		g.queue.push(Transaction{Kind: k})
		n++
	}
	wake := n > 0 && g.armWakeLocked()
	g.cs.Unlock()
	if wake {
		g.sched.Post(g.process)
	}
}

// armWakeLocked reports whether the caller must post processQueue. A wake is
// only needed when the dispatcher is idle and none is already scheduled.
func (g *Gauge) armWakeLocked() bool {
	if g.inFlight || g.wakePosted {
		return false
	}
	g.wakePosted = true
	return true
}
