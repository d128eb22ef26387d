package gauge

// processQueue issues the head transaction on the backend unless a read is
// already outstanding. Runs on the scheduler.
func (g *Gauge) processQueue() {
	g.cs.Lock()
	g.wakePosted = false
	if g.inFlight {
		g.cs.Unlock()
		return
	}
	t, ok := g.queue.front()
	if !ok {
		g.cs.Unlock()
		return
	}
	g.inFlight = true
	g.cs.Unlock()

	switch t.Kind {
	case KindCapacity:
		g.backend.PerMille(g.done)
	case KindVoltage:
		g.backend.MilliVolt(g.done)
	}
}

// complete is the shared completion handed to the backend. The head of the
// queue is, by construction, the transaction that was just serviced.
func (g *Gauge) complete(value uint16) {
	g.cs.Lock()
	t, ok := g.queue.front()
	if !ok || !g.inFlight {
		g.cs.Unlock()
		println("[battery] completion without a transaction in flight")
		return
	}
	g.queue.pop()
	g.inFlight = false
	g.cs.Unlock()

	v := int16(value) // 0xFFFF widens to the -1 sentinel

	switch t.Kind {
	case KindCapacity:
		if int32(v) != g.capacity.Load() {
			g.notify(v)
			g.capacity.Store(int32(v))
		}
	case KindVoltage:
		g.voltage.Store(int32(v))
	}

	// Listeners have run; only now may the next transaction be dispatched.
	g.cs.Lock()
	wake := g.queue.len() > 0 && g.armWakeLocked()
	g.cs.Unlock()
	if wake {
		g.sched.Post(g.process)
	}
}

// notify calls every listener synchronously, in insertion order. Listeners
// may subscribe or cancel from inside the callback: new listeners wait for
// the next change, cancelled ones that have not been visited yet are skipped.
func (g *Gauge) notify(v int16) {
	g.cs.Lock()
	snap := g.reg.snapshot()
	g.cs.Unlock()

	for _, e := range snap {
		g.cs.Lock()
		live := e.live
		g.cs.Unlock()
		if !live {
			continue
		}
		if trace {
			println("[battery] callback", v)
		}
		e.l.PerMilleChanged(v)
	}
}
