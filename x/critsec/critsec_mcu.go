//go:build baremetal

package critsec

import "runtime/interrupt"

// Lock is a non-reentrant interrupt mask. The zero value is ready to use.
type Lock struct {
	state interrupt.State
}

func (l *Lock) Lock() {
	st := interrupt.Disable()
	// Interrupts are masked from here on, so nothing else can observe l.
	l.state = st
}

func (l *Lock) Unlock() {
	st := l.state
	interrupt.Restore(st)
}
