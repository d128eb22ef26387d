// Package critsec provides a scoped critical section for state shared between
// task code and interrupt handlers.
//
//	var cs critsec.Lock
//	cs.Lock()
//	defer cs.Unlock()
//
// On baremetal targets Lock masks interrupts and Unlock restores the mask that
// was in effect before; sections must be short and must not block. Hosted
// builds fall back to a mutex so the same code is race-free under `go test`.
package critsec

import "sync"

var _ sync.Locker = (*Lock)(nil)

// Do runs fn inside the section; the section is released on every exit path.
func (l *Lock) Do(fn func()) {
	l.Lock()
	defer l.Unlock()
	fn()
}
