//go:build !baremetal

package critsec

import "sync"

// Lock is a non-reentrant mutex on hosted builds. The zero value is ready to use.
type Lock struct {
	mu sync.Mutex
}

func (l *Lock) Lock()   { l.mu.Lock() }
func (l *Lock) Unlock() { l.mu.Unlock() }
