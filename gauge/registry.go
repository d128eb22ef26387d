package gauge

import "reflect"

// Listener receives per-mille level changes.
//
// Membership is keyed on interface equality, so a pointer receiver gives each
// (receiver, method) pair its own identity. Listeners whose dynamic type is
// not comparable (func, map or slice types) are ignored by Subscribe and
// Cancel; wrap such functions with Func.
type Listener interface {
	PerMilleChanged(perMille int16)
}

// FuncListener gives a plain function a stable identity for Subscribe and
// Cancel. Keep the returned pointer; a second Func(fn) is a different listener.
type FuncListener struct {
	fn func(int16)
}

func Func(fn func(perMille int16)) *FuncListener { return &FuncListener{fn: fn} }

func (f *FuncListener) PerMilleChanged(perMille int16) {
	if f.fn != nil {
		f.fn(perMille)
	}
}

// keyable reports whether v can be compared with ==. Comparing two
// interfaces holding an uncomparable dynamic type panics.
func keyable(v any) bool {
	return v != nil && reflect.TypeOf(v).Comparable()
}

type entry struct {
	l    Listener
	live bool // cleared on cancel; checked before every invocation
}

// registry is an insertion-ordered set of listeners. Callers hold the gauge's
// critical section.
type registry struct {
	entries []*entry
}

func (r *registry) add(l Listener) bool {
	for _, e := range r.entries {
		if e.l == l {
			return false
		}
	}
	r.entries = append(r.entries, &entry{l: l, live: true})
	return true
}

func (r *registry) remove(l Listener) bool {
	for i, e := range r.entries {
		if e.l == l {
			e.live = false
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// snapshot returns the current entries in insertion order. Entries cancelled
// after the snapshot is taken are tombstoned, not removed from it.
func (r *registry) snapshot() []*entry {
	if len(r.entries) == 0 {
		return nil
	}
	out := make([]*entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *registry) len() int { return len(r.entries) }
