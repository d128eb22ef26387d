package gauge

import "batterygauge-go/sched"

// Sentinels for readings that are unknown or unavailable.
const (
	Unknown16 int16  = -1
	Unknown32 uint32 = 0xFFFFFFFF

	rawUnknown uint16 = 0xFFFF // Unknown16 in the backend's unsigned envelope
)

// Completion receives the result of exactly one backend read. The value
// travels as an unsigned 16-bit quantity; 0xFFFF means "unknown".
type Completion func(value uint16)

// ChangeHandler is notified by a backend when the gauge chip itself reports
// a level change. The value is 0xFFFF when the backend did not sample the
// level. Identity is interface equality.
type ChangeHandler interface {
	RawPerMilleChanged(value uint16)
}

// Backend is the asynchronous gauge capability set. Reads must complete
// exactly once, in call order, and never synchronously from a hardware
// interrupt.
type Backend interface {
	PerMille(done Completion)
	MilliVolt(done Completion)
	SetChangeCallback(h ChangeHandler)
	CancelChangeCallback(h ChangeHandler)
}

// NotPresent is the backend for boards without a battery gauge. Every read
// completes with the sentinel through the scheduler; change callbacks are
// ignored, so no notifications ever fire.
type NotPresent struct {
	sched sched.Poster
}

var _ Backend = (*NotPresent)(nil)

func NewNotPresent(s sched.Poster) *NotPresent {
	return &NotPresent{sched: s}
}

func (b *NotPresent) PerMille(done Completion)  { b.post(done) }
func (b *NotPresent) MilliVolt(done Completion) { b.post(done) }

func (b *NotPresent) SetChangeCallback(ChangeHandler)    {}
func (b *NotPresent) CancelChangeCallback(ChangeHandler) {}

func (b *NotPresent) post(done Completion) {
	if done == nil {
		return
	}
	b.sched.Post(func() { done(rawUnknown) })
}
