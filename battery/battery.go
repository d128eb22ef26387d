// Package battery is the process-wide battery gauge. The first call builds a
// single gauge for the board selected at build time, bound to sched.Default;
// every later call shares it.
//
// Readings are cached: PerMille and MilliVolt return -1 until the first read
// lands, which happens once sched.Default runs.
package battery

import (
	"context"
	"sync"

	"batterygauge-go/config"
	"batterygauge-go/gauge"
	"batterygauge-go/platform"
	"batterygauge-go/sched"
)

const (
	Unknown16 = gauge.Unknown16
	Unknown32 = gauge.Unknown32
)

var (
	once sync.Once
	dflt *gauge.Gauge
)

// Default returns the process gauge, building it on first use.
func Default() *gauge.Gauge {
	once.Do(func() {
		b := config.Selected()
		backend := platform.NewBackend(context.Background(), b, sched.Default)
		dflt = gauge.New(backend, sched.Default, gauge.Params{
			Present:        b.Present,
			TotalCapacity:  b.CapacityMAh,
			AverageCurrent: b.AverageCurrentMA,
		})
	})
	return dflt
}

func PerMille() int16            { return Default().PerMille() }
func MilliVolt() int16           { return Default().MilliVolt() }
func TotalCapacity() uint32      { return Default().TotalCapacity() }
func AverageCurrent() uint32     { return Default().AverageCurrent() }
func Subscribe(l gauge.Listener) { Default().Subscribe(l) }
func Cancel(l gauge.Listener)    { Default().Cancel(l) }

// SubscribeFunc subscribes fn and returns the handle to pass to Cancel.
func SubscribeFunc(fn func(perMille int16)) *gauge.FuncListener {
	l := gauge.Func(fn)
	Default().Subscribe(l)
	return l
}

// Refresh queues a voltage read followed by a capacity read.
func Refresh() { Default().Refresh() }

// Request queues one read per kind.
func Request(kinds ...gauge.Kind) { Default().Request(kinds...) }
