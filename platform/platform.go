// Package platform turns a board description into the gauge backend for the
// target the binary is built for.
package platform

import (
	"context"

	"batterygauge-go/config"
	"batterygauge-go/drivers/max17048"
	"batterygauge-go/errcode"
	"batterygauge-go/gauge"
	"batterygauge-go/sched"

	"tinygo.org/x/drivers"
)

// hardware is the per-target bring-up: open the gauge bus and attach fire
// to the ALRT line. watchAlert returns errcode.Unsupported when the line is
// not wired.
type hardware struct {
	openBus    func(ctx context.Context, w config.GaugeWiring) (drivers.I2C, error)
	watchAlert func(ctx context.Context, w config.GaugeWiring, fire func()) error
}

var native = hardware{openBus: openBus, watchAlert: watchAlert}

// NewBackend returns the gauge backend for b. Boards without a battery, and
// boards whose gauge cannot be brought up, get the not-present backend so
// the façade degrades to unknown readings instead of failing.
func NewBackend(ctx context.Context, b config.Board, s sched.Poster) gauge.Backend {
	return newBackend(ctx, b, s, native)
}

func newBackend(ctx context.Context, b config.Board, s sched.Poster, hw hardware) gauge.Backend {
	if !b.Present {
		println("[platform]", b.Name, ": no battery fitted")
		return gauge.NewNotPresent(s)
	}
	if err := b.Validate(); err != nil {
		println("[platform] invalid board:", err.Error())
		return gauge.NewNotPresent(s)
	}

	bus, err := hw.openBus(ctx, b.Gauge)
	if err != nil {
		println("[platform] gauge bus", b.Gauge.Bus, "unavailable:", string(errcode.Of(err)))
		return gauge.NewNotPresent(s)
	}

	dev := max17048.New(bus)
	if err := dev.Configure(max17048.Config{
		Address:           b.Gauge.Addr,
		RComp:             b.Gauge.RComp,
		EmptyAlertPercent: b.Gauge.EmptyAlertPercent,
		ChangeAlert:       b.Gauge.ChangeAlert,
		VoltageAlertMinMV: b.Gauge.VoltageAlertMinMV,
		VoltageAlertMaxMV: b.Gauge.VoltageAlertMaxMV,
	}); err != nil {
		println("[platform] max17048 configure failed:", string(errcode.Of(err)))
		return gauge.NewNotPresent(s)
	}

	p := gauge.NewPresent(dev, s)
	p.Start(ctx)

	switch err := hw.watchAlert(ctx, b.Gauge, p.Alert); errcode.Of(err) {
	case errcode.OK:
		println("[platform] gauge alert wired")
	case errcode.Unsupported:
		// Polled only.
	default:
		println("[platform] gauge alert unavailable:", string(errcode.Of(err)))
	}
	return p
}
