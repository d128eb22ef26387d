//go:build linux && !baremetal

package platform

import (
	"context"
	"time"

	"batterygauge-go/config"
	"batterygauge-go/errcode"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

// edgePoll bounds each WaitForEdge so the watcher notices cancellation.
const edgePoll = time.Second

func openBus(ctx context.Context, w config.GaugeWiring) (drivers.I2C, error) {
	if _, err := host.Init(); err != nil {
		return nil, errcode.Wrap(errcode.Unsupported, "platform.host", err)
	}
	bus, err := i2creg.Open(w.Bus)
	if err != nil {
		return nil, errcode.Wrap(errcode.UnknownBus, "platform.open", err)
	}
	go func() {
		<-ctx.Done()
		_ = bus.Close()
	}()
	return bus, nil
}

func watchAlert(ctx context.Context, w config.GaugeWiring, fire func()) error {
	if w.AlertPinName == "" {
		return errcode.Unsupported
	}
	pin := gpioreg.ByName(w.AlertPinName)
	if pin == nil {
		return &errcode.E{C: errcode.UnknownPin, Op: "platform.alert", Msg: w.AlertPinName}
	}
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return errcode.Wrap(errcode.UnknownPin, "platform.alert", err)
	}
	go func() {
		for ctx.Err() == nil {
			if pin.WaitForEdge(edgePoll) {
				fire()
			}
		}
		_ = pin.Halt()
	}()
	return nil
}
