//go:build rp2040 || rp2350

package platform

import (
	"context"
	"machine"

	"batterygauge-go/config"
	"batterygauge-go/errcode"

	"tinygo.org/x/drivers"
)

func openBus(_ context.Context, w config.GaugeWiring) (drivers.I2C, error) {
	var hw *machine.I2C
	switch w.Bus {
	case "i2c0":
		hw = machine.I2C0
	case "i2c1":
		hw = machine.I2C1
	default:
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "platform.open", Msg: w.Bus}
	}
	hz := w.Hz
	if hz == 0 {
		hz = 400 * machine.KHz
	}
	sda := machine.Pin(w.SDA)
	scl := machine.Pin(w.SCL)
	sda.Configure(machine.PinConfig{Mode: machine.PinI2C})
	scl.Configure(machine.PinConfig{Mode: machine.PinI2C})
	if err := hw.Configure(machine.I2CConfig{SDA: sda, SCL: scl, Frequency: hz}); err != nil {
		return nil, errcode.Wrap(errcode.BusError, "platform.open", err)
	}
	return hw, nil
}

// ALRT# is open-drain, active low. The handler runs in interrupt context;
// fire must not block.
func watchAlert(_ context.Context, w config.GaugeWiring, fire func()) error {
	if w.AlertPin < 0 {
		return errcode.Unsupported
	}
	pin := machine.Pin(w.AlertPin)
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	if err := pin.SetInterrupt(machine.PinFalling, func(machine.Pin) { fire() }); err != nil {
		return errcode.Wrap(errcode.UnknownPin, "platform.alert", err)
	}
	return nil
}
