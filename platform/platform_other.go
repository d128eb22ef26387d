//go:build !rp2040 && !rp2350 && !(linux && !baremetal)

package platform

import (
	"context"

	"batterygauge-go/config"
	"batterygauge-go/errcode"

	"tinygo.org/x/drivers"
)

func openBus(context.Context, config.GaugeWiring) (drivers.I2C, error) {
	return nil, errcode.Unsupported
}

func watchAlert(context.Context, config.GaugeWiring, func()) error {
	return errcode.Unsupported
}
