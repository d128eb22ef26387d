//go:build !baremetal

package blebattery

import (
	"batterygauge-go/errcode"

	"tinygo.org/x/bluetooth"
)

const (
	serviceID = "180f"
	levelID   = "2a19"
)

var (
	batteryService = must(bluetooth.ParseUUID(serviceID))
	batteryLevel   = must(bluetooth.ParseUUID(levelID))
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// characteristic adapts a local GATT characteristic to LevelWriter.
type characteristic struct {
	ch  bluetooth.Characteristic
	buf [1]byte
}

func (c *characteristic) WriteLevel(pct uint8) error {
	c.buf[0] = pct
	if _, err := c.ch.Write(c.buf[:]); err != nil {
		return errcode.Wrap(errcode.BusError, "blebattery.write", err)
	}
	return nil
}

// Advertise enables the default adapter, registers the Battery Service and
// starts advertising it under name. The returned writer updates the level.
func Advertise(name string) (LevelWriter, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, errcode.Wrap(errcode.Unsupported, "blebattery.enable", err)
	}

	c := &characteristic{}
	if err := adapter.AddService(&bluetooth.Service{
		UUID: batteryService,
		Characteristics: []bluetooth.CharacteristicConfig{{
			Handle: &c.ch,
			UUID:   batteryLevel,
			Value:  []byte{0},
			Flags:  bluetooth.CharacteristicReadPermission | bluetooth.CharacteristicNotifyPermission,
		}},
	}); err != nil {
		return nil, errcode.Wrap(errcode.Error, "blebattery.service", err)
	}

	adv := adapter.DefaultAdvertisement()
	if err := adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    name,
		ServiceUUIDs: []bluetooth.UUID{batteryService},
	}); err != nil {
		return nil, errcode.Wrap(errcode.Error, "blebattery.advertise", err)
	}
	if err := adv.Start(); err != nil {
		return nil, errcode.Wrap(errcode.Error, "blebattery.advertise", err)
	}
	println("[ble] advertising", name)
	return c, nil
}
