// Package config describes the board the firmware is built for: whether a
// battery is fitted, the pack's nominal parameters, and how the fuel gauge is
// wired. The board is selected at build time with a tag (see board_*.go).
package config

import "batterygauge-go/errcode"

// NoPin marks an unwired GPIO.
const NoPin = -1

// GaugeWiring is how the fuel-gauge chip is connected.
type GaugeWiring struct {
	Bus  string `yaml:"bus"`  // "i2c0"/"i2c1" on MCUs, a periph bus name ("1", "/dev/i2c-1") on Linux
	SDA  int    `yaml:"sda"`  // MCU only
	SCL  int    `yaml:"scl"`  // MCU only
	Hz   uint32 `yaml:"hz"`   // MCU only
	Addr uint16 `yaml:"addr"` // 0 = chip default

	// ALRT line. AlertPin is a GPIO number on MCUs; AlertPinName a periph
	// gpioreg name on Linux. Unwired when NoPin / empty.
	AlertPin     int    `yaml:"alert_pin"`
	AlertPinName string `yaml:"alert_pin_name"`

	RComp             uint8  `yaml:"rcomp"`
	EmptyAlertPercent uint8  `yaml:"empty_alert_percent"`
	ChangeAlert       bool   `yaml:"change_alert"`
	VoltageAlertMinMV uint16 `yaml:"voltage_alert_min_mv"` // 0,0 = VALRT untouched
	VoltageAlertMaxMV uint16 `yaml:"voltage_alert_max_mv"`
}

// Board is the build-time description of the battery subsystem.
type Board struct {
	Name    string `yaml:"name"`
	Present bool   `yaml:"present"`

	// Nominal pack parameters, surfaced verbatim by the gauge.
	CapacityMAh      uint32 `yaml:"capacity_mah"`
	AverageCurrentMA uint32 `yaml:"average_current_ma"`

	Gauge GaugeWiring `yaml:"gauge"`
}

// Selected returns the board chosen at build time.
func Selected() Board { return selected }

// Validate checks the fields a present battery needs.
func (b Board) Validate() error {
	if !b.Present {
		return nil
	}
	if b.CapacityMAh == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config.validate", Msg: "capacity_mah must be set"}
	}
	if b.Gauge.Bus == "" {
		return &errcode.E{C: errcode.UnknownBus, Op: "config.validate", Msg: "gauge bus must be set"}
	}
	if b.Gauge.EmptyAlertPercent > 32 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config.validate", Msg: "empty_alert_percent above 32"}
	}
	return nil
}
