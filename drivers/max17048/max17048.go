// Package max17048 provides a driver for the MAX17048/MAX17049 ModelGauge
// fuel gauge.
//
// The chip reports cell voltage and state of charge directly; no sense
// resistor or coulomb counting is involved. Readings are returned in integer
// units (millivolts, per-mille) to keep floating point off MCU builds.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided.
package max17048

import (
	"batterygauge-go/errcode"
	"batterygauge-go/x/mathx"

	"tinygo.org/x/drivers"
)

// Config holds tuning applied by Configure. Zero values select defaults.
type Config struct {
	Address uint16
	// RComp is the temperature compensation byte from the cell model.
	RComp uint8
	// EmptyAlertPercent raises ALRT when SOC drops below it (1..32).
	EmptyAlertPercent uint8
	// ChangeAlert raises ALRT on every 1 % change in SOC.
	ChangeAlert bool
	// VoltageAlertMinMV/MaxMV raise ALRT when VCELL leaves the window
	// (20 mV steps, at most 5100). Both zero leaves VALRT untouched; a zero
	// max means no upper bound.
	VoltageAlertMinMV uint16
	VoltageAlertMaxMV uint16
}

// Device is a MAX17048 on an I²C bus.
type Device struct {
	bus     drivers.I2C
	Address uint16

	// Fixed buffers to avoid per-call heap allocations.
	w [3]byte
	r [2]byte
}

// New creates a Device. It does not touch the bus.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, Address: AddressDefault}
}

// Configure checks the chip identity and writes CONFIG.
func (d *Device) Configure(cfg Config) error {
	if cfg.Address != 0 {
		d.Address = cfg.Address
	}
	if cfg.EmptyAlertPercent > 32 {
		return &errcode.E{C: errcode.InvalidParams, Op: "max17048.configure", Msg: "empty alert above 32%"}
	}
	valrt, setVAlrt, err := voltageWindow(cfg.VoltageAlertMinMV, cfg.VoltageAlertMaxMV)
	if err != nil {
		return err
	}

	v, err := d.Version()
	if err != nil {
		return errcode.Wrap(errcode.NoDevice, "max17048.configure", err)
	}
	if v&versionMask != versionFamily {
		return &errcode.E{C: errcode.NoDevice, Op: "max17048.configure", Msg: "unexpected version"}
	}

	rcomp := cfg.RComp
	if rcomp == 0 {
		rcomp = rcompDefault
	}
	empty := cfg.EmptyAlertPercent
	if empty == 0 {
		empty = emptyAlertPctDef
	}
	val := uint16(rcomp)<<8 | (32-uint16(empty))&cfgAthdMask
	if cfg.ChangeAlert {
		val |= cfgALSC
	}
	if err := d.writeWord(regConfig, val); err != nil {
		return err
	}
	if setVAlrt {
		if err := d.writeWord(regVAlrt, valrt); err != nil {
			return err
		}
	}
	// Release any alert latched before we took over.
	return d.ClearAlert()
}

// Version returns the VERSION register (0x001X on MAX17048/9).
func (d *Device) Version() (uint16, error) {
	return d.readWord(regVersion)
}

// MilliVolt returns the cell voltage in mV.
func (d *Device) MilliVolt() (uint16, error) {
	raw, err := d.readWord(regVCell)
	if err != nil {
		return 0, err
	}
	// 78.125 µV = 5/64 mV
	return mathx.MulDivRound(raw, 5, 64), nil
}

// PerMille returns state of charge in parts per thousand, clamped to
// 0..1000 (the model may report slightly above 100 % at top of charge).
func (d *Device) PerMille() (uint16, error) {
	raw, err := d.readWord(regSOC)
	if err != nil {
		return 0, err
	}
	pm := mathx.MulDivRound(uint32(raw), 10, 256)
	return uint16(mathx.Clamp(pm, 0, 1000)), nil
}

// ChargeRate returns the SOC rate of change in per-mille per hour; negative
// while discharging.
func (d *Device) ChargeRate() (int16, error) {
	raw, err := d.readWord(regCRate)
	if err != nil {
		return 0, err
	}
	// 0.208 %/h = 2.08 ‰/h
	return int16(mathx.MulDivRoundSigned(int32(int16(raw)), 208, 100)), nil
}

// Status returns the alert flags.
func (d *Device) Status() (Status, error) {
	v, err := d.readWord(regStatus)
	return Status(v) & statusAlertFlagsMask, err
}

// ClearAlert acknowledges all latched alert flags and releases ALRT.
func (d *Device) ClearAlert() error {
	st, err := d.readWord(regStatus)
	if err != nil {
		return err
	}
	if err := d.writeWord(regStatus, st&^uint16(statusAlertFlagsMask)); err != nil {
		return err
	}
	cfg, err := d.readWord(regConfig)
	if err != nil {
		return err
	}
	if cfg&cfgAlrt == 0 {
		return nil
	}
	return d.writeWord(regConfig, cfg&^cfgAlrt)
}

// Hibernate forces the chip into hibernate (slower ADC sampling, lower
// quiescent current) or returns it to automatic hibernate thresholds.
func (d *Device) Hibernate(force bool) error {
	v := uint16(hibRTDefault)
	if force {
		v = hibRTAlways
	}
	return d.writeWord(regHibRT, v)
}

// Sleep halts all gauge activity (on) or resumes it. Alerts are not raised
// while asleep.
func (d *Device) Sleep(on bool) error {
	if on {
		if err := d.writeWord(regMode, modeEnSleep); err != nil {
			return err
		}
	}
	cfg, err := d.readWord(regConfig)
	if err != nil {
		return err
	}
	if on {
		cfg |= cfgSleep
	} else {
		cfg &^= cfgSleep
	}
	return d.writeWord(regConfig, cfg)
}

// QuickStart restarts fuel-gauge calculations from the present cell voltage.
func (d *Device) QuickStart() error {
	return d.writeWord(regMode, modeQuickStart)
}

// Reset issues a power-on reset. The chip does not ACK this command, so a
// bus error is expected and ignored. Allow ~1 ms before the next access.
func (d *Device) Reset() {
	_ = d.writeWord(regCmd, cmdPOR)
}

// voltageWindow encodes VALRT. ok is false when neither bound is set.
func voltageWindow(minMV, maxMV uint16) (v uint16, ok bool, err error) {
	if minMV == 0 && maxMV == 0 {
		return 0, false, nil
	}
	if maxMV == 0 {
		maxMV = vAlrtMaxmV
	}
	if maxMV > vAlrtMaxmV || minMV > maxMV {
		return 0, false, &errcode.E{C: errcode.InvalidParams, Op: "max17048.configure", Msg: "voltage alert window out of range"}
	}
	return (minMV/vAlrtLSBmV)<<8 | maxMV/vAlrtLSBmV, true, nil
}

// I²C 16-bit word operations (big-endian: HIGH then LOW).

func (d *Device) readWord(reg byte) (uint16, error) {
	d.w[0] = reg
	if err := d.bus.Tx(d.Address, d.w[:1], d.r[:2]); err != nil {
		return 0, err
	}
	return uint16(d.r[0])<<8 | uint16(d.r[1]), nil
}

func (d *Device) writeWord(reg byte, val uint16) error {
	d.w[0] = reg
	d.w[1] = byte(val >> 8)
	d.w[2] = byte(val)
	return d.bus.Tx(d.Address, d.w[:3], nil)
}
