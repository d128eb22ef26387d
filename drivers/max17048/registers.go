package max17048

// AddressDefault is the fixed 7-bit I²C address.
const AddressDefault = 0x36

// Register map. All registers are 16-bit, MSB first.
const (
	regVCell   byte = 0x02 // 78.125 µV/LSB per cell
	regSOC     byte = 0x04 // 1/256 % per LSB
	regMode    byte = 0x06
	regVersion byte = 0x08
	regHibRT   byte = 0x0A // HibThr (high byte), ActThr (low byte)
	regConfig  byte = 0x0C
	regVAlrt   byte = 0x14 // MIN (high byte), MAX (low byte), 20 mV per LSB
	regCRate   byte = 0x16 // 0.208 %/h per LSB, signed
	regStatus  byte = 0x1A
	regCmd     byte = 0xFE
)

// MODE bits.
const (
	modeQuickStart uint16 = 1 << 14
	modeEnSleep    uint16 = 1 << 13
)

// CONFIG low byte; the high byte is RCOMP.
const (
	cfgSleep    uint16 = 1 << 7
	cfgALSC     uint16 = 1 << 6 // alert on 1 % SOC change
	cfgAlrt     uint16 = 1 << 5 // alert latched
	cfgAthdMask uint16 = 0x1F   // empty alert threshold = 32 - ATHD %
)

const (
	rcompDefault     = 0x97
	emptyAlertPctDef = 4
	versionMask      = 0xFFF0
	versionFamily    = 0x0010
	cmdPOR           = 0x5400

	hibRTAlways  = 0xFFFF // always hibernate
	hibRTDefault = 0x8030 // power-on thresholds: enter/leave automatically

	vAlrtLSBmV = 20
	vAlrtMaxmV = 0xFF * vAlrtLSBmV
)

// Status mirrors the STATUS register alert flags (high byte).
type Status uint16

const (
	StatusReset          Status = 1 << 8  // RI: powered up, not configured
	StatusVoltageHigh    Status = 1 << 9  // VH
	StatusVoltageLow     Status = 1 << 10 // VL
	StatusVoltageReset   Status = 1 << 11 // VR
	StatusEmpty          Status = 1 << 12 // HD: SOC below empty threshold
	StatusSOCChange      Status = 1 << 13 // SC: SOC changed by 1 %
	statusAlertFlagsMask Status = 0x3F00
)

func (s Status) Has(f Status) bool { return s&f != 0 }
