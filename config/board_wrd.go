//go:build board_wrd

package config

// Wearable reference design: single Li-Po cell behind a MAX17048 on i2c0,
// ALRT# on GP22.
var selected = Board{
	Name:             "wrd",
	Present:          true,
	CapacityMAh:      150,
	AverageCurrentMA: 5,
	Gauge: GaugeWiring{
		Bus:               "i2c0",
		SDA:               4,
		SCL:               5,
		Hz:                400_000,
		AlertPin:          22,
		RComp:             0x97,
		EmptyAlertPercent: 5,
		ChangeAlert:       true,
		VoltageAlertMinMV: 3300,
	},
}
