//go:build !board_wrd

package config

// No battery fitted: the gauge reports unknown for everything.
var selected = Board{
	Name:    "none",
	Present: false,
	Gauge:   GaugeWiring{AlertPin: NoPin},
}
