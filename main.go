package main

import (
	"context"
	"runtime"
	"time"

	"batterygauge-go/battery"
	"batterygauge-go/config"
	"batterygauge-go/sched"
	"batterygauge-go/services/heartbeat"
	"batterygauge-go/x/conv"
)

// interval is how often the firmware samples the gauge on top of the chip's
// own change alerts.
const interval = 30 * time.Second

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	b := config.Selected()
	println("[main] boot, board:", b.Name)

	ctx := context.Background()

	battery.SubscribeFunc(func(perMille int16) {
		var lb, vb [12]byte
		println("[main] battery",
			string(conv.Reading(lb[:], perMille, 1, "%")),
			string(conv.Reading(vb[:], battery.MilliVolt(), 3, "V")))
	})

	heartbeat.New(battery.Default(), interval, func(time.Time) { printStats() }).Start(ctx)

	// Completions and listeners run here.
	sched.Default.Run(ctx)
}

// printStats prints the last readings, the gauge's queue state and a compact
// snapshot of TinyGo runtime memory stats. Uses builtin println to avoid fmt.
func printStats() {
	st := battery.Default().Stats()
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	println(
		"[stats]",
		"level:", battery.PerMille(),
		"mV:", battery.MilliVolt(),
		"mAh:", battery.TotalCapacity(),
		"mA:", battery.AverageCurrent(),
		"queued:", st.Queued,
		"inflight:", st.InFlight,
		"subs:", st.Subscribers,
		"heapInuse:", uint32(ms.HeapInuse),
		"mallocs:", uint32(ms.Mallocs),
	)
}
