package battery

import (
	"testing"

	"batterygauge-go/config"
	"batterygauge-go/gauge"
	"batterygauge-go/sched"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests build without a board tag, so the process gauge has no battery.
func TestDefault_NoBattery(t *testing.T) {
	require.False(t, config.Selected().Present)

	g := Default()
	require.Same(t, g, Default())

	var calls int
	l := SubscribeFunc(func(int16) { calls++ })

	assert.Equal(t, Unknown16, PerMille())
	assert.Equal(t, Unknown16, MilliVolt())
	assert.Equal(t, Unknown32, TotalCapacity())
	assert.Equal(t, Unknown32, AverageCurrent())

	sched.Default.RunPending()
	Refresh()
	Request(gauge.KindCapacity)
	sched.Default.RunPending()

	assert.Equal(t, Unknown16, PerMille())
	assert.Equal(t, Unknown16, MilliVolt())
	assert.Zero(t, calls, "unknown never changes")

	st := g.Stats()
	assert.True(t, st.Initialised)
	assert.Zero(t, st.Queued)
	assert.False(t, st.InFlight)
	assert.Equal(t, 1, st.Subscribers)

	Cancel(l)
	Subscribe(l)
	Subscribe(l)
	assert.Equal(t, 1, g.Stats().Subscribers)
	Cancel(l)
	assert.Zero(t, g.Stats().Subscribers)
}
