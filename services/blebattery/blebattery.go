// Package blebattery publishes the gauge level as the standard Bluetooth
// Battery Service (0x180F, Battery Level 0x2A19).
package blebattery

import (
	"context"
	"sync/atomic"

	"batterygauge-go/gauge"
	"batterygauge-go/x/mathx"
)

// LevelWriter sets the Battery Level characteristic value (0..100).
type LevelWriter interface {
	WriteLevel(percent uint8) error
}

// Service is a gauge listener. PerMilleChanged only records the level and
// wakes Run, so the gauge's completion is never held up by the radio.
type Service struct {
	w LevelWriter

	latest atomic.Int32 // per-mille, -1 = unknown
	wake   chan struct{}

	written  int16 // last percent written, -1 = none; Run only
	failures atomic.Uint32
}

var _ gauge.Listener = (*Service)(nil)

func New(w LevelWriter) *Service {
	s := &Service{w: w, wake: make(chan struct{}, 1), written: -1}
	s.latest.Store(int32(gauge.Unknown16))
	return s
}

// Percent converts a per-mille level to the 0..100 the characteristic
// carries. ok is false for unknown readings.
func Percent(perMille int16) (pct uint8, ok bool) {
	if perMille < 0 {
		return 0, false
	}
	v := mathx.MulDivRound(uint32(perMille), 1, 10)
	return uint8(mathx.Clamp(v, 0, 100)), true
}

func (s *Service) PerMilleChanged(perMille int16) {
	s.latest.Store(int32(perMille))
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Failures reports how many characteristic writes failed.
func (s *Service) Failures() uint32 { return s.failures.Load() }

// Run writes the most recent level each time it changes until ctx ends.
// Bursts collapse to the latest value.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
			s.publish()
		}
	}
}

func (s *Service) publish() {
	pct, ok := Percent(int16(s.latest.Load()))
	if !ok || int16(pct) == s.written {
		return
	}
	if err := s.w.WriteLevel(pct); err != nil {
		s.failures.Add(1)
		println("[ble] battery level write failed:", err.Error())
		return
	}
	s.written = int16(pct)
}
