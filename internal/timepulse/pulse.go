// Package timepulse renders the CFG-TP5 time pulse on a digital output.
package timepulse

import (
	"time"

	"ubx-sim/internal/ubx"
)

// Line is a digital output.
type Line interface {
	SetValue(v int) error
	Close() error
}

// NopLine discards every value.
type NopLine struct{}

func (NopLine) SetValue(int) error { return nil }
func (NopLine) Close() error       { return nil }

// Pulser evaluates a CFG-TP5 configuration against the clock and sets the
// line level whenever it changes. Update is meant to be called from the
// receiver loop, so edge timing is limited by the loop period.
type Pulser struct {
	line  Line
	start time.Time
	level int
	set   bool
	edges uint64
}

func NewPulser(line Line, start time.Time) *Pulser {
	if line == nil {
		line = NopLine{}
	}
	return &Pulser{line: line, start: start}
}

// Update drives the line for instant now. locked reports whether the
// navigation solution is valid.
func (p *Pulser) Update(now time.Time, tp ubx.CfgTP5, locked bool) error {
	level := Level(now, p.start, tp, locked)
	if p.set && level == p.level {
		return nil
	}
	if err := p.line.SetValue(level); err != nil {
		return err
	}
	if p.set {
		p.edges++
	}
	p.level, p.set = level, true
	return nil
}

// Edges counts level changes after the first write.
func (p *Pulser) Edges() uint64 {
	return p.edges
}

func (p *Pulser) Close() error {
	if p.set && p.level != 0 {
		_ = p.line.SetValue(0)
	}
	return p.line.Close()
}

// Timing resolves the period and pulse length of tp in nanoseconds. A zero
// period means no pulse.
func Timing(tp ubx.CfgTP5, locked bool) (periodNs, lengthNs int64) {
	period, pulse := tp.FreqPeriod, tp.PulseLenRatio
	if locked && tp.Has(ubx.TP5LockedOtherSet) {
		period, pulse = tp.FreqPeriodLock, tp.PulseLenRatioLock
	}
	if tp.Has(ubx.TP5IsFreq) {
		if period == 0 {
			return 0, 0
		}
		periodNs = int64(time.Second) / int64(period)
	} else {
		periodNs = int64(period) * int64(time.Microsecond)
	}
	if periodNs <= 0 {
		return 0, 0
	}
	if tp.Has(ubx.TP5IsLength) {
		lengthNs = int64(pulse) * int64(time.Microsecond)
	} else {
		lengthNs = int64(float64(periodNs) * float64(pulse) / (1 << 32))
	}
	return periodNs, min(lengthNs, periodNs)
}

// Level is the line level at now. With TP5Polarity the pulse is high at the
// top of the period; without it the line idles high and pulses low. Cable and
// user delays shift the pulse later.
func Level(now, start time.Time, tp ubx.CfgTP5, locked bool) int {
	idle := 0
	if !tp.Has(ubx.TP5Polarity) {
		idle = 1
	}
	if !tp.Has(ubx.TP5Active) {
		return idle
	}
	periodNs, lengthNs := Timing(tp, locked)
	if periodNs == 0 || lengthNs == 0 {
		return idle
	}

	delay := int64(tp.AntCableDelayNs) + int64(tp.RfGroupDelayNs) + int64(tp.UserConfigDelayNs)
	var t int64
	if tp.Has(ubx.TP5AlignToTow) {
		t = now.UnixNano()
	} else {
		t = now.Sub(start).Nanoseconds()
	}
	phase := (t - delay) % periodNs
	if phase < 0 {
		phase += periodNs
	}
	if phase < lengthNs {
		return 1 - idle
	}
	return idle
}
