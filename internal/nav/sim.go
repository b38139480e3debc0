// Package nav simulates the navigation solution reported by the receiver.
package nav

import (
	"math"
	"time"

	"ubx-sim/internal/ubx"
)

// metres per degree of latitude, small-angle approximation.
const metresPerDeg = 111320.0

// Config describes the simulated track and acquisition behaviour.
type Config struct {
	CenterLatDeg float64
	CenterLonDeg float64
	AltMSLM      float64
	GeoidSepM    float64
	RadiusM      float64
	Period       time.Duration
	TTFF         time.Duration
	NumSV        uint8
}

func (c Config) withDefaults() Config {
	if c.Period <= 0 {
		c.Period = 120 * time.Second
	}
	if c.RadiusM <= 0 {
		c.RadiusM = 500
	}
	if c.NumSV == 0 {
		c.NumSV = 9
	}
	return c
}

// StartMode selects how much receiver state a restart discards.
type StartMode int

const (
	HotStart StartMode = iota
	WarmStart
	ColdStart
)

func (m StartMode) String() string {
	switch m {
	case HotStart:
		return "hot"
	case WarmStart:
		return "warm"
	case ColdStart:
		return "cold"
	}
	return "unknown"
}

// ttffFactor scales the configured time to first fix.
func (m StartMode) ttffFactor() time.Duration {
	switch m {
	case WarmStart:
		return 2
	case ColdStart:
		return 4
	}
	return 1
}

// StartModeForMask maps a CFG-RST navBbrMask to a start mode. Any mask other
// than the hot and warm presets discards enough to count as a cold start.
func StartModeForMask(navBbrMask uint16) StartMode {
	switch navBbrMask {
	case 0x0000:
		return HotStart
	case 0x0001:
		return WarmStart
	}
	return ColdStart
}

// Simulator produces a deterministic figure-eight track around the configured
// centre. Fix acquisition starts at boot and after every Restart.
type Simulator struct {
	cfg  Config
	boot time.Time
	ttff time.Duration
}

func NewSimulator(cfg Config, now time.Time) *Simulator {
	s := &Simulator{cfg: cfg.withDefaults()}
	s.Restart(ColdStart, now)
	return s
}

// Restart begins a new acquisition at now.
func (s *Simulator) Restart(mode StartMode, now time.Time) {
	s.boot = now
	s.ttff = s.cfg.TTFF * mode.ttffFactor()
}

// Solution is a navigation solution at one instant. Units are degrees,
// metres and metres per second.
type Solution struct {
	Time  time.Time
	Week  uint16
	ITOW  uint32
	Fix   uint8
	FixOK bool
	NumSV uint8

	LatDeg  float64
	LonDeg  float64
	HeightM float64
	HMSLM   float64
	HAccM   float64
	VAccM   float64

	VelN        float64
	VelE        float64
	VelD        float64
	GroundSpeed float64
	Speed       float64
	HeadingDeg  float64
	SAcc        float64
	HeadAccDeg  float64
	PDOP        float64
	TAccNs      uint32

	// TTFF is zero until the first fix.
	TTFF time.Duration
	MSSS time.Duration
}

// Solution evaluates the track at now.
func (s *Simulator) Solution(now time.Time) Solution {
	sol := Solution{Time: now.UTC()}
	sol.Week, sol.ITOW = GPSTime(now)
	sol.MSSS = now.Sub(s.boot)
	if sol.MSSS < 0 {
		sol.MSSS = 0
	}

	sol.LatDeg, sol.LonDeg, sol.VelN, sol.VelE = s.horizontal(now)
	sol.HMSLM, sol.VelD = s.vertical(now)
	sol.HeightM = sol.HMSLM + s.cfg.GeoidSepM
	sol.GroundSpeed = math.Hypot(sol.VelN, sol.VelE)
	sol.Speed = math.Sqrt(sol.GroundSpeed*sol.GroundSpeed + sol.VelD*sol.VelD)
	sol.HeadingDeg = math.Mod(math.Atan2(sol.VelE, sol.VelN)*180/math.Pi+360, 360)

	if sol.MSSS < s.ttff {
		sol.Fix = ubx.FixNone
		sol.NumSV = s.cfg.NumSV / 3
		sol.HAccM, sol.VAccM = 9999, 9999
		sol.SAcc, sol.HeadAccDeg = 20, 180
		sol.PDOP = 99.99
		sol.TAccNs = 1_000_000_000
		return sol
	}
	sol.Fix = ubx.Fix3D
	sol.FixOK = true
	sol.NumSV = s.cfg.NumSV
	sol.TTFF = s.ttff
	sol.HAccM, sol.VAccM = 1.5, 2.5
	sol.SAcc, sol.HeadAccDeg = 0.2, 0.5
	sol.PDOP = 1.3
	sol.TAccNs = 20
	return sol
}

// horizontal is a Lissajous figure-eight: x = cos(w), y = 0.5*sin(2w).
func (s *Simulator) horizontal(now time.Time) (latDeg, lonDeg, velN, velE float64) {
	period := s.cfg.Period
	phase := float64(now.UnixNano()%period.Nanoseconds()) / float64(period.Nanoseconds())
	w := 2 * math.Pi * phase
	x := math.Cos(w)
	y := 0.5 * math.Sin(2*w)

	radiusDeg := s.cfg.RadiusM / metresPerDeg
	latDeg = s.cfg.CenterLatDeg + radiusDeg*y
	lonDeg = s.cfg.CenterLonDeg + (radiusDeg*x)/math.Cos(s.cfg.CenterLatDeg*math.Pi/180.0)

	omega := 2 * math.Pi / period.Seconds()
	velE = -s.cfg.RadiusM * omega * math.Sin(w)
	velN = s.cfg.RadiusM * omega * math.Cos(2*w)
	return latDeg, lonDeg, velN, velE
}

// vertical is a slow sinusoid around AltMSLM, decoupled from the horizontal
// period.
func (s *Simulator) vertical(now time.Time) (hmslM, velD float64) {
	vp := s.cfg.Period / 2
	if vp < 30*time.Second {
		vp = 30 * time.Second
	}
	const amp = 5.0
	phase := float64(now.UnixNano()%vp.Nanoseconds()) / float64(vp.Nanoseconds())
	w := 2 * math.Pi * phase
	hmslM = s.cfg.AltMSLM + amp*math.Sin(w)
	velD = -amp * (2 * math.Pi / vp.Seconds()) * math.Cos(w)
	return hmslM, velD
}
