package ubx

import (
	"encoding/binary"
	"math"
	"time"
)

// Fixed-point scales used by the NAV messages.
const (
	degScale     = 1e7 // deg -> 1e-7 deg
	headingScale = 1e5 // deg -> 1e-5 deg
	mmScale      = 1e3 // m -> mm
	cmScale      = 1e2 // m -> cm
	dopScale     = 1e2
	magScale     = 1e2
)

// GNSS fix types as reported by NAV-STATUS and NAV-PVT.
const (
	FixNone       = 0x00
	FixDeadReckon = 0x01
	Fix2D         = 0x02
	Fix3D         = 0x03
	FixGNSSDR     = 0x04
	FixTimeOnly   = 0x05
)

// NAV-STATUS flags.
const (
	StatusGPSFixOK = 0x01
	StatusDiffSoln = 0x02
	StatusWKNSet   = 0x04
	StatusTOWSet   = 0x08
)

// NAV-TIMEUTC valid flags.
const (
	TimeUTCValidTOW = 0x01
	TimeUTCValidWKN = 0x02
	TimeUTCValidUTC = 0x04
)

// NAV-PVT valid and flags bits.
const (
	PVTValidDate          = 0x01
	PVTValidTime          = 0x02
	PVTValidFullyResolved = 0x04
	PVTValidMag           = 0x08

	PVTFlagGNSSFixOK = 0x01
	PVTFlagHeadVeh   = 0x20
)

const (
	NavPosLLHLen  = 28
	NavStatusLen  = 16
	NavPVTLen     = 92
	NavVelNEDLen  = 36
	NavTimeUTCLen = 20
)

// NavPoll is a zero-length request for one NAV message.
type NavPoll struct {
	Msg Identity
}

// NavPosLLH is the geodetic position solution. Angles in degrees, lengths in
// metres.
type NavPosLLH struct {
	ITOW    uint32
	LonDeg  float64
	LatDeg  float64
	HeightM float64
	HMSLM   float64
	HAccM   float64
	VAccM   float64
}

func (m *NavPosLLH) Identity() Identity { return IDNavPosLLH }

func (m *NavPosLLH) AppendPayload(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, m.ITOW)
	b = appendI32(b, m.LonDeg, degScale)
	b = appendI32(b, m.LatDeg, degScale)
	b = appendI32(b, m.HeightM, mmScale)
	b = appendI32(b, m.HMSLM, mmScale)
	b = appendU32(b, m.HAccM, mmScale)
	return appendU32(b, m.VAccM, mmScale)
}

// NavStatus reports fix state and time since startup.
type NavStatus struct {
	ITOW    uint32
	FixType uint8
	Flags   uint8
	FixStat uint8
	Flags2  uint8
	TTFFMs  uint32
	MSSSMs  uint32
}

func (m *NavStatus) Identity() Identity { return IDNavStatus }

func (m *NavStatus) AppendPayload(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, m.ITOW)
	b = append(b, m.FixType, m.Flags, m.FixStat, m.Flags2)
	b = binary.LittleEndian.AppendUint32(b, m.TTFFMs)
	return binary.LittleEndian.AppendUint32(b, m.MSSSMs)
}

// NavVelNED is the velocity solution in the local NED frame, in m/s.
type NavVelNED struct {
	ITOW        uint32
	VelN        float64
	VelE        float64
	VelD        float64
	Speed       float64
	GroundSpeed float64
	HeadingDeg  float64
	SAcc        float64
	CAccDeg     float64
}

func (m *NavVelNED) Identity() Identity { return IDNavVelNED }

func (m *NavVelNED) AppendPayload(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, m.ITOW)
	b = appendI32(b, m.VelN, cmScale)
	b = appendI32(b, m.VelE, cmScale)
	b = appendI32(b, m.VelD, cmScale)
	b = appendU32(b, m.Speed, cmScale)
	b = appendU32(b, m.GroundSpeed, cmScale)
	b = appendI32(b, m.HeadingDeg, headingScale)
	b = appendU32(b, m.SAcc, cmScale)
	return appendU32(b, m.CAccDeg, headingScale)
}

// NavTimeUTC is the UTC time solution.
type NavTimeUTC struct {
	ITOW   uint32
	TAccNs uint32
	Time   time.Time
	Valid  uint8
}

func (m *NavTimeUTC) Identity() Identity { return IDNavTimeUTC }

func (m *NavTimeUTC) AppendPayload(b []byte) []byte {
	t := m.Time.UTC()
	b = binary.LittleEndian.AppendUint32(b, m.ITOW)
	b = binary.LittleEndian.AppendUint32(b, m.TAccNs)
	b = binary.LittleEndian.AppendUint32(b, uint32(int32(t.Nanosecond())))
	b = binary.LittleEndian.AppendUint16(b, uint16(t.Year()))
	b = append(b, byte(t.Month()), byte(t.Day()), byte(t.Hour()), byte(t.Minute()), byte(t.Second()))
	return append(b, m.Valid)
}

// NavPVT is the combined position, velocity and time solution.
type NavPVT struct {
	ITOW    uint32
	Time    time.Time
	Valid   uint8
	TAccNs  uint32
	FixType uint8
	Flags   uint8
	Flags2  uint8
	NumSV   uint8

	LonDeg  float64
	LatDeg  float64
	HeightM float64
	HMSLM   float64
	HAccM   float64
	VAccM   float64

	VelN        float64
	VelE        float64
	VelD        float64
	GroundSpeed float64
	HeadMotDeg  float64
	SAcc        float64
	HeadAccDeg  float64
	PDOP        float64

	HeadVehDeg float64
	MagDecDeg  float64
	MagAccDeg  float64
}

// NAV-PVT payload offsets.
const (
	pvtYear    = 4
	pvtValid   = 11
	pvtNano    = 16
	pvtFixType = 20
	pvtLon     = 24
	pvtGSpeed  = 60
	pvtPDOP    = 76
	pvtHeadVeh = 84
)

func (m *NavPVT) Identity() Identity { return IDNavPVT }

func (m *NavPVT) AppendPayload(b []byte) []byte {
	t := m.Time.UTC()
	b = binary.LittleEndian.AppendUint32(b, m.ITOW)
	b = binary.LittleEndian.AppendUint16(b, uint16(t.Year()))
	b = append(b, byte(t.Month()), byte(t.Day()), byte(t.Hour()), byte(t.Minute()), byte(t.Second()), m.Valid)
	b = binary.LittleEndian.AppendUint32(b, m.TAccNs)
	b = binary.LittleEndian.AppendUint32(b, uint32(int32(t.Nanosecond())))
	b = append(b, m.FixType, m.Flags, m.Flags2, m.NumSV)
	b = appendI32(b, m.LonDeg, degScale)
	b = appendI32(b, m.LatDeg, degScale)
	b = appendI32(b, m.HeightM, mmScale)
	b = appendI32(b, m.HMSLM, mmScale)
	b = appendU32(b, m.HAccM, mmScale)
	b = appendU32(b, m.VAccM, mmScale)
	// NAV-PVT velocities are mm/s, unlike NAV-VELNED.
	b = appendI32(b, m.VelN, mmScale)
	b = appendI32(b, m.VelE, mmScale)
	b = appendI32(b, m.VelD, mmScale)
	b = appendI32(b, m.GroundSpeed, mmScale)
	b = appendI32(b, m.HeadMotDeg, headingScale)
	b = appendU32(b, m.SAcc, mmScale)
	b = appendU32(b, m.HeadAccDeg, headingScale)
	b = binary.LittleEndian.AppendUint16(b, uint16(clampRound(m.PDOP*dopScale, 0, math.MaxUint16)))
	b = append(b, 0, 0, 0, 0, 0, 0) // flags3 + reserved
	b = appendI32(b, m.HeadVehDeg, headingScale)
	b = binary.LittleEndian.AppendUint16(b, uint16(int16(clampRound(m.MagDecDeg*magScale, math.MinInt16, math.MaxInt16))))
	return binary.LittleEndian.AppendUint16(b, uint16(clampRound(m.MagAccDeg*magScale, 0, math.MaxUint16)))
}

func appendI32(b []byte, v, scale float64) []byte {
	return binary.LittleEndian.AppendUint32(b, uint32(int32(clampRound(v*scale, math.MinInt32, math.MaxInt32))))
}

func appendU32(b []byte, v, scale float64) []byte {
	return binary.LittleEndian.AppendUint32(b, uint32(clampRound(v*scale, 0, math.MaxUint32)))
}

func clampRound(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Round(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
