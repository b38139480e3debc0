package ubx

import "encoding/binary"

// CfgPrtPoll asks for the settings of one port. A zero-length poll (Explicit
// false) refers to the port the request arrived on.
type CfgPrtPoll struct {
	PortID   uint8
	Explicit bool
}

// CfgPrt is the 20-byte port configuration, both as a set request and as the
// poll response.
type CfgPrt struct {
	PortID       uint8
	TxReady      uint16
	Mode         uint32
	BaudRate     uint32
	InProtoMask  uint16
	OutProtoMask uint16
	Flags        uint16
}

const CfgPrtLen = 20

// Protocol mask bits for CfgPrt in/out masks.
const (
	ProtoUBX   = 0x0001
	ProtoNMEA  = 0x0002
	ProtoRTCM  = 0x0004
	ProtoRTCM3 = 0x0020
)

// ModeUART8N1 is the CFG-PRT mode word for 8 data bits, no parity, 1 stop bit.
const ModeUART8N1 = 0x000008C0

func decodeCfgPrt(p []byte) *CfgPrt {
	return &CfgPrt{
		PortID:       p[0],
		TxReady:      binary.LittleEndian.Uint16(p[2:4]),
		Mode:         binary.LittleEndian.Uint32(p[4:8]),
		BaudRate:     binary.LittleEndian.Uint32(p[8:12]),
		InProtoMask:  binary.LittleEndian.Uint16(p[12:14]),
		OutProtoMask: binary.LittleEndian.Uint16(p[14:16]),
		Flags:        binary.LittleEndian.Uint16(p[16:18]),
	}
}

func (m *CfgPrt) Identity() Identity { return IDCfgPrt }

func (m *CfgPrt) AppendPayload(b []byte) []byte {
	b = append(b, m.PortID, 0)
	b = binary.LittleEndian.AppendUint16(b, m.TxReady)
	b = binary.LittleEndian.AppendUint32(b, m.Mode)
	b = binary.LittleEndian.AppendUint32(b, m.BaudRate)
	b = binary.LittleEndian.AppendUint16(b, m.InProtoMask)
	b = binary.LittleEndian.AppendUint16(b, m.OutProtoMask)
	b = binary.LittleEndian.AppendUint16(b, m.Flags)
	return append(b, 0, 0)
}

// CfgMsgPoll asks for the output rates of Msg.
type CfgMsgPoll struct {
	Msg Identity
}

// CfgMsgSet sets the rate of Msg on the port the request arrived on.
type CfgMsgSet struct {
	Msg  Identity
	Rate uint8
}

// CfgMsg carries the per-port rates of Msg, in navigation solutions per output
// (0 disables the message on that port).
type CfgMsg struct {
	Msg   Identity
	Rates [NumPorts]uint8
}

const CfgMsgLen = 2 + NumPorts

func (m *CfgMsg) Identity() Identity { return IDCfgMsg }

func (m *CfgMsg) AppendPayload(b []byte) []byte {
	b = append(b, m.Msg.Class, m.Msg.ID)
	return append(b, m.Rates[:]...)
}

func decodeCfgMsg(p []byte) Message {
	msg := Identity{Class: p[0], ID: p[1]}
	switch len(p) {
	case 2:
		return &CfgMsgPoll{Msg: msg}
	case 3:
		return &CfgMsgSet{Msg: msg, Rate: p[2]}
	}
	m := &CfgMsg{Msg: msg}
	copy(m.Rates[:], p[2:])
	return m
}

// CfgRst requests a receiver restart.
type CfgRst struct {
	NavBbrMask uint16
	ResetMode  uint8
}

// Well-known navBbrMask values.
const (
	HotStart  = 0x0000
	WarmStart = 0x0001
	ColdStart = 0xFFFF
)

func (m *CfgRst) Identity() Identity { return IDCfgRst }

func (m *CfgRst) AppendPayload(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, m.NavBbrMask)
	return append(b, m.ResetMode, 0)
}

type CfgRatePoll struct{}

// CfgRate is the navigation/measurement rate configuration.
type CfgRate struct {
	MeasRateMs uint16
	NavRate    uint16
	TimeRef    uint16
}

const CfgRateLen = 6

// MinMeasRateMs is the fastest measurement period the receiver accepts.
const MinMeasRateMs = 25

func (m *CfgRate) Identity() Identity { return IDCfgRate }

func (m *CfgRate) AppendPayload(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, m.MeasRateMs)
	b = binary.LittleEndian.AppendUint16(b, m.NavRate)
	return binary.LittleEndian.AppendUint16(b, m.TimeRef)
}

// CfgCfg clears, saves or loads configuration sections.
type CfgCfg struct {
	ClearMask     uint32
	SaveMask      uint32
	LoadMask      uint32
	DeviceMask    uint8
	HasDeviceMask bool
}

func decodeCfgCfg(p []byte) *CfgCfg {
	m := &CfgCfg{
		ClearMask: binary.LittleEndian.Uint32(p[0:4]),
		SaveMask:  binary.LittleEndian.Uint32(p[4:8]),
		LoadMask:  binary.LittleEndian.Uint32(p[8:12]),
	}
	if len(p) == 13 {
		m.DeviceMask = p[12]
		m.HasDeviceMask = true
	}
	return m
}

type CfgTP5Poll struct {
	TPIdx uint8
}

// CFG-TP5 payload layout (32 bytes)
// Offset 0:   tpIdx (1)
// Offset 1:   version (1)
// Offset 2-4: reserved (2)
// Offset 4-6: antCableDelay (2, int16, ns)
// Offset 6-8: rfGroupDelay (2, int16, ns)
// Offset 8:   freqPeriod (4), freqPeriodLock (4)
// Offset 16:  pulseLenRatio (4), pulseLenRatioLock (4)
// Offset 24:  userConfigDelay (4, int32, ns)
// Offset 28:  flags (4)
const CfgTP5Len = 32

// TP5 flag bits.
const (
	TP5Active         = 0x01
	TP5LockGnssFreq   = 0x02
	TP5LockedOtherSet = 0x04
	TP5IsFreq         = 0x08
	TP5IsLength       = 0x10
	TP5AlignToTow     = 0x20
	TP5Polarity       = 0x40
	TP5GridUtcGnss    = 0x80
)

// CfgTP5 configures a time pulse. With TP5IsFreq the period fields are in Hz,
// otherwise in microseconds; with TP5IsLength the pulse fields are lengths in
// microseconds, otherwise duty ratios scaled by 2^-32.
type CfgTP5 struct {
	TPIdx             uint8
	Version           uint8
	AntCableDelayNs   int16
	RfGroupDelayNs    int16
	FreqPeriod        uint32
	FreqPeriodLock    uint32
	PulseLenRatio     uint32
	PulseLenRatioLock uint32
	UserConfigDelayNs int32
	Flags             uint32
}

// DefaultTP5 is a 1 Hz, 100 ms pulse aligned to the top of the second.
func DefaultTP5() CfgTP5 {
	return CfgTP5{
		TPIdx:             0,
		Version:           1,
		AntCableDelayNs:   50,
		FreqPeriod:        1000000,
		FreqPeriodLock:    1000000,
		PulseLenRatio:     100000,
		PulseLenRatioLock: 100000,
		Flags:             TP5Active | TP5LockGnssFreq | TP5LockedOtherSet | TP5IsLength | TP5AlignToTow | TP5Polarity,
	}
}

func decodeCfgTP5(p []byte) *CfgTP5 {
	return &CfgTP5{
		TPIdx:             p[0],
		Version:           p[1],
		AntCableDelayNs:   int16(binary.LittleEndian.Uint16(p[4:6])),
		RfGroupDelayNs:    int16(binary.LittleEndian.Uint16(p[6:8])),
		FreqPeriod:        binary.LittleEndian.Uint32(p[8:12]),
		FreqPeriodLock:    binary.LittleEndian.Uint32(p[12:16]),
		PulseLenRatio:     binary.LittleEndian.Uint32(p[16:20]),
		PulseLenRatioLock: binary.LittleEndian.Uint32(p[20:24]),
		UserConfigDelayNs: int32(binary.LittleEndian.Uint32(p[24:28])),
		Flags:             binary.LittleEndian.Uint32(p[28:32]),
	}
}

func (m *CfgTP5) Identity() Identity { return IDCfgTP5 }

func (m *CfgTP5) AppendPayload(b []byte) []byte {
	b = append(b, m.TPIdx, m.Version, 0, 0)
	b = binary.LittleEndian.AppendUint16(b, uint16(m.AntCableDelayNs))
	b = binary.LittleEndian.AppendUint16(b, uint16(m.RfGroupDelayNs))
	b = binary.LittleEndian.AppendUint32(b, m.FreqPeriod)
	b = binary.LittleEndian.AppendUint32(b, m.FreqPeriodLock)
	b = binary.LittleEndian.AppendUint32(b, m.PulseLenRatio)
	b = binary.LittleEndian.AppendUint32(b, m.PulseLenRatioLock)
	b = binary.LittleEndian.AppendUint32(b, uint32(m.UserConfigDelayNs))
	return binary.LittleEndian.AppendUint32(b, m.Flags)
}

func (m *CfgTP5) Has(flag uint32) bool {
	return m.Flags&flag != 0
}
