package ubx

import (
	"fmt"
	"slices"
)

// Message is a decoded inbound message. The set of implementations is closed:
// one type per supported shape plus Other for everything unrecognized.
type Message interface {
	isMessage()
}

// Outbound is a message the receiver can transmit.
type Outbound interface {
	Identity() Identity
	AppendPayload(b []byte) []byte
}

// Other wraps a valid frame whose identity has no decoder.
type Other struct {
	Frame Frame
}

func (*CfgPrtPoll) isMessage()  {}
func (*CfgPrt) isMessage()      {}
func (*CfgMsgPoll) isMessage()  {}
func (*CfgMsgSet) isMessage()   {}
func (*CfgMsg) isMessage()      {}
func (*CfgRst) isMessage()      {}
func (*CfgRatePoll) isMessage() {}
func (*CfgRate) isMessage()     {}
func (*CfgCfg) isMessage()      {}
func (*CfgTP5Poll) isMessage()  {}
func (*CfgTP5) isMessage()      {}
func (*MonVerPoll) isMessage()  {}
func (*NavPoll) isMessage()     {}
func (*Other) isMessage()       {}

// shape is the length contract of one identity. in lists the payload lengths
// accepted on input (nil: output only); out validates an outbound payload
// length (nil: input only).
type shape struct {
	in     []int
	decode func(id Identity, p []byte) Message
	out    func(n int) bool
}

func fixed(n int) func(int) bool {
	return func(got int) bool { return got == n }
}

func navPoll(id Identity, _ []byte) Message { return &NavPoll{Msg: id} }

var shapes = map[Identity]shape{
	IDCfgPrt: {
		in: []int{0, 1, CfgPrtLen},
		decode: func(_ Identity, p []byte) Message {
			switch len(p) {
			case 0:
				return &CfgPrtPoll{}
			case 1:
				return &CfgPrtPoll{PortID: p[0], Explicit: true}
			}
			return decodeCfgPrt(p)
		},
		out: fixed(CfgPrtLen),
	},
	IDCfgMsg: {
		in:     []int{2, 3, CfgMsgLen},
		decode: func(_ Identity, p []byte) Message { return decodeCfgMsg(p) },
		out:    fixed(CfgMsgLen),
	},
	IDCfgRst: {
		in: []int{4},
		decode: func(_ Identity, p []byte) Message {
			return &CfgRst{NavBbrMask: uint16(p[0]) | uint16(p[1])<<8, ResetMode: p[2]}
		},
		out: fixed(4),
	},
	IDCfgRate: {
		in: []int{0, CfgRateLen},
		decode: func(_ Identity, p []byte) Message {
			if len(p) == 0 {
				return &CfgRatePoll{}
			}
			return &CfgRate{
				MeasRateMs: uint16(p[0]) | uint16(p[1])<<8,
				NavRate:    uint16(p[2]) | uint16(p[3])<<8,
				TimeRef:    uint16(p[4]) | uint16(p[5])<<8,
			}
		},
		out: fixed(CfgRateLen),
	},
	IDCfgCfg: {
		in:     []int{12, 13},
		decode: func(_ Identity, p []byte) Message { return decodeCfgCfg(p) },
	},
	IDCfgTP5: {
		in: []int{0, 1, CfgTP5Len},
		decode: func(_ Identity, p []byte) Message {
			switch len(p) {
			case 0:
				return &CfgTP5Poll{}
			case 1:
				return &CfgTP5Poll{TPIdx: p[0]}
			}
			return decodeCfgTP5(p)
		},
		out: fixed(CfgTP5Len),
	},
	IDMonVer: {
		in:     []int{0},
		decode: func(Identity, []byte) Message { return &MonVerPoll{} },
		out: func(n int) bool {
			return n >= monVerSWLen+monVerHWLen && (n-monVerSWLen-monVerHWLen)%monVerExtLen == 0
		},
	},
	IDAckAck:     {out: fixed(AckLen)},
	IDAckNak:     {out: fixed(AckLen)},
	IDNavPosLLH:  {in: []int{0}, decode: navPoll, out: fixed(NavPosLLHLen)},
	IDNavStatus:  {in: []int{0}, decode: navPoll, out: fixed(NavStatusLen)},
	IDNavPVT:     {in: []int{0}, decode: navPoll, out: fixed(NavPVTLen)},
	IDNavVelNED:  {in: []int{0}, decode: navPoll, out: fixed(NavVelNEDLen)},
	IDNavTimeUTC: {in: []int{0}, decode: navPoll, out: fixed(NavTimeUTCLen)},
}

// Supported reports whether id has an inbound decoder.
func Supported(id Identity) bool {
	s, ok := shapes[id]
	return ok && s.decode != nil
}

// AcceptedLengths returns the inbound payload lengths accepted for id.
func AcceptedLengths(id Identity) []int {
	return slices.Clone(shapes[id].in)
}

// Decode interprets a validated frame according to its identity's length
// contract. A known identity with a payload length outside its accepted set
// yields a *ProtocolError wrapping ErrUnsupportedPayloadLength; an unknown
// identity decodes to *Other.
func Decode(f Frame) (Message, error) {
	id := f.Identity()
	if !Supported(id) {
		return &Other{Frame: f}, nil
	}
	s := shapes[id]
	if !slices.Contains(s.in, len(f.Payload)) {
		return nil, &ProtocolError{ID: id, Len: len(f.Payload), Err: ErrUnsupportedPayloadLength}
	}
	return s.decode(id, f.Payload), nil
}

// Encode serializes m into a complete frame. A payload length that violates
// the declared shape of m's identity is an internal inconsistency and panics.
func Encode(m Outbound) []byte {
	id := m.Identity()
	payload := m.AppendPayload(make([]byte, 0, 64))
	s, ok := shapes[id]
	if !ok || s.out == nil {
		panic(fmt.Sprintf("ubx: no outbound shape for %s", Name(id)))
	}
	if !s.out(len(payload)) {
		panic(fmt.Sprintf("ubx: %s payload length %d violates its shape", Name(id), len(payload)))
	}
	return EncodeFrame(id, payload)
}
