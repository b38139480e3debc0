package ubx

import "fmt"

// Stage is the framer position within the wire format.
type Stage uint8

const (
	AwaitSync1 Stage = iota
	AwaitSync2
	AwaitClass
	AwaitID
	AwaitLenLo
	AwaitLenHi
	AwaitPayload
	AwaitChecksumA
	AwaitChecksumB
)

var stageNames = [...]string{
	AwaitSync1:     "await-sync1",
	AwaitSync2:     "await-sync2",
	AwaitClass:     "await-class",
	AwaitID:        "await-id",
	AwaitLenLo:     "await-len-lo",
	AwaitLenHi:     "await-len-hi",
	AwaitPayload:   "await-payload",
	AwaitChecksumA: "await-checksum-a",
	AwaitChecksumB: "await-checksum-b",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", uint8(s))
}

// State is the complete framer state between two input bytes. The zero value
// is AwaitSync1 with nothing buffered.
//
// The payload buffer is owned by the chain of states derived from the one that
// allocated it; a State should not be stepped twice.
type State struct {
	Stage     Stage
	Class     uint8
	ID        uint8
	Length    uint16
	Remaining int
	Payload   []byte
	CkA       uint8
}

// EmissionKind classifies what a single framer step produced.
type EmissionKind uint8

const (
	EmitNone EmissionKind = iota
	// EmitFrame carries a checksum-valid Frame.
	EmitFrame
	// EmitInvalid carries the raw bytes of a rejected frame and the reason.
	EmitInvalid
	// EmitDesync marks a byte discarded while hunting for sync.
	EmitDesync
)

type Emission struct {
	Kind  EmissionKind
	Frame Frame
	Raw   []byte
	Err   error
}

// Limits bounds what the framer will buffer.
type Limits struct {
	// MaxPayload rejects frames declaring a longer payload. 0 means the full
	// 16-bit range.
	MaxPayload int
}

// DefaultLimits collects every declared length up to the 16-bit maximum.
func DefaultLimits() Limits {
	return Limits{}
}

// Step advances the framer by one byte using DefaultLimits.
func Step(st State, b byte) (State, Emission) {
	return DefaultLimits().Step(st, b)
}

// Step is the framer transition function: it consumes exactly one byte and
// returns the next state plus whatever that byte completed. Every emission of
// EmitFrame or EmitInvalid leaves the returned state at AwaitSync1.
func (l Limits) Step(st State, b byte) (State, Emission) {
	switch st.Stage {
	case AwaitSync1:
		if b == Sync1 {
			return State{Stage: AwaitSync2}, Emission{}
		}
		return State{}, Emission{Kind: EmitDesync, Raw: []byte{b}, Err: ErrFramingDesync}

	case AwaitSync2:
		if b == Sync2 {
			return State{Stage: AwaitClass}, Emission{}
		}
		// The failing byte is not reconsidered as a new Sync1.
		return State{}, Emission{Kind: EmitDesync, Raw: []byte{Sync1, b}, Err: ErrFramingDesync}

	case AwaitClass:
		return State{Stage: AwaitID, Class: b}, Emission{}

	case AwaitID:
		st.ID = b
		st.Stage = AwaitLenLo
		return st, Emission{}

	case AwaitLenLo:
		st.Length = uint16(b)
		st.Stage = AwaitLenHi
		return st, Emission{}

	case AwaitLenHi:
		st.Length |= uint16(b) << 8
		n := int(st.Length)
		if l.MaxPayload > 0 && n > l.MaxPayload {
			return State{}, Emission{Kind: EmitInvalid, Raw: st.header(), Err: &ProtocolError{ID: Identity{st.Class, st.ID}, Len: n, Err: ErrPayloadTooLarge}}
		}
		st.Remaining = n
		st.Payload = make([]byte, 0, n)
		if n == 0 {
			st.Stage = AwaitChecksumA
			return st, Emission{}
		}
		st.Stage = AwaitPayload
		return st, Emission{}

	case AwaitPayload:
		st.Payload = append(st.Payload, b)
		st.Remaining--
		if st.Remaining <= 0 {
			st.Remaining = 0
			st.Stage = AwaitChecksumA
		}
		return st, Emission{}

	case AwaitChecksumA:
		st.CkA = b
		st.Stage = AwaitChecksumB
		return st, Emission{}

	case AwaitChecksumB:
		f := Frame{Class: st.Class, ID: st.ID, Payload: st.Payload}
		ckA, ckB := f.Checksum()
		if ckA != st.CkA || ckB != b {
			raw := append(st.header(), st.Payload...)
			raw = append(raw, st.CkA, b)
			return State{}, Emission{Kind: EmitInvalid, Raw: raw, Err: &ProtocolError{ID: f.Identity(), Len: len(f.Payload), Err: ErrChecksumMismatch}}
		}
		return State{}, Emission{Kind: EmitFrame, Frame: f}

	default:
		return State{}, Emission{Kind: EmitDesync, Raw: []byte{b}, Err: ErrFramingDesync}
	}
}

func (st State) header() []byte {
	return []byte{Sync1, Sync2, st.Class, st.ID, byte(st.Length), byte(st.Length >> 8)}
}

// Parser wraps the transition function with a persistent state. It can be fed
// byte sequences in chunks of any size; a short read leaves it exactly where it
// stopped.
type Parser struct {
	limits Limits
	st     State

	desync uint64
}

func NewParser(l Limits) *Parser {
	return &Parser{limits: l}
}

// Push consumes one byte. It returns true when the byte completed a frame,
// valid (EmitFrame) or not (EmitInvalid). Desync bytes are only counted.
func (p *Parser) Push(b byte) (Emission, bool) {
	next, em := p.limits.Step(p.st, b)
	p.st = next
	switch em.Kind {
	case EmitFrame, EmitInvalid:
		return em, true
	case EmitDesync:
		p.desync += uint64(len(em.Raw))
	}
	return Emission{}, false
}

// Feed pushes every byte of data and returns the completed emissions in order.
func (p *Parser) Feed(data []byte) []Emission {
	var out []Emission
	for _, b := range data {
		if em, ok := p.Push(b); ok {
			out = append(out, em)
		}
	}
	return out
}

func (p *Parser) Stage() Stage {
	return p.st.Stage
}

// DesyncBytes counts bytes discarded while hunting for sync.
func (p *Parser) DesyncBytes() uint64 {
	return p.desync
}

func (p *Parser) Reset() {
	p.st = State{}
}
