package ubx

import "strings"

// Ack acknowledges a CFG input message.
type Ack struct {
	Msg Identity
}

func (m *Ack) Identity() Identity { return IDAckAck }

func (m *Ack) AppendPayload(b []byte) []byte {
	return append(b, m.Msg.Class, m.Msg.ID)
}

// Nak rejects a CFG input message.
type Nak struct {
	Msg Identity
}

func (m *Nak) Identity() Identity { return IDAckNak }

func (m *Nak) AppendPayload(b []byte) []byte {
	return append(b, m.Msg.Class, m.Msg.ID)
}

const AckLen = 2

type MonVerPoll struct{}

// MonVer reports receiver software/hardware versions. Strings are truncated to
// leave room for the NUL terminator of each fixed-width field.
type MonVer struct {
	SWVersion  string
	HWVersion  string
	Extensions []string
}

const (
	monVerSWLen  = 30
	monVerHWLen  = 10
	monVerExtLen = 30
)

func (m *MonVer) Identity() Identity { return IDMonVer }

func (m *MonVer) AppendPayload(b []byte) []byte {
	b = appendCString(b, m.SWVersion, monVerSWLen)
	b = appendCString(b, m.HWVersion, monVerHWLen)
	for _, ext := range m.Extensions {
		b = appendCString(b, ext, monVerExtLen)
	}
	return b
}

func appendCString(b []byte, s string, width int) []byte {
	s = strings.ToValidUTF8(s, "?")
	if len(s) > width-1 {
		s = s[:width-1]
	}
	b = append(b, s...)
	for i := len(s); i < width; i++ {
		b = append(b, 0)
	}
	return b
}
