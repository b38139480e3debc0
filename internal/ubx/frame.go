package ubx

import (
	"encoding/binary"
	"fmt"
)

const (
	// headerLen covers sync1, sync2, class, id and the 16-bit length.
	headerLen = 6
	// Overhead is the number of non-payload bytes in an encoded frame.
	Overhead = headerLen + 2

	MaxPayloadLen = 0xFFFF
)

// Frame is one checksum-validated UBX message. Payload length always equals the
// length declared on the wire.
type Frame struct {
	Class   uint8
	ID      uint8
	Payload []byte
}

func (f Frame) Identity() Identity {
	return Identity{Class: f.Class, ID: f.ID}
}

// Checksum returns the checksum over class||id||length||payload.
func (f Frame) Checksum() (ckA, ckB uint8) {
	var c Checksummer
	_ = c.WriteByte(f.Class)
	_ = c.WriteByte(f.ID)
	_ = c.WriteByte(byte(len(f.Payload)))
	_ = c.WriteByte(byte(len(f.Payload) >> 8))
	_, _ = c.Write(f.Payload)
	return c.Sum()
}

// AppendTo appends the encoded frame (sync through checksum) to buf.
func (f Frame) AppendTo(buf []byte) []byte {
	if len(f.Payload) > MaxPayloadLen {
		panic(fmt.Sprintf("ubx: %s payload of %d bytes exceeds 16-bit length", Name(f.Identity()), len(f.Payload)))
	}
	buf = append(buf, Sync1, Sync2, f.Class, f.ID)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(f.Payload)))
	buf = append(buf, f.Payload...)
	ckA, ckB := f.Checksum()
	return append(buf, ckA, ckB)
}

// Bytes returns the complete wire encoding of f.
func (f Frame) Bytes() []byte {
	return f.AppendTo(make([]byte, 0, Overhead+len(f.Payload)))
}

// EncodeFrame builds a complete UBX packet for id carrying payload.
func EncodeFrame(id Identity, payload []byte) []byte {
	return Frame{Class: id.Class, ID: id.ID, Payload: payload}.Bytes()
}

// VerifyPacket reports whether packet is a single well-formed UBX frame with a
// matching checksum, and returns it decoded.
func VerifyPacket(packet []byte) (Frame, bool) {
	if len(packet) < Overhead || packet[0] != Sync1 || packet[1] != Sync2 {
		return Frame{}, false
	}
	n := int(binary.LittleEndian.Uint16(packet[4:6]))
	if len(packet) != Overhead+n {
		return Frame{}, false
	}
	f := Frame{Class: packet[2], ID: packet[3], Payload: packet[headerLen : headerLen+n]}
	ckA, ckB := Checksum(packet[2 : len(packet)-2])
	if packet[len(packet)-2] != ckA || packet[len(packet)-1] != ckB {
		return Frame{}, false
	}
	return f, true
}
