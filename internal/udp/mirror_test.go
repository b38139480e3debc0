package udp

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type fakeLink struct {
	writes   [][]byte
	writeErr error
}

func (l *fakeLink) NextByte() (byte, bool, error) { return 0, false, nil }
func (l *fakeLink) Reconfigure(int) error         { return nil }

func (l *fakeLink) Write(frame []byte) error {
	if l.writeErr != nil {
		return l.writeErr
	}
	l.writes = append(l.writes, frame)
	return nil
}

func TestMirror_CopiesWrites(t *testing.T) {
	link := &fakeLink{}
	fc := &fakeConn{}
	m := NewMirror(link, &Broadcaster{dest: "x", conn: fc}, zerolog.Nop())

	frame := []byte{0xb5, 0x62, 0x05, 0x01, 0x02, 0x00, 0x06, 0x01, 0x0f, 0x38}
	if err := m.Write(frame); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if len(link.writes) != 1 || len(fc.writes) != 1 {
		t.Fatalf("link writes=%d mirror writes=%d, want 1/1", len(link.writes), len(fc.writes))
	}
	if string(fc.writes[0]) != string(frame) {
		t.Fatalf("mirrored %x want %x", fc.writes[0], frame)
	}
}

func TestMirror_SendFailureIsNotFatal(t *testing.T) {
	link := &fakeLink{}
	fc := &fakeConn{writeErr: errors.New("refused")}
	m := NewMirror(link, &Broadcaster{dest: "x", conn: fc}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		if err := m.Write([]byte{0x01}); err != nil {
			t.Fatalf("Write() error: %v", err)
		}
	}
	if m.Failures() != 3 {
		t.Fatalf("Failures()=%d want 3", m.Failures())
	}
	if len(link.writes) != 3 {
		t.Fatalf("link writes=%d want 3", len(link.writes))
	}
}

func TestMirror_LinkErrorSkipsMirror(t *testing.T) {
	linkErr := errors.New("tty gone")
	fc := &fakeConn{}
	m := NewMirror(&fakeLink{writeErr: linkErr}, &Broadcaster{dest: "x", conn: fc}, zerolog.Nop())

	if err := m.Write([]byte{0x01}); !errors.Is(err, linkErr) {
		t.Fatalf("err=%v want %v", err, linkErr)
	}
	if len(fc.writes) != 0 {
		t.Fatalf("expected no mirror write")
	}
}
