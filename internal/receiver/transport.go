package receiver

import "time"

// FrameWriter transmits complete encoded frames.
type FrameWriter interface {
	Write(frame []byte) error
}

// Transport is the byte link the receiver runs over. NextByte waits a bounded
// time and reports ok=false when nothing arrived; it never blocks forever.
type Transport interface {
	FrameWriter
	NextByte() (b byte, ok bool, err error)
	// Reconfigure changes the line speed. It is only called between loop
	// iterations, after pending output has been written.
	Reconfigure(baud int) error
}

type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
