package replay

import (
	"fmt"
	"time"

	"ubx-sim/internal/receiver"
)

// Recorder is a receiver.Transport that logs both directions of the link.
// Consecutive received bytes are coalesced into one rx record, stamped with
// the arrival time of the first byte.
type Recorder struct {
	inner receiver.Transport
	w     *Writer
	now   func() time.Time

	rx   []byte
	rxAt time.Time
}

func NewRecorder(inner receiver.Transport, w *Writer) *Recorder {
	return &Recorder{inner: inner, w: w, now: time.Now}
}

func (r *Recorder) NextByte() (byte, bool, error) {
	b, ok, err := r.inner.NextByte()
	if !ok {
		if ferr := r.flushRx(); ferr != nil && err == nil {
			err = ferr
		}
		return b, ok, err
	}
	if len(r.rx) == 0 {
		r.rxAt = r.now()
	}
	r.rx = append(r.rx, b)
	return b, true, err
}

func (r *Recorder) Write(frame []byte) error {
	if err := r.flushRx(); err != nil {
		return err
	}
	if err := r.inner.Write(frame); err != nil {
		return err
	}
	if err := r.w.WriteRecord(r.now(), DirTx, frame); err != nil {
		return fmt.Errorf("record tx: %w", err)
	}
	return nil
}

func (r *Recorder) Reconfigure(baud int) error {
	return r.inner.Reconfigure(baud)
}

// Close writes any buffered rx bytes and closes the log. The wrapped
// transport is left open.
func (r *Recorder) Close() error {
	ferr := r.flushRx()
	if err := r.w.Close(); err != nil {
		return err
	}
	return ferr
}

func (r *Recorder) flushRx() error {
	if len(r.rx) == 0 {
		return nil
	}
	err := r.w.WriteRecord(r.rxAt, DirRx, r.rx)
	r.rx = r.rx[:0]
	if err != nil {
		return fmt.Errorf("record rx: %w", err)
	}
	return nil
}
