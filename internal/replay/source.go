package replay

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Clock abstracts time for Source so playback can be tested without waiting.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Source is a receiver.Transport that plays back the rx side of a session
// log with its recorded timing. Transmitted frames are counted and dropped.
//
// speed: 1.0 = real time, 2.0 = twice as fast, 0.5 = half speed.
type Source struct {
	recs  []Record
	speed float64
	loop  bool
	poll  time.Duration
	clock Clock

	i       int
	cur     []byte
	started bool
	origin  time.Time
	base    time.Duration

	TxFrames int
}

// NewSource validates records for playback. poll bounds how long NextByte
// waits before reporting that nothing is available yet.
func NewSource(recs []Record, speed float64, loop bool, poll time.Duration, clock Clock) (*Source, error) {
	if speed <= 0 {
		return nil, fmt.Errorf("speed must be > 0")
	}
	if poll <= 0 {
		return nil, fmt.Errorf("poll must be > 0")
	}
	if clock == nil {
		clock = realClock{}
	}
	var rx int
	for _, r := range recs {
		if !r.IsStart() && r.Dir == DirRx {
			rx++
		}
	}
	if rx == 0 {
		return nil, errors.New("no rx records")
	}
	return &Source{recs: recs, speed: speed, loop: loop, poll: poll, clock: clock}, nil
}

// NextByte returns the next recorded byte once its time has come. It returns
// io.EOF after the last record unless looping.
func (s *Source) NextByte() (byte, bool, error) {
	if len(s.cur) > 0 {
		b := s.cur[0]
		s.cur = s.cur[1:]
		return b, true, nil
	}
	for {
		if s.i >= len(s.recs) {
			if !s.loop {
				return 0, false, io.EOF
			}
			s.i = 0
			s.started = false
		}
		r := s.recs[s.i]
		if !s.started || r.IsStart() {
			s.origin = s.clock.Now()
			s.base = r.At
			s.started = true
		}
		if r.IsStart() || r.Dir != DirRx {
			s.i++
			continue
		}

		at := r.At - s.base
		if at < 0 {
			at = 0
		}
		due := s.origin.Add(time.Duration(float64(at) / s.speed))
		if now := s.clock.Now(); now.Before(due) {
			s.clock.Sleep(min(due.Sub(now), s.poll))
			return 0, false, nil
		}
		s.i++
		s.cur = r.Data[1:]
		return r.Data[0], true, nil
	}
}

func (s *Source) Write(frame []byte) error {
	s.TxFrames++
	return nil
}

func (s *Source) Reconfigure(int) error {
	return nil
}
