// Package receiver runs the emulated receiver: it frames inbound bytes,
// answers configuration messages and emits periodic navigation output.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"ubx-sim/internal/nav"
	"ubx-sim/internal/schedule"
	"ubx-sim/internal/ubx"
)

// Pulser drives the time pulse output from the active CFG-TP5 settings.
type Pulser interface {
	Update(now time.Time, tp ubx.CfgTP5, locked bool) error
}

// Stats counts receiver activity since start.
type Stats struct {
	RxFrames    uint64
	RxInvalid   uint64
	DesyncBytes uint64
	Unhandled   uint64
	Violations  uint64
	Acks        uint64
	Naks        uint64
	Replies     uint64
	Periodic    uint64
	TxFrames    uint64
	Reconfigs   uint64
}

// Receiver owns all loop state. It is not safe for concurrent use; Run and
// Step must be called from a single goroutine.
type Receiver struct {
	cfg   Config
	tr    Transport
	clock Clock
	log   zerolog.Logger

	parser *ubx.Parser
	queue  ReplyQueue
	sched  *schedule.Scheduler
	sim    *nav.Simulator
	pulse  Pulser

	set         settings
	pendingBaud int
	stats       Stats

	// solution cache for the current iteration
	solAt time.Time
	sol   nav.Solution
	solOK bool
}

func New(cfg Config, tr Transport, clock Clock, log zerolog.Logger) (*Receiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}
	r := &Receiver{
		cfg:    cfg,
		tr:     tr,
		clock:  clock,
		log:    log,
		parser: ubx.NewParser(ubx.Limits{MaxPayload: cfg.MaxPayload}),
		sched:  schedule.New(),
		sim:    nav.NewSimulator(cfg.Nav, clock.Now()),
		set:    defaultSettings(cfg),
	}
	r.applyRates()
	return r, nil
}

// SetPulser attaches a time pulse output. It is updated once per iteration.
func (r *Receiver) SetPulser(p Pulser) {
	r.pulse = p
}

func (r *Receiver) Stats() Stats {
	s := r.stats
	s.DesyncBytes = r.parser.DesyncBytes()
	return s
}

// Scheduler exposes the rate table, mainly for inspection in tests.
func (r *Receiver) Scheduler() *schedule.Scheduler {
	return r.sched
}

// Run loops until ctx is cancelled or the transport fails. Cancellation is
// checked once per iteration, before the read, so a frame is never cut in
// half by shutdown. A transport reaching io.EOF ends the loop cleanly.
func (r *Receiver) Run(ctx context.Context) error {
	r.log.Info().
		Uint8("port_id", r.cfg.PortID).
		Int("baud", r.cfg.Baud).
		Uint16("meas_rate_ms", r.set.rate.MeasRateMs).
		Msg("receiver started")
	defer func() {
		s := r.Stats()
		r.log.Info().
			Uint64("rx_frames", s.RxFrames).
			Uint64("rx_invalid", s.RxInvalid).
			Uint64("desync_bytes", s.DesyncBytes).
			Uint64("unhandled", s.Unhandled).
			Uint64("violations", s.Violations).
			Uint64("acks", s.Acks).
			Uint64("naks", s.Naks).
			Uint64("replies", s.Replies).
			Uint64("periodic", s.Periodic).
			Uint64("tx_frames", s.TxFrames).
			Uint64("reconfigs", s.Reconfigs).
			Msg("receiver stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		b, ok, err := r.tr.NextByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if err := r.Step(r.clock.Now(), b, ok); err != nil {
			return err
		}
	}
}

// Step runs one loop iteration at now. When ok is true, b is the byte read in
// this iteration.
func (r *Receiver) Step(now time.Time, b byte, ok bool) error {
	if ok {
		if em, done := r.parser.Push(b); done {
			if err := r.receive(now, em); err != nil {
				return err
			}
		}
	}

	n, err := r.queue.Flush(r)
	r.stats.Replies += uint64(n)
	if err != nil {
		return fmt.Errorf("flush replies: %w", err)
	}

	if r.pendingBaud != 0 {
		baud := r.pendingBaud
		r.pendingBaud = 0
		if err := r.tr.Reconfigure(baud); err != nil {
			r.log.Error().Err(err).Int("baud", baud).Msg("port reconfigure failed")
		} else {
			r.stats.Reconfigs++
			r.log.Info().Int("baud", baud).Msg("port reconfigured")
		}
	}

	if err := r.poll(now); err != nil {
		return err
	}

	if r.pulse != nil {
		if err := r.pulse.Update(now, r.set.tp5[0], r.solution(now).FixOK); err != nil {
			r.log.Warn().Err(err).Msg("time pulse update failed")
		}
	}
	return nil
}

// Write implements FrameWriter and counts transmitted frames.
func (r *Receiver) Write(frame []byte) error {
	if err := r.tr.Write(frame); err != nil {
		return err
	}
	r.stats.TxFrames++
	return nil
}

func (r *Receiver) receive(now time.Time, em ubx.Emission) error {
	if em.Kind == ubx.EmitInvalid {
		r.stats.RxInvalid++
		r.log.Warn().Err(em.Err).Int("bytes", len(em.Raw)).Msg("frame discarded")
		return nil
	}
	r.stats.RxFrames++
	f := em.Frame
	id := f.Identity()

	m, err := ubx.Decode(f)
	if err != nil {
		r.stats.Violations++
		r.log.Warn().Err(err).Ints("accepted", ubx.AcceptedLengths(id)).Msg("protocol violation")
		if id.Class == ubx.ClassCFG {
			return r.acknowledge(id, Nak)
		}
		return nil
	}

	r.log.Debug().Stringer("msg", id).Int("len", len(f.Payload)).Msg("rx")
	out := r.handle(now, m)
	if id.Class != ubx.ClassCFG {
		return nil
	}
	return r.acknowledge(id, out)
}

func (r *Receiver) acknowledge(id ubx.Identity, out Outcome) error {
	var m ubx.Outbound
	switch out {
	case Ack:
		r.stats.Acks++
		m = &ubx.Ack{Msg: id}
	case Nak:
		r.stats.Naks++
		m = &ubx.Nak{Msg: id}
	default:
		return nil
	}
	if err := r.Write(ubx.Encode(m)); err != nil {
		return fmt.Errorf("write %s: %w", ubx.Name(m.Identity()), err)
	}
	return nil
}

// poll sends every periodic message that is due at now.
func (r *Receiver) poll(now time.Time) error {
	nowMs := now.UnixMilli()
	out := r.set.ports[r.cfg.PortID].OutProtoMask&ubx.ProtoUBX != 0
	for _, id := range r.sched.Identities() {
		if !r.sched.Due(id, nowMs) || !out {
			continue
		}
		m, ok := r.solution(now).Message(id)
		if !ok {
			continue
		}
		if err := r.Write(ubx.Encode(m)); err != nil {
			return fmt.Errorf("write %s: %w", id, err)
		}
		r.stats.Periodic++
	}
	return nil
}

// solution evaluates the simulator at most once per iteration.
func (r *Receiver) solution(now time.Time) nav.Solution {
	if !r.solOK || !r.solAt.Equal(now) {
		r.sol = r.sim.Solution(now)
		r.solAt = now
		r.solOK = true
	}
	return r.sol
}

// applyRates re-derives scheduler periods for every producible message from
// the host port rates and the current measurement rate.
func (r *Receiver) applyRates() {
	for _, id := range nav.Messages {
		rates, ok := r.set.rates[id]
		if !ok {
			if _, known := r.sched.Entry(id); !known {
				continue
			}
		}
		r.sched.Configure(id, r.set.periodMs(rates[r.cfg.PortID]))
	}
}
