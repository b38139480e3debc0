package receiver

import (
	"slices"
	"time"

	"ubx-sim/internal/nav"
	"ubx-sim/internal/ubx"
)

// Outcome is the acknowledgement a handled CFG message earns.
type Outcome int

const (
	// Suppressed sends no ACK/NAK, either because the handler answered on
	// its own or because the message is not acknowledged.
	Suppressed Outcome = iota
	Ack
	Nak
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Nak:
		return "nak"
	}
	return "suppressed"
}

// handle applies m to the receiver state. Replies to polls go through the
// reply queue so they follow any acknowledgement written for the same frame.
func (r *Receiver) handle(now time.Time, m ubx.Message) Outcome {
	switch m := m.(type) {
	case *ubx.CfgPrtPoll:
		port := r.cfg.PortID
		if m.Explicit {
			port = m.PortID
		}
		if port >= ubx.NumPorts {
			return Nak
		}
		p := r.set.ports[port]
		r.queue.Enqueue(&p)
		return Ack
	case *ubx.CfgPrt:
		return r.setPort(*m)
	case *ubx.CfgMsgPoll:
		r.queue.Enqueue(&ubx.CfgMsg{Msg: m.Msg, Rates: r.set.rates[m.Msg]})
		return Ack
	case *ubx.CfgMsgSet:
		rates := r.set.rates[m.Msg]
		rates[r.cfg.PortID] = m.Rate
		r.setRates(m.Msg, rates)
		return Ack
	case *ubx.CfgMsg:
		r.setRates(m.Msg, m.Rates)
		return Ack
	case *ubx.CfgRst:
		mode := nav.StartModeForMask(m.NavBbrMask)
		r.sim.Restart(mode, now)
		r.solOK = false
		r.sched.Restart()
		r.log.Info().Stringer("mode", mode).Uint8("reset_mode", m.ResetMode).Msg("receiver restart")
		return Ack
	case *ubx.CfgRatePoll:
		rate := r.set.rate
		r.queue.Enqueue(&rate)
		return Ack
	case *ubx.CfgRate:
		if m.MeasRateMs < ubx.MinMeasRateMs || m.NavRate == 0 || m.TimeRef > 4 {
			return Nak
		}
		r.set.rate = *m
		r.applyRates()
		return Ack
	case *ubx.CfgCfg:
		// clear and save act on non-volatile storage, which is never
		// written, so only load changes the running settings.
		if m.LoadMask != 0 {
			r.restoreDefaults()
		}
		return Ack
	case *ubx.CfgTP5Poll:
		if int(m.TPIdx) >= numTimePulses {
			return Nak
		}
		tp := r.set.tp5[m.TPIdx]
		r.queue.Enqueue(&tp)
		return Ack
	case *ubx.CfgTP5:
		if int(m.TPIdx) >= numTimePulses {
			return Nak
		}
		r.set.tp5[m.TPIdx] = *m
		return Ack
	case *ubx.MonVerPoll:
		v := r.cfg.Version
		r.queue.Enqueue(&v)
		return Suppressed
	case *ubx.NavPoll:
		if msg, ok := r.solution(now).Message(m.Msg); ok {
			r.queue.Enqueue(msg)
		}
		return Suppressed
	case *ubx.Other:
		id := m.Frame.Identity()
		r.stats.Unhandled++
		r.log.Debug().Err(ubx.ErrUnknownIdentity).Stringer("msg", id).Int("len", len(m.Frame.Payload)).Msg("unhandled")
		if id.Class == ubx.ClassCFG && r.cfg.AckUnknownCfg {
			return Ack
		}
		return Suppressed
	}
	return Suppressed
}

func (r *Receiver) setPort(p ubx.CfgPrt) Outcome {
	if p.PortID >= ubx.NumPorts {
		return Nak
	}
	if isUART(p.PortID) && !slices.Contains(SupportedBauds, int(p.BaudRate)) {
		return Nak
	}
	if !isUART(p.PortID) {
		p.Mode, p.BaudRate = 0, 0
	}
	if p.PortID == r.cfg.PortID && p.BaudRate != r.set.ports[p.PortID].BaudRate {
		r.pendingBaud = int(p.BaudRate)
	}
	r.set.ports[p.PortID] = p
	return Ack
}

func (r *Receiver) setRates(id ubx.Identity, rates [ubx.NumPorts]uint8) {
	r.set.rates[id] = rates
	r.applyRates()
}

// restoreDefaults reverts every setting to the power-on configuration. A host
// port speed change is deferred like a CFG-PRT set.
func (r *Receiver) restoreDefaults() {
	cur := r.set.ports[r.cfg.PortID].BaudRate
	r.set = defaultSettings(r.cfg)
	if b := r.set.ports[r.cfg.PortID].BaudRate; b != cur {
		r.pendingBaud = int(b)
	}
	r.applyRates()
	r.log.Info().Msg("configuration restored to defaults")
}
