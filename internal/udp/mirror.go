package udp

import (
	"github.com/rs/zerolog"

	"ubx-sim/internal/receiver"
)

type sender interface {
	Send(payload []byte) error
}

// Mirror is a receiver.Transport that copies every transmitted frame to a UDP
// monitor. Mirror failures are logged and never affect the serial link.
type Mirror struct {
	receiver.Transport
	out    sender
	log    zerolog.Logger
	failed uint64
}

func NewMirror(tr receiver.Transport, b *Broadcaster, log zerolog.Logger) *Mirror {
	return &Mirror{Transport: tr, out: b, log: log}
}

func (m *Mirror) Write(frame []byte) error {
	if err := m.Transport.Write(frame); err != nil {
		return err
	}
	if err := m.out.Send(frame); err != nil {
		m.failed++
		// first failure at warn, the rest at debug
		if m.failed == 1 {
			m.log.Warn().Err(err).Msg("udp mirror send failed")
		} else {
			m.log.Debug().Err(err).Uint64("failures", m.failed).Msg("udp mirror send failed")
		}
	}
	return nil
}

// Failures counts frames that could not be mirrored.
func (m *Mirror) Failures() uint64 {
	return m.failed
}
