// Package serialport provides the byte links the receiver runs over: a real
// UART or a pseudo terminal.
package serialport

import (
	"errors"
	"fmt"
	"io"
)

// Port buffers reads from an underlying link and serves them one byte at a
// time. A read that returns no data is reported as ok=false so the caller's
// loop keeps running.
type Port struct {
	name   string
	rw     io.ReadWriter
	reconf func(baud int) error
	closer func() error

	buf  []byte
	pos  int
	n    int
	err  error // returned once the buffered bytes are consumed
	baud int
}

func newPort(name string, rw io.ReadWriter, baud int, reconf func(int) error, closer func() error) *Port {
	return &Port{name: name, rw: rw, reconf: reconf, closer: closer, buf: make([]byte, 512), baud: baud}
}

// Name is the device path a client should open.
func (p *Port) Name() string {
	return p.name
}

func (p *Port) Baud() int {
	return p.baud
}

func (p *Port) NextByte() (byte, bool, error) {
	if p.pos < p.n {
		b := p.buf[p.pos]
		p.pos++
		return b, true, nil
	}
	if err := p.err; err != nil {
		p.err = nil
		return 0, false, fmt.Errorf("%s: %w", p.name, err)
	}
	n, err := p.rw.Read(p.buf)
	p.pos, p.n = 0, n
	if errors.Is(err, errNoData) {
		err = nil
	}
	if n > 0 {
		// Data that arrived with an error is delivered first.
		p.err = err
		p.pos = 1
		return p.buf[0], true, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", p.name, err)
	}
	return 0, false, nil
}

func (p *Port) Write(frame []byte) error {
	for len(frame) > 0 {
		n, err := p.rw.Write(frame)
		if err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}
		frame = frame[n:]
	}
	return nil
}

func (p *Port) Reconfigure(baud int) error {
	if err := p.reconf(baud); err != nil {
		return fmt.Errorf("%s: set baud %d: %w", p.name, baud, err)
	}
	p.baud = baud
	return nil
}

func (p *Port) Close() error {
	if p.closer == nil {
		return nil
	}
	err := p.closer()
	p.closer = nil
	return err
}

// errNoData marks a read that timed out without data.
var errNoData = errors.New("no data")
