package serialport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

func uartMode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Open opens a UART at baud, 8N1. Reads wait at most readTimeout.
func Open(path string, baud int, readTimeout time.Duration) (*Port, error) {
	sp, err := serial.Open(path, uartMode(baud))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := sp.SetReadTimeout(readTimeout); err != nil {
		_ = sp.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", path, err)
	}
	reconf := func(b int) error {
		if err := sp.Drain(); err != nil {
			return err
		}
		return sp.SetMode(uartMode(b))
	}
	return newPort(path, sp, baud, reconf, sp.Close), nil
}
