//go:build linux

package timepulse

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// OpenGPIO requests offset on chip (e.g. "gpiochip0") as an output, initially
// low.
func OpenGPIO(chip string, offset int, consumer string) (Line, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("timepulse: open %s: %w", chip, err)
	}
	l, err := c.RequestLine(offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer(consumer))
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("timepulse: request %s line %d: %w", chip, offset, err)
	}
	return &gpioLine{chip: c, line: l}, nil
}

type gpioLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

func (g *gpioLine) SetValue(v int) error {
	if g.line == nil {
		return fmt.Errorf("timepulse: gpio line closed")
	}
	return g.line.SetValue(v)
}

func (g *gpioLine) Close() error {
	if g.line == nil {
		return nil
	}
	err := g.line.Close()
	g.line = nil
	if g.chip != nil {
		_ = g.chip.Close()
		g.chip = nil
	}
	return err
}
