//go:build !linux

package timepulse

import "fmt"

func OpenGPIO(chip string, offset int, consumer string) (Line, error) {
	return nil, fmt.Errorf("timepulse: gpio unsupported on this platform")
}
