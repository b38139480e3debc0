//go:build !linux

package serialport

import (
	"fmt"
	"time"
)

func OpenPTY(baud int, readTimeout time.Duration, link string) (*Port, error) {
	return nil, fmt.Errorf("pty not supported on this platform")
}
