package receiver

import (
	"fmt"
	"slices"

	"ubx-sim/internal/nav"
	"ubx-sim/internal/ubx"
)

// SupportedBauds are the line speeds accepted by CFG-PRT on a UART.
var SupportedBauds = []int{4800, 9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600}

const numTimePulses = 2

// Config is the receiver's power-on configuration. CFG-CFG clear/load
// restores it.
type Config struct {
	// PortID is the port the host is attached to. Zero-length CFG-PRT polls
	// and 3-byte CFG-MSG sets refer to it.
	PortID     uint8
	Baud       int
	MeasRateMs uint16
	NavRate    uint16
	MaxPayload int

	// AckUnknownCfg answers CFG messages without a handler with ACK-ACK
	// instead of staying silent.
	AckUnknownCfg bool

	// Messages holds the initial output rate, in navigation solutions per
	// message, of each message on the host port.
	Messages map[ubx.Identity]uint8

	Version ubx.MonVer
	Nav     nav.Config
}

func (c Config) Validate() error {
	if c.PortID >= ubx.NumPorts {
		return fmt.Errorf("port_id must be 0..%d", ubx.NumPorts-1)
	}
	if isUART(c.PortID) && !slices.Contains(SupportedBauds, c.Baud) {
		return fmt.Errorf("unsupported baud %d", c.Baud)
	}
	if c.MeasRateMs < ubx.MinMeasRateMs {
		return fmt.Errorf("meas_rate_ms must be >= %d", ubx.MinMeasRateMs)
	}
	if c.NavRate == 0 {
		return fmt.Errorf("nav_rate must be >= 1")
	}
	return nil
}

func isUART(port uint8) bool {
	return port == ubx.PortUART1 || port == ubx.PortUART2
}

// settings is the mutable configuration the CFG messages act on.
type settings struct {
	ports [ubx.NumPorts]ubx.CfgPrt
	rate  ubx.CfgRate
	rates map[ubx.Identity][ubx.NumPorts]uint8
	tp5   [numTimePulses]ubx.CfgTP5
}

func defaultSettings(cfg Config) settings {
	s := settings{
		rate:  ubx.CfgRate{MeasRateMs: cfg.MeasRateMs, NavRate: cfg.NavRate, TimeRef: 1},
		rates: make(map[ubx.Identity][ubx.NumPorts]uint8, len(cfg.Messages)),
	}
	for i := range s.ports {
		p := ubx.CfgPrt{
			PortID:       uint8(i),
			InProtoMask:  ubx.ProtoUBX | ubx.ProtoNMEA,
			OutProtoMask: ubx.ProtoUBX | ubx.ProtoNMEA,
		}
		if isUART(uint8(i)) {
			p.Mode = ubx.ModeUART8N1
			p.BaudRate = 9600
		}
		s.ports[i] = p
	}
	if isUART(cfg.PortID) {
		s.ports[cfg.PortID].BaudRate = uint32(cfg.Baud)
	}
	for id, rate := range cfg.Messages {
		var r [ubx.NumPorts]uint8
		r[cfg.PortID] = rate
		s.rates[id] = r
	}
	for i := range s.tp5 {
		s.tp5[i] = ubx.DefaultTP5()
		s.tp5[i].TPIdx = uint8(i)
	}
	// The second pulse is disabled out of the box.
	s.tp5[1].Flags &^= ubx.TP5Active
	return s
}

// periodMs converts a rate in navigation solutions to a period.
func (s *settings) periodMs(rate uint8) uint32 {
	return uint32(rate) * uint32(s.rate.MeasRateMs) * uint32(s.rate.NavRate)
}
