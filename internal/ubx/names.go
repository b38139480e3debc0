package ubx

import (
	"fmt"
	"strconv"
	"strings"
)

// names is the read-only registry of mnemonic message names. It is only used
// for human-readable output and config lookups, never for dispatch.
var names = map[Identity]string{
	IDNavPosLLH:      "NAV-POSLLH",
	IDNavStatus:      "NAV-STATUS",
	{ClassNAV, 0x04}: "NAV-DOP",
	{ClassNAV, 0x06}: "NAV-SOL",
	IDNavPVT:         "NAV-PVT",
	IDNavVelNED:      "NAV-VELNED",
	{ClassNAV, 0x20}: "NAV-TIMEGPS",
	IDNavTimeUTC:     "NAV-TIMEUTC",
	{ClassNAV, 0x30}: "NAV-SVINFO",
	{ClassNAV, 0x35}: "NAV-SAT",
	IDAckNak:         "ACK-NAK",
	IDAckAck:         "ACK-ACK",
	IDCfgPrt:         "CFG-PRT",
	IDCfgMsg:         "CFG-MSG",
	{ClassCFG, 0x02}: "CFG-INF",
	IDCfgRst:         "CFG-RST",
	{ClassCFG, 0x06}: "CFG-DAT",
	{ClassCFG, 0x07}: "CFG-TP",
	IDCfgRate:        "CFG-RATE",
	IDCfgCfg:         "CFG-CFG",
	{ClassCFG, 0x0E}: "CFG-FXN",
	{ClassCFG, 0x11}: "CFG-RXM",
	{ClassCFG, 0x12}: "CFG-EKF",
	{ClassCFG, 0x13}: "CFG-ANT",
	{ClassCFG, 0x16}: "CFG-SBAS",
	{ClassCFG, 0x17}: "CFG-NMEA",
	{ClassCFG, 0x1B}: "CFG-USB",
	{ClassCFG, 0x1D}: "CFG-TMODE",
	{ClassCFG, 0x22}: "CFG-NVS",
	{ClassCFG, 0x23}: "CFG-NAVX5",
	{ClassCFG, 0x24}: "CFG-NAV5",
	{ClassCFG, 0x29}: "CFG-ESFGWT",
	IDCfgTP5:         "CFG-TP5",
	{ClassCFG, 0x32}: "CFG-PM",
	{ClassCFG, 0x34}: "CFG-RINV",
	{ClassCFG, 0x39}: "CFG-ITFM",
	{ClassCFG, 0x3B}: "CFG-PM2",
	{ClassCFG, 0x3D}: "CFG-TMODE2",
	{ClassCFG, 0x3E}: "CFG-GNSS",
	{ClassCFG, 0x86}: "CFG-PMS",
	{ClassMON, 0x09}: "MON-HW",
	IDMonVer:         "MON-VER",
	{0x0D, 0x01}:     "TIM-TP",
	{0xF0, 0x00}:     "NMEA-GGA",
	{0xF0, 0x04}:     "NMEA-RMC",
}

// Lookup returns the mnemonic for id, if known.
func Lookup(id Identity) (string, bool) {
	n, ok := names[id]
	return n, ok
}

// Name returns the mnemonic for id, or UNKNOWN-<class>-<id> in hex.
func Name(id Identity) string {
	if n, ok := Lookup(id); ok {
		return n
	}
	return fmt.Sprintf("UNKNOWN-%02X-%02X", id.Class, id.ID)
}

// ParseName resolves a mnemonic ("NAV-PVT") or a raw "0x01,0x07"/"01-07" pair.
func ParseName(s string) (Identity, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Identity{}, false
	}
	for id, n := range names {
		if n == s {
			return id, true
		}
	}
	for _, sep := range []string{",", "-"} {
		cs, is, found := strings.Cut(s, sep)
		if !found {
			continue
		}
		c, okC := parseHexByte(cs)
		i, okI := parseHexByte(is)
		if okC && okI {
			return Identity{Class: c, ID: i}, true
		}
	}
	return Identity{}, false
}

// parseHexByte accepts "06", "6" or "0x06" and nothing else.
func parseHexByte(s string) (uint8, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0X")
	if s == "" || len(s) > 2 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}
