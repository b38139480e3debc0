package ubx

// Sync bytes that open every UBX frame.
const (
	Sync1 = 0xB5
	Sync2 = 0x62
)

// Message classes handled by the receiver.
const (
	ClassNAV = 0x01
	ClassACK = 0x05
	ClassCFG = 0x06
	ClassMON = 0x0A
)

// Identity is the (class, id) pair naming a message type. It is comparable and
// used as a map key by the scheduler and the name registry.
type Identity struct {
	Class uint8
	ID    uint8
}

func (i Identity) String() string {
	return Name(i)
}

// Less orders identities by class, then id.
func (i Identity) Less(o Identity) bool {
	if i.Class != o.Class {
		return i.Class < o.Class
	}
	return i.ID < o.ID
}

var (
	IDNavPosLLH  = Identity{ClassNAV, 0x02}
	IDNavStatus  = Identity{ClassNAV, 0x03}
	IDNavPVT     = Identity{ClassNAV, 0x07}
	IDNavVelNED  = Identity{ClassNAV, 0x12}
	IDNavTimeUTC = Identity{ClassNAV, 0x21}

	IDAckNak = Identity{ClassACK, 0x00}
	IDAckAck = Identity{ClassACK, 0x01}

	IDCfgPrt  = Identity{ClassCFG, 0x00}
	IDCfgMsg  = Identity{ClassCFG, 0x01}
	IDCfgRst  = Identity{ClassCFG, 0x04}
	IDCfgRate = Identity{ClassCFG, 0x08}
	IDCfgCfg  = Identity{ClassCFG, 0x09}
	IDCfgTP5  = Identity{ClassCFG, 0x31}

	IDMonVer = Identity{ClassMON, 0x04}
)

// Port IDs as used by CFG-PRT and the CFG-MSG rate array.
const (
	PortDDC   = 0
	PortUART1 = 1
	PortUART2 = 2
	PortUSB   = 3
	PortSPI   = 4

	NumPorts = 6
)
