package ubx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	cases := []struct {
		in   string
		want Identity
		ok   bool
	}{
		{"NAV-PVT", IDNavPVT, true},
		{" nav-posllh ", IDNavPosLLH, true},
		{"CFG-TP5", IDCfgTP5, true},
		{"0x06,0x01", IDCfgMsg, true},
		{"01-07", IDNavPVT, true},
		{"27,03", Identity{0x27, 0x03}, true},
		{"0x0A, 0x04", IDMonVer, true},
		{"01-07junk", Identity{}, false},
		{"01-07-08", Identity{}, false},
		{"0x106,0x01", Identity{}, false},
		{"01-", Identity{}, false},
		{"", Identity{}, false},
		{"NAV-BOGUS", Identity{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseName(tc.in)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestName(t *testing.T) {
	require.Equal(t, "ACK-ACK", Name(IDAckAck))
	require.Equal(t, "UNKNOWN-27-03", Name(Identity{0x27, 0x03}))
	require.Equal(t, "CFG-MSG", IDCfgMsg.String())

	_, ok := Lookup(Identity{0x27, 0x03})
	require.False(t, ok)
}

func TestIdentity_Less(t *testing.T) {
	require.True(t, IDNavPVT.Less(IDNavVelNED))
	require.True(t, IDNavVelNED.Less(IDAckNak))
	require.False(t, IDCfgMsg.Less(IDCfgMsg))
}
