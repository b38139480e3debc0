package ubx

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksum_Empty(t *testing.T) {
	a, b := Checksum(nil)
	require.Equal(t, uint8(0), a)
	require.Equal(t, uint8(0), b)

	var c Checksummer
	a, b = c.Sum()
	require.Equal(t, uint8(0), a)
	require.Equal(t, uint8(0), b)
}

func TestChecksum_KnownAckVector(t *testing.T) {
	// ACK-ACK for CFG-MSG: B5 62 05 01 02 00 06 01 0F 38
	a, b := Checksum([]byte{0x05, 0x01, 0x02, 0x00, 0x06, 0x01})
	require.Equal(t, uint8(0x0F), a)
	require.Equal(t, uint8(0x38), b)
}

func TestChecksum_WrapsModulo256(t *testing.T) {
	data := make([]byte, 300)
	for i := range data {
		data[i] = 0xFF
	}
	var wantA, wantB int
	for _, v := range data {
		wantA = (wantA + int(v)) % 256
		wantB = (wantB + wantA) % 256
	}
	a, b := Checksum(data)
	require.Equal(t, uint8(wantA), a)
	require.Equal(t, uint8(wantB), b)
}

func TestChecksummer_IncrementalMatchesOneShot(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		data := make([]byte, rng.Intn(512))
		rng.Read(data)
		wantA, wantB := Checksum(data)

		var c Checksummer
		rest := data
		for len(rest) > 0 {
			n := 1 + rng.Intn(len(rest))
			_, _ = c.Write(rest[:n])
			rest = rest[n:]
		}
		gotA, gotB := c.Sum()
		require.Equal(t, wantA, gotA, "iter %d", iter)
		require.Equal(t, wantB, gotB, "iter %d", iter)
	}
}

func TestChecksummer_Reset(t *testing.T) {
	var c Checksummer
	_, _ = c.Write([]byte{1, 2, 3})
	c.Reset()
	_ = c.WriteByte(0x05)
	a, b := c.Sum()
	require.Equal(t, uint8(5), a)
	require.Equal(t, uint8(5), b)
}
