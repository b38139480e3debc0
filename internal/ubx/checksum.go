package ubx

// Checksum computes the 8-bit Fletcher checksum used by UBX over class, id,
// length and payload (sync bytes excluded). The empty input yields (0, 0).
func Checksum(data []byte) (ckA, ckB uint8) {
	for _, b := range data {
		ckA += b
		ckB += ckA
	}
	return ckA, ckB
}

// Checksummer accumulates the UBX checksum incrementally. Writing a sequence
// in any number of chunks yields the same sum as Checksum over the whole.
type Checksummer struct {
	a, b uint8
}

func (c *Checksummer) Write(p []byte) (int, error) {
	for _, v := range p {
		c.a += v
		c.b += c.a
	}
	return len(p), nil
}

func (c *Checksummer) WriteByte(v byte) error {
	c.a += v
	c.b += c.a
	return nil
}

// Sum returns the running (ckA, ckB) pair.
func (c *Checksummer) Sum() (ckA, ckB uint8) {
	return c.a, c.b
}

func (c *Checksummer) Reset() {
	c.a, c.b = 0, 0
}
