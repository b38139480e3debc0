package serialport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chunk struct {
	data []byte
	err  error
}

// scriptedLink returns one chunk per Read and records writes.
type scriptedLink struct {
	reads    []chunk
	written  []byte
	maxWrite int
}

func (l *scriptedLink) Read(p []byte) (int, error) {
	if len(l.reads) == 0 {
		return 0, nil
	}
	c := l.reads[0]
	l.reads = l.reads[1:]
	return copy(p, c.data), c.err
}

func (l *scriptedLink) Write(p []byte) (int, error) {
	n := len(p)
	if l.maxWrite > 0 && n > l.maxWrite {
		n = l.maxWrite
	}
	l.written = append(l.written, p[:n]...)
	return n, nil
}

func drain(t *testing.T, p *Port, reads int) []byte {
	t.Helper()
	var out []byte
	for i := 0; i < reads; i++ {
		b, ok, err := p.NextByte()
		require.NoError(t, err)
		if ok {
			out = append(out, b)
		}
	}
	return out
}

func TestPort_NextByteBuffersReads(t *testing.T) {
	link := &scriptedLink{reads: []chunk{
		{data: []byte{0xB5, 0x62, 0x06}},
		{},
		{data: []byte{0x04}},
	}}
	p := newPort("test", link, 9600, nil, nil)

	require.Equal(t, []byte{0xB5, 0x62, 0x06, 0x04}, drain(t, p, 6))
}

func TestPort_TimeoutIsNoData(t *testing.T) {
	link := &scriptedLink{reads: []chunk{{err: errNoData}}}
	p := newPort("test", link, 9600, nil, nil)

	_, ok, err := p.NextByte()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPort_ReadErrorAfterData(t *testing.T) {
	boom := errors.New("boom")
	link := &scriptedLink{reads: []chunk{
		{data: []byte{1, 2}, err: boom},
		{data: []byte{3}},
	}}
	p := newPort("ttyX", link, 9600, nil, nil)

	require.Equal(t, []byte{1, 2}, drain(t, p, 2))
	_, ok, err := p.NextByte()
	require.False(t, ok)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "ttyX")

	// The error is reported once; reading continues afterwards.
	require.Equal(t, []byte{3}, drain(t, p, 1))
}

func TestPort_NoDataWithBytesIsNotAnError(t *testing.T) {
	link := &scriptedLink{reads: []chunk{{data: []byte{7}, err: errNoData}}}
	p := newPort("test", link, 9600, nil, nil)

	require.Equal(t, []byte{7}, drain(t, p, 3))
}

func TestPort_WriteHandlesShortWrites(t *testing.T) {
	link := &scriptedLink{maxWrite: 3}
	p := newPort("test", link, 9600, nil, nil)

	frame := []byte{0xB5, 0x62, 0x05, 0x01, 0x02, 0x00, 0x06, 0x01, 0x0F, 0x38}
	require.NoError(t, p.Write(frame))
	require.Equal(t, frame, link.written)
}

func TestPort_Reconfigure(t *testing.T) {
	var got []int
	fail := false
	reconf := func(b int) error {
		if fail {
			return errors.New("ioctl")
		}
		got = append(got, b)
		return nil
	}
	p := newPort("test", &scriptedLink{}, 9600, reconf, nil)

	require.NoError(t, p.Reconfigure(115200))
	require.Equal(t, 115200, p.Baud())
	require.Equal(t, []int{115200}, got)

	fail = true
	err := p.Reconfigure(38400)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set baud 38400")
	require.Equal(t, 115200, p.Baud())
}

func TestPort_CloseOnce(t *testing.T) {
	calls := 0
	p := newPort("test", &scriptedLink{}, 9600, nil, func() error { calls++; return nil })
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	require.Equal(t, 1, calls)
}
