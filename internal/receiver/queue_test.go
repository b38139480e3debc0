package receiver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"ubx-sim/internal/ubx"
)

type failAfter struct {
	n      int
	frames [][]byte
}

func (w *failAfter) Write(frame []byte) error {
	if len(w.frames) == w.n {
		return errors.New("line down")
	}
	w.frames = append(w.frames, frame)
	return nil
}

func TestReplyQueue_FlushFIFO(t *testing.T) {
	var q ReplyQueue
	q.Enqueue(&ubx.Ack{Msg: ubx.IDCfgPrt})
	q.Enqueue(&ubx.CfgRate{MeasRateMs: 1000, NavRate: 1})
	q.Enqueue(&ubx.Nak{Msg: ubx.IDCfgTP5})
	require.Equal(t, 3, q.Len())

	w := &failAfter{n: 10}
	n, err := q.Flush(w)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 0, q.Len())
	require.Equal(t, ubx.Encode(&ubx.Ack{Msg: ubx.IDCfgPrt}), w.frames[0])
	require.Equal(t, ubx.IDCfgRate, ubx.Identity{Class: w.frames[1][2], ID: w.frames[1][3]})
	require.Equal(t, ubx.Encode(&ubx.Nak{Msg: ubx.IDCfgTP5}), w.frames[2])

	n, err = q.Flush(w)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestReplyQueue_FlushErrorStillDrains(t *testing.T) {
	var q ReplyQueue
	q.Enqueue(&ubx.Ack{Msg: ubx.IDCfgPrt})
	q.Enqueue(&ubx.Ack{Msg: ubx.IDCfgMsg})

	n, err := q.Flush(&failAfter{n: 1})
	require.Error(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 0, q.Len())
}
