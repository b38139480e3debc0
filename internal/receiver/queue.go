package receiver

import "ubx-sim/internal/ubx"

// ReplyQueue holds poll responses until the end of the current loop
// iteration.
type ReplyQueue struct {
	pending []ubx.Outbound
}

func (q *ReplyQueue) Enqueue(m ubx.Outbound) {
	q.pending = append(q.pending, m)
}

func (q *ReplyQueue) Len() int {
	return len(q.pending)
}

// Flush encodes and writes every queued message in enqueue order and empties
// the queue. The queue is emptied even when a write fails; the first error is
// returned along with the number of frames written.
func (q *ReplyQueue) Flush(w FrameWriter) (int, error) {
	pending := q.pending
	q.pending = q.pending[:0]
	for i, m := range pending {
		pending[i] = nil
		if err := w.Write(ubx.Encode(m)); err != nil {
			clear(pending[i:])
			return i, err
		}
	}
	return len(pending), nil
}
