// Package schedule decides when each cyclic message is due.
package schedule

import (
	"math"
	"slices"

	"ubx-sim/internal/ubx"
)

const neverSent = math.MinInt64

// RateEntry is the scheduling state of one message identity. A zero period
// disables the message but keeps its history.
type RateEntry struct {
	PeriodMs   uint32
	LastSentMs int64
}

// Sent reports whether the message has fired at least once.
func (e RateEntry) Sent() bool {
	return e.LastSentMs != neverSent
}

// Scheduler is a rate table keyed by message identity. It is owned by a
// single loop and does no locking.
type Scheduler struct {
	entries map[ubx.Identity]*RateEntry
}

func New() *Scheduler {
	return &Scheduler{entries: make(map[ubx.Identity]*RateEntry)}
}

// Configure upserts the period for id. Reconfiguring an identity keeps its
// last-sent time, so a shorter period takes effect relative to the last send.
func (s *Scheduler) Configure(id ubx.Identity, periodMs uint32) {
	if e, ok := s.entries[id]; ok {
		e.PeriodMs = periodMs
		return
	}
	s.entries[id] = &RateEntry{PeriodMs: periodMs, LastSentMs: neverSent}
}

// Due reports whether id should be sent at nowMs and, if so, records nowMs as
// its last send. A second call for the same tick returns false.
func (s *Scheduler) Due(id ubx.Identity, nowMs int64) bool {
	e, ok := s.entries[id]
	if !ok || e.PeriodMs == 0 {
		return false
	}
	if e.Sent() && nowMs < e.LastSentMs+int64(e.PeriodMs) {
		return false
	}
	e.LastSentMs = nowMs
	return true
}

// Entry returns a copy of the rate entry for id.
func (s *Scheduler) Entry(id ubx.Identity) (RateEntry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return RateEntry{}, false
	}
	return *e, true
}

// Identities lists every configured identity in class/id order, including
// disabled ones.
func (s *Scheduler) Identities() []ubx.Identity {
	ids := make([]ubx.Identity, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b ubx.Identity) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return ids
}

// Restart forgets every last-sent time so each enabled message fires on the
// next check. Periods are kept.
func (s *Scheduler) Restart() {
	for _, e := range s.entries {
		e.LastSentMs = neverSent
	}
}
