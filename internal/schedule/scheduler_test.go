package schedule

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ubx-sim/internal/ubx"
)

func TestDue_FirstFireThenPeriod(t *testing.T) {
	s := New()
	s.Configure(ubx.IDNavPosLLH, 1000)

	require.True(t, s.Due(ubx.IDNavPosLLH, 0))
	require.False(t, s.Due(ubx.IDNavPosLLH, 500))
	require.True(t, s.Due(ubx.IDNavPosLLH, 1000))
	require.False(t, s.Due(ubx.IDNavPosLLH, 1999))
	require.True(t, s.Due(ubx.IDNavPosLLH, 2500))
}

func TestDue_IdempotentWithinTick(t *testing.T) {
	s := New()
	s.Configure(ubx.IDNavPVT, 200)
	require.True(t, s.Due(ubx.IDNavPVT, 12345))
	require.False(t, s.Due(ubx.IDNavPVT, 12345))
}

func TestDue_FirstCheckAtNegativeTime(t *testing.T) {
	s := New()
	s.Configure(ubx.IDNavPVT, 1000)
	require.True(t, s.Due(ubx.IDNavPVT, -5000))
}

func TestDue_UnconfiguredAndDisabled(t *testing.T) {
	s := New()
	require.False(t, s.Due(ubx.IDNavStatus, 0))

	s.Configure(ubx.IDNavStatus, 100)
	require.True(t, s.Due(ubx.IDNavStatus, 0))

	s.Configure(ubx.IDNavStatus, 0)
	require.False(t, s.Due(ubx.IDNavStatus, 10_000))

	e, ok := s.Entry(ubx.IDNavStatus)
	require.True(t, ok)
	require.Equal(t, uint32(0), e.PeriodMs)
	require.Equal(t, int64(0), e.LastSentMs)
	require.Contains(t, s.Identities(), ubx.IDNavStatus)

	s.Configure(ubx.IDNavStatus, 100)
	require.True(t, s.Due(ubx.IDNavStatus, 10_000))
}

func TestIdentities_Sorted(t *testing.T) {
	s := New()
	s.Configure(ubx.IDNavTimeUTC, 1000)
	s.Configure(ubx.IDNavPosLLH, 1000)
	s.Configure(ubx.IDNavPVT, 1000)
	require.Equal(t, []ubx.Identity{ubx.IDNavPosLLH, ubx.IDNavPVT, ubx.IDNavTimeUTC}, s.Identities())
}

func TestRestart(t *testing.T) {
	s := New()
	s.Configure(ubx.IDNavPVT, 1000)
	require.True(t, s.Due(ubx.IDNavPVT, 0))
	require.False(t, s.Due(ubx.IDNavPVT, 10))

	s.Restart()
	e, _ := s.Entry(ubx.IDNavPVT)
	require.False(t, e.Sent())
	require.True(t, s.Due(ubx.IDNavPVT, 10))
}
