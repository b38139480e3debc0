package nav

import (
	"time"

	"ubx-sim/internal/ubx"
)

// Messages lists the NAV identities the simulator can produce.
var Messages = []ubx.Identity{
	ubx.IDNavPosLLH,
	ubx.IDNavStatus,
	ubx.IDNavPVT,
	ubx.IDNavVelNED,
	ubx.IDNavTimeUTC,
}

// Message builds the outbound NAV message id from sol. It reports false for
// identities the simulator does not produce.
func (sol Solution) Message(id ubx.Identity) (ubx.Outbound, bool) {
	switch id {
	case ubx.IDNavPosLLH:
		return &ubx.NavPosLLH{
			ITOW:    sol.ITOW,
			LonDeg:  sol.LonDeg,
			LatDeg:  sol.LatDeg,
			HeightM: sol.HeightM,
			HMSLM:   sol.HMSLM,
			HAccM:   sol.HAccM,
			VAccM:   sol.VAccM,
		}, true
	case ubx.IDNavStatus:
		m := &ubx.NavStatus{
			ITOW:    sol.ITOW,
			FixType: sol.Fix,
			Flags:   ubx.StatusWKNSet | ubx.StatusTOWSet,
			TTFFMs:  uint32(sol.TTFF / time.Millisecond),
			MSSSMs:  uint32(sol.MSSS / time.Millisecond),
		}
		if sol.FixOK {
			m.Flags |= ubx.StatusGPSFixOK
		}
		return m, true
	case ubx.IDNavVelNED:
		return &ubx.NavVelNED{
			ITOW:        sol.ITOW,
			VelN:        sol.VelN,
			VelE:        sol.VelE,
			VelD:        sol.VelD,
			Speed:       sol.Speed,
			GroundSpeed: sol.GroundSpeed,
			HeadingDeg:  sol.HeadingDeg,
			SAcc:        sol.SAcc,
			CAccDeg:     sol.HeadAccDeg,
		}, true
	case ubx.IDNavTimeUTC:
		m := &ubx.NavTimeUTC{
			ITOW:   sol.ITOW,
			TAccNs: sol.TAccNs,
			Time:   sol.Time,
			Valid:  ubx.TimeUTCValidTOW | ubx.TimeUTCValidWKN,
		}
		if sol.FixOK {
			m.Valid |= ubx.TimeUTCValidUTC
		}
		return m, true
	case ubx.IDNavPVT:
		m := &ubx.NavPVT{
			ITOW:        sol.ITOW,
			Time:        sol.Time,
			Valid:       ubx.PVTValidDate | ubx.PVTValidTime,
			TAccNs:      sol.TAccNs,
			FixType:     sol.Fix,
			NumSV:       sol.NumSV,
			LonDeg:      sol.LonDeg,
			LatDeg:      sol.LatDeg,
			HeightM:     sol.HeightM,
			HMSLM:       sol.HMSLM,
			HAccM:       sol.HAccM,
			VAccM:       sol.VAccM,
			VelN:        sol.VelN,
			VelE:        sol.VelE,
			VelD:        sol.VelD,
			GroundSpeed: sol.GroundSpeed,
			HeadMotDeg:  sol.HeadingDeg,
			SAcc:        sol.SAcc,
			HeadAccDeg:  sol.HeadAccDeg,
			PDOP:        sol.PDOP,
			HeadVehDeg:  sol.HeadingDeg,
		}
		if sol.FixOK {
			m.Valid |= ubx.PVTValidFullyResolved
			m.Flags = ubx.PVTFlagGNSSFixOK | ubx.PVTFlagHeadVeh
		}
		return m, true
	}
	return nil, false
}
