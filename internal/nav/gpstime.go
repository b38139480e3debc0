package nav

import "time"

// GPS time runs ahead of UTC by the accumulated leap seconds.
const LeapSeconds = 18

const week = 7 * 24 * time.Hour

var gpsEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// GPSTime converts a UTC instant to GPS week number and time of week in ms.
func GPSTime(utc time.Time) (weekNum uint16, towMs uint32) {
	d := utc.UTC().Add(LeapSeconds * time.Second).Sub(gpsEpoch)
	if d < 0 {
		return 0, 0
	}
	return uint16(d / week), uint32((d % week) / time.Millisecond)
}
