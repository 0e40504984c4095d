package extract

import (
	"math"
	"time"
)

// Epoch origins of the browser timestamp encodings, as Unix seconds
const (
	// chromiumEpochOffset is 1601-01-01T00:00:00Z
	chromiumEpochOffset int64 = -11644473600
	// webkitEpochOffset is 2001-01-01T00:00:00Z
	webkitEpochOffset int64 = 978307200
)

// FromChromiumTime converts microseconds since 1601-01-01 UTC
func FromChromiumTime(us int64) time.Time {
	sec := us/1e6 + chromiumEpochOffset
	nsec := (us % 1e6) * 1e3
	return time.Unix(sec, nsec).UTC()
}

// ToChromiumTime converts t to microseconds since 1601-01-01 UTC
func ToChromiumTime(t time.Time) int64 {
	return (t.Unix()-chromiumEpochOffset)*1e6 + int64(t.Nanosecond()/1e3)
}

// FromWebKitTime converts floating point seconds since 2001-01-01 UTC
func FromWebKitTime(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole)+webkitEpochOffset, int64(math.Round(frac*1e9))).UTC()
}

// ToWebKitTime converts t to floating point seconds since 2001-01-01 UTC
func ToWebKitTime(t time.Time) float64 {
	return float64(t.Unix()-webkitEpochOffset) + float64(t.Nanosecond())/1e9
}

// FromMozillaTime converts microseconds since the Unix epoch
func FromMozillaTime(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}

// ToMozillaTime converts t to microseconds since the Unix epoch
func ToMozillaTime(t time.Time) int64 {
	return t.UnixMicro()
}
