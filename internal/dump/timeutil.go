package dump

import (
	"math"
	"time"
)

// ResolveTimes turns Unix seconds into the UTC instant and the same instant
// in loc. A nil loc yields the UTC instant twice. Fractions are kept to the
// microsecond.
func ResolveTimes(ts float64, loc *time.Location) (utc, local time.Time) {
	sec, frac := math.Modf(ts)
	usec := int64(math.Round(frac * 1e6))
	utc = time.Unix(int64(sec), usec*int64(time.Microsecond)).UTC()
	if loc == nil {
		return utc, utc
	}
	return utc, utc.In(loc)
}
