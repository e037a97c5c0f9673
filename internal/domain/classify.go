package domain

import "math"

// TideType is the coarse tidal-range label derived from the lunar age. It is
// purely presentational and never feeds back into level computation.
type TideType string

// Labels follow the traditional Japanese tide calendar: spring tides around
// syzygy, neap tides around quadrature, with the transitional "long" and
// "young" days in between.
const (
	TideSpring       TideType = "spring"       // 大潮
	TideIntermediate TideType = "intermediate" // 中潮
	TideNeap         TideType = "neap"         // 小潮
	TideLong         TideType = "long"         // 長潮
	TideYoung        TideType = "young"        // 若潮
)

// tideTypeByLunarDay maps the traditional lunar day (1-30) to its label.
var tideTypeByLunarDay = [30]TideType{
	TideSpring, TideSpring, // 1-2
	TideIntermediate, TideIntermediate, TideIntermediate, TideIntermediate, // 3-6
	TideNeap, TideNeap, TideNeap, // 7-9
	TideLong,  // 10
	TideYoung, // 11
	TideIntermediate, TideIntermediate, // 12-13
	TideSpring, TideSpring, TideSpring, TideSpring, // 14-17
	TideIntermediate, TideIntermediate, TideIntermediate, TideIntermediate, // 18-21
	TideNeap, TideNeap, TideNeap, // 22-24
	TideLong,  // 25
	TideYoung, // 26
	TideIntermediate, TideIntermediate, // 27-28
	TideSpring, TideSpring, // 29-30
}

// ClassifyTideType maps a lunar age in days to the tidal-range label.
// Ages outside [0, 30) are folded in so callers can pass raw day counts.
func ClassifyTideType(ageDays float64) TideType {
	day := int(math.Floor(math.Mod(ageDays, 30)))
	if day < 0 {
		day += 30
	}
	return tideTypeByLunarDay[day]
}
