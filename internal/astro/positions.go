package astro

import (
	"math"
	"time"

	"go.ngs.io/tide-engine/internal/domain"
)

// SunPosition is the Sun's apparent ecliptic position.
type SunPosition struct {
	LongitudeDeg float64
	LatitudeDeg  float64
}

// MoonPosition is the Moon's apparent ecliptic position and distance.
type MoonPosition struct {
	LongitudeDeg float64
	LatitudeDeg  float64
	DistanceKm   float64
}

// CelestialPosition bundles both bodies for an instant.
type CelestialPosition struct {
	Sun  SunPosition
	Moon MoonPosition
}

// julianCenturies returns centuries since J2000.0 for t.
func julianCenturies(t time.Time) float64 {
	return (julianDay(t) - 2451545.0) / 36525.0
}

// normalizeDeg folds an angle into [0, 360).
func normalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// CalculateCelestialPositions computes apparent Sun and Moon ecliptic
// positions for an instant. The Sun uses the mean longitude plus the
// equation of center; the Moon sums a fixed table of periodic terms indexed
// by the four fundamental lunar arguments.
func CalculateCelestialPositions(date time.Time) (CelestialPosition, error) {
	if err := checkDate(date); err != nil {
		return CelestialPosition{}, err
	}
	T := julianCenturies(date)
	return CelestialPosition{
		Sun:  sunPosition(T),
		Moon: moonPosition(T),
	}, nil
}

// CalculateAll composes the moon phase and the celestial positions for one
// instant.
func CalculateAll(date time.Time) (MoonPhase, CelestialPosition, error) {
	phase, err := CalculateMoonPhase(date)
	if err != nil {
		return MoonPhase{}, CelestialPosition{}, err
	}
	pos, err := CalculateCelestialPositions(date)
	if err != nil {
		return MoonPhase{}, CelestialPosition{}, err
	}
	return phase, pos, nil
}

// sunPosition computes the Sun's geometric ecliptic longitude from the mean
// longitude plus the equation of center (Meeus ch. 25).
func sunPosition(T float64) SunPosition {
	// Mean longitude and mean anomaly, degrees.
	L0 := 280.46646 + 36000.76983*T + 0.0003032*T*T
	M := 357.52911 + 35999.05029*T - 0.0001537*T*T

	Mrad := domain.Deg2Rad(M)
	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(Mrad) +
		(0.019993-0.000101*T)*math.Sin(2*Mrad) +
		0.000289*math.Sin(3*Mrad)

	return SunPosition{
		LongitudeDeg: normalizeDeg(L0 + C),
		// The Sun's ecliptic latitude never exceeds 1.2 arcseconds; treated
		// as zero at tidal accuracy.
		LatitudeDeg: 0,
	}
}

// moonTerm is one periodic term of the lunar series: integer multipliers of
// the fundamental arguments (D, M, M', F) with sine and cosine coefficients
// for longitude (1e-6 deg) and distance (1e-3 km).
type moonTerm struct {
	d, m, mp, f int
	sinL        float64
	cosR        float64
}

// Principal terms of the lunar longitude/distance series (Meeus ch. 47,
// truncated past 10e-6 deg).
var moonLRTerms = []moonTerm{
	{0, 0, 1, 0, 6288774, -20905355},
	{2, 0, -1, 0, 1274027, -3699111},
	{2, 0, 0, 0, 658314, -2955968},
	{0, 0, 2, 0, 213618, -569925},
	{0, 1, 0, 0, -185116, 48888},
	{0, 0, 0, 2, -114332, -3149},
	{2, 0, -2, 0, 58793, 246158},
	{2, -1, -1, 0, 57066, -152138},
	{2, 0, 1, 0, 53322, -170733},
	{2, -1, 0, 0, 45758, -204586},
	{0, 1, -1, 0, -40923, -129620},
	{1, 0, 0, 0, -34720, 108743},
	{0, 1, 1, 0, -30383, 104755},
	{2, 0, 0, -2, 15327, 10321},
	{0, 0, 1, 2, -12528, 0},
	{0, 0, 1, -2, 10980, 79661},
	{4, 0, -1, 0, 10675, -34782},
	{0, 0, 3, 0, 10034, -23210},
}

// Principal terms of the lunar latitude series (coefficients in 1e-6 deg).
var moonBTerms = []moonTerm{
	{0, 0, 0, 1, 5128122, 0},
	{0, 0, 1, 1, 280602, 0},
	{0, 0, 1, -1, 277693, 0},
	{2, 0, 0, -1, 173237, 0},
	{2, 0, -1, 1, 55413, 0},
	{2, 0, -1, -1, 46271, 0},
	{2, 0, 0, 1, 32573, 0},
	{0, 0, 2, 1, 17198, 0},
	{2, 0, 1, -1, 9266, 0},
	{0, 0, 2, -1, 8822, 0},
}

// moonPosition sums the truncated lunar series for longitude, latitude and
// distance (Meeus ch. 47).
func moonPosition(T float64) MoonPosition {
	// Fundamental arguments, degrees.
	Lp := 218.3164477 + 481267.88123421*T - 0.0015786*T*T + T*T*T/538841
	D := 297.8501921 + 445267.1114034*T - 0.0018819*T*T + T*T*T/545868
	M := 357.5291092 + 35999.0502909*T - 0.0001536*T*T
	Mp := 134.9633964 + 477198.8675055*T + 0.0087414*T*T + T*T*T/69699
	F := 93.2720950 + 483202.0175233*T - 0.0036539*T*T - T*T*T/3526000

	// Eccentricity correction for terms involving the Sun's mean anomaly.
	E := 1 - 0.002516*T - 0.0000074*T*T

	arg := func(t moonTerm) float64 {
		return domain.Deg2Rad(float64(t.d)*D + float64(t.m)*M + float64(t.mp)*Mp + float64(t.f)*F)
	}
	eFactor := func(m int) float64 {
		switch m {
		case 1, -1:
			return E
		case 2, -2:
			return E * E
		default:
			return 1
		}
	}

	var sumL, sumR float64
	for _, t := range moonLRTerms {
		e := eFactor(t.m)
		a := arg(t)
		sumL += e * t.sinL * math.Sin(a)
		sumR += e * t.cosR * math.Cos(a)
	}

	var sumB float64
	for _, t := range moonBTerms {
		sumB += eFactor(t.m) * t.sinL * math.Sin(arg(t))
	}

	return MoonPosition{
		LongitudeDeg: normalizeDeg(Lp + sumL/1e6),
		LatitudeDeg:  sumB / 1e6,
		DistanceKm:   385000.56 + sumR/1e3,
	}
}
