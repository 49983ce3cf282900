package core

import (
	"math"
	"time"
)

// Simplified solar ephemeris based on the Astronomical Almanac low-precision
// series. Accuracy is a few hundredths of a degree in position and ~1e-5 AU
// in distance, which is far tighter than the light-travel-time corrections
// it feeds (the delay changes by well under a second over that error).

// julianDate converts a time to the Julian date.
func julianDate(t time.Time) float64 {
	// Unix epoch is JD 2440587.5.
	return 2440587.5 + float64(t.UnixNano())/float64(24*time.Hour)
}

// SunEphemeris returns the Sun's apparent geocentric equatorial coordinates
// (right ascension and declination, degrees) and its distance in AU.
func SunEphemeris(t time.Time) (raDeg, decDeg, distAU float64) {
	jd := julianDate(t)

	// Julian centuries from J2000.0.
	T := (jd - 2451545.0) / 36525.0

	// Mean longitude and mean anomaly of the Sun (degrees).
	L0 := normalize360(280.46646 + 36000.76983*T + 0.0003032*T*T)
	M := normalize360(357.52911 + 35999.05029*T - 0.0001537*T*T)
	Mrad := deg2rad(M)

	// Equation of center (degrees).
	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(Mrad) +
		(0.019993-0.000101*T)*math.Sin(2*Mrad) +
		0.000289*math.Sin(3*Mrad)

	sunLon := L0 + C
	v := M + C // true anomaly

	// Eccentricity of Earth's orbit and the radius vector (AU).
	e := 0.016708634 - 0.000042037*T - 0.0000001267*T*T
	distAU = 1.000001018 * (1 - e*e) / (1 + e*math.Cos(deg2rad(v)))

	// Obliquity of the ecliptic (degrees).
	eps := 23.43929111 - 0.0130042*T - 1.64e-7*T*T

	lonRad := deg2rad(sunLon)
	epsRad := deg2rad(eps)

	raDeg = normalize360(rad2deg(math.Atan2(math.Cos(epsRad)*math.Sin(lonRad), math.Cos(lonRad))))
	decDeg = rad2deg(math.Asin(math.Sin(epsRad) * math.Sin(lonRad)))
	return raDeg, decDeg, distAU
}

// SunPositionECI returns the Sun's geocentric equatorial position in km.
func SunPositionECI(t time.Time) Vec3 {
	ra, dec, dist := SunEphemeris(t)
	raRad := deg2rad(ra)
	decRad := deg2rad(dec)
	r := dist * AstronomicalUnitKm
	return Vec3{
		X: r * math.Cos(decRad) * math.Cos(raRad),
		Y: r * math.Cos(decRad) * math.Sin(raRad),
		Z: r * math.Sin(decRad),
	}
}

func normalize360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
