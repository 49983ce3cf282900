package core

import (
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// SpeedOfLightKmS is the speed of light in km/s.
const SpeedOfLightKmS = 299792.458

// LightTravelDelay returns the propagation delay for a photon crossing the
// given distance in kilometres.
func LightTravelDelay(distanceKm float64) time.Duration {
	return time.Duration(distanceKm / SpeedOfLightKmS * float64(time.Second))
}

// CorrectTimes shifts observation timestamps back by the Sun-to-observer
// light travel time, so that X-ray light curves from observers at different
// heliocentric distances line up on solar emission time. The input slice is
// not modified.
func CorrectTimes(times []time.Time, sunDistanceKm float64) []time.Time {
	delay := LightTravelDelay(sunDistanceKm)
	out := make([]time.Time, len(times))
	for i, t := range times {
		out[i] = t.Add(-delay)
	}
	return out
}

// SunDistanceProvider yields the Sun-to-spacecraft distance at a given time.
type SunDistanceProvider interface {
	SunDistanceKm(t time.Time) float64
}

// StaticDistance is a constant-distance provider for spacecraft whose
// heliocentric distance is supplied directly (PSP, SolO, STEREO state
// vectors arrive as plain r/lat pairs).
type StaticDistance float64

// SunDistanceKm returns the fixed distance in km.
func (d StaticDistance) SunDistanceKm(time.Time) float64 { return float64(d) }

// GOESEphemeris refines the Sun distance for a GOES spacecraft from its TLE:
// the geostationary orbit radius (~42164 km) is small against an AU but is
// essentially free to account for once the TLE is at hand.
type GOESEphemeris struct {
	sat satellite.Satellite
}

// NewGOESEphemerisFromTLE constructs an ephemeris from TLE lines.
func NewGOESEphemerisFromTLE(line1, line2 string) *GOESEphemeris {
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return &GOESEphemeris{sat: sat}
}

// SunDistanceKm propagates the spacecraft to t and returns its straight-line
// distance to the Sun.
func (g *GOESEphemeris) SunDistanceKm(t time.Time) float64 {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(g.sat, year, int(month), day, hour, min, sec)
	sc := Vec3{X: posECI.X, Y: posECI.Y, Z: posECI.Z}
	return SunPositionECI(t).DistanceTo(sc)
}
