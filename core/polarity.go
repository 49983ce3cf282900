package core

import "math"

// AstronomicalUnitKm is the astronomical unit in kilometres.
const AstronomicalUnitKm = 1.495978707e8

// SolarRotationRadPerSec is the Sun's sidereal rotation rate, 2π over the
// 25.38-day Carrington period, in rad/s.
const SolarRotationRadPerSec = 2 * math.Pi / (25.38 * 24 * 60 * 60)

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }

// PolarityParams tunes the polarity sector classification.
type PolarityParams struct {
	// WindSpeed is the solar wind speed in km/s used for the nominal
	// Parker spiral angle. Default: 400.
	WindSpeed float64

	// DeltaAngle is the half-width in degrees of the ambiguous sectors
	// centred on 90° and 270° relative angle. Default: 10.
	DeltaAngle float64
}

// DefaultPolarityParams returns the parameters used by the quicklook plots.
func DefaultPolarityParams() PolarityParams {
	return PolarityParams{WindSpeed: 400, DeltaAngle: 10}
}

// ApplyDefaults fills unset fields: a non-positive wind speed becomes 400
// and a negative half-width becomes 10. DeltaAngle zero is a valid setting
// and is kept; it narrows the ambiguous sectors to the exact 90 and 270
// degree boundaries.
func (p PolarityParams) ApplyDefaults() PolarityParams {
	if p.WindSpeed <= 0 {
		p.WindSpeed = 400
	}
	if p.DeltaAngle < 0 {
		p.DeltaAngle = 10
	}
	return p
}

// NominalParkerAngle returns the Parker spiral angle in degrees for a
// spacecraft at rAU astronomical units, assuming solar wind speed vKmS.
func NominalParkerAngle(rAU, vKmS float64) float64 {
	return rad2deg(math.Atan(SolarRotationRadPerSec * rAU * AstronomicalUnitKm / vKmS))
}

// ClassifyPolarity computes the magnetic sector polarity of RTN field samples
// (br, bt, bn, nanotesla) measured by a spacecraft at heliocentric distance
// rAU (AU) and heliographic latitude latDeg (degrees), against the nominal
// Parker spiral for the configured wind speed.
//
// It returns, per sample, the polarity (+1 toward, -1 away, 0 ambiguous, NaN
// unclassified) and the field azimuth relative to the nominal spiral
// direction, folded into [0, 360) degrees. Outputs have the same length and
// alignment as the inputs; N == 0 yields empty slices.
//
// The azimuth is derived from a restricted arctangent with an explicit
// quadrant-fix table rather than atan2. The two are not equivalent at
// Bx == 0: the division saturates the arctan at ±90° (or NaN for 0/0) and
// the quadrant fix is applied on top. Classification tolerates that by
// leaving unmatched samples at NaN. Non-finite inputs propagate through the
// floating-point math; no validation is performed here.
func ClassifyPolarity(br, bt, bn []float64, rAU, latDeg float64, p PolarityParams) (pol, relAngle []float64) {
	p = p.ApplyDefaults()

	phiNominal := NominalParkerAngle(rAU, p.WindSpeed)
	sinLat := math.Sin(deg2rad(latDeg))
	cosLat := math.Cos(deg2rad(latDeg))
	delta := p.DeltaAngle

	pol = make([]float64, len(br))
	relAngle = make([]float64, len(br))

	for i := range br {
		// Rotate the radial/normal pair into the heliographic meridian
		// plane centred on the spacecraft.
		bx := br[i]*cosLat - bn[i]*sinLat
		by := bt[i]

		// Restricted arctangent plus quadrant fix. Bx == 0 saturates
		// at ±90° before the fix; kept as is.
		fix := 0.0
		if bx > 0 && by > 0 {
			fix = 360
		}
		if bx < 0 {
			fix = 180
		}
		phi := rad2deg(math.Atan(-by/bx)) + fix

		// Fold relative to the nominal spiral direction. A single
		// correction suffices for the ranges the arctangent produces.
		rel := phi - phiNominal
		if rel > 360 {
			rel -= 360
		}
		if rel < 0 {
			rel += 360
		}
		relAngle[i] = rel

		// Sector assignment in fixed order; the ambiguous check runs
		// last so it wins boundary ties.
		q := math.NaN()
		if (rel >= 0 && rel <= 90-delta) || (rel >= 270+delta && rel <= 360) {
			q = 1
		}
		if rel >= 90+delta && rel <= 270-delta {
			q = -1
		}
		if (rel >= 90-delta && rel <= 90+delta) || (rel >= 270-delta && rel <= 270+delta) {
			q = 0
		}
		pol[i] = q
	}

	return pol, relAngle
}
