package figure

import (
	"image/color"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// stripHeightFrac is the share of the panel height the polarity strip
// occupies along the top edge.
const stripHeightFrac = 0.08

// polarityStrip colors a thin band across the top of a panel by the relative
// Parker-spiral angle: blue at 0 (toward), red at 180 (away), folded so the
// two half-circles map onto the same ramp. NaN samples leave gaps.
type polarityStrip struct {
	times []time.Time
	rel   []float64
}

func newPolarityStrip(times []time.Time, rel []float64) *polarityStrip {
	return &polarityStrip{times: times, rel: rel}
}

// Plot implements plot.Plotter.
func (s *polarityStrip) Plot(c draw.Canvas, plt *plot.Plot) {
	if len(s.times) < 2 || len(s.rel) != len(s.times) {
		return
	}
	trX, _ := plt.Transforms(&c)

	// One bar per sample, as wide as the sample cadence.
	width := s.times[1].Sub(s.times[0]).Seconds()
	yTop := c.Max.Y
	yBot := c.Max.Y - vg.Length(stripHeightFrac)*(c.Max.Y-c.Min.Y)

	for i, t := range s.times {
		a := s.rel[i]
		if math.IsNaN(a) {
			continue
		}
		x := float64(t.Unix())
		x0 := trX(x - width/2)
		x1 := trX(x + width/2)
		if x1 < c.Min.X || x0 > c.Max.X {
			continue
		}
		if x0 < c.Min.X {
			x0 = c.Min.X
		}
		if x1 > c.Max.X {
			x1 = c.Max.X
		}

		c.SetColor(bwrColor(foldAngle(a) / 180))
		var path vg.Path
		path.Move(vg.Point{X: x0, Y: yBot})
		path.Line(vg.Point{X: x1, Y: yBot})
		path.Line(vg.Point{X: x1, Y: yTop})
		path.Line(vg.Point{X: x0, Y: yTop})
		path.Close()
		c.Fill(path)
	}
}

// foldAngle maps a relative angle in [0,360) onto [0,180], reflecting the
// upper half-circle so 350 deg colors like 10 deg.
func foldAngle(a float64) float64 {
	if a >= 180 {
		a = 360 - a
	}
	if a < 0 {
		return 0
	}
	if a > 180 {
		return 180
	}
	return a
}

// bwrColor is a blue-white-red ramp over t in [0,1].
func bwrColor(t float64) color.Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	lerp := func(a, b float64, u float64) uint8 {
		return uint8(math.Round((a + (b-a)*u) * 255))
	}
	if t < 0.5 {
		u := t * 2
		return color.NRGBA{R: lerp(0, 1, u), G: lerp(0, 1, u), B: 255, A: 255}
	}
	u := (t - 0.5) * 2
	return color.NRGBA{R: 255, G: lerp(1, 0, u), B: lerp(1, 0, u), A: 255}
}
