package figure

import (
	"bytes"
	"fmt"
	"math"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// colorWheelSegments is the number of secants approximating the ring.
const colorWheelSegments = 100

// DrawColorWheel renders the polarity legend into the canvas: an annulus
// whose color at angle theta matches the strip's color for a relative angle
// of theta, folded across the horizontal axis so both half-circles share
// the blue-to-red ramp.
func DrawColorWheel(c draw.Canvas) {
	center := vg.Point{
		X: (c.Min.X + c.Max.X) / 2,
		Y: (c.Min.Y + c.Max.Y) / 2,
	}
	outer := c.Max.X - center.X
	if h := c.Max.Y - center.Y; h < outer {
		outer = h
	}
	inner := vg.Length(0.6) * outer

	step := 2 * math.Pi / colorWheelSegments
	for i := 0; i < colorWheelSegments; i++ {
		t0 := float64(i) * step
		t1 := t0 + step
		mid := (t0 + t1) / 2

		// Fold the angle the same way the strip does.
		deg := mid * 180 / math.Pi
		c.SetColor(bwrColor(foldAngle(deg) / 180))

		at := func(t float64, r vg.Length) vg.Point {
			return vg.Point{
				X: center.X + r*vg.Length(math.Cos(t)),
				Y: center.Y + r*vg.Length(math.Sin(t)),
			}
		}
		var path vg.Path
		path.Move(at(t0, inner))
		path.Line(at(t0, outer))
		path.Line(at(t1, outer))
		path.Line(at(t1, inner))
		path.Close()
		c.Fill(path)
	}
}

// ColorWheelPNG renders the polarity legend as a standalone square PNG.
func ColorWheelPNG(size vg.Length) ([]byte, error) {
	img := vgimg.NewWith(vgimg.UseWH(size, size), vgimg.UseDPI(96))
	DrawColorWheel(draw.New(img))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode color wheel: %w", err)
	}
	return buf.Bytes(), nil
}
