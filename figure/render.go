package figure

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/signalsfoundry/helioplot/core"
	"github.com/signalsfoundry/helioplot/model"
	"github.com/signalsfoundry/helioplot/series"
)

const (
	figureWidth     = 12 * vg.Inch
	panelHeightUnit = 3 * vg.Inch

	// Three-panel figures get taller panels to compensate for the
	// uniform ratios Layout assigns them.
	threePanelHeight = 4 * vg.Inch
)

// Data carries everything a figure can draw. Any field may be nil or empty;
// the corresponding panel renders blank.
type Data struct {
	// Mag holds the magnetic field with columns b, br, bt, bn.
	Mag *series.Frame

	// SolarWind holds plasma parameters with columns vsw, density,
	// temperature and, for PSP, pdyn.
	SolarWind *series.Frame

	// Radio holds radio flux series, one column per frequency band.
	Radio *series.Frame

	// Electrons and Protons hold particle intensities, one column per
	// energy channel.
	Electrons *series.Frame
	Protons   *series.Frame

	STIX *model.Dataset
	GOES *model.Dataset

	// State is the heliocentric context behind the polarity strip.
	State model.State
}

// Render draws the panel stack for the options into a PNG.
func Render(o Options, d Data) ([]byte, error) {
	panels, err := Layout(o)
	if err != nil {
		return nil, err
	}

	unit := panelHeightUnit
	if len(panels) == 3 {
		unit = threePanelHeight
	}

	var totalRatio float64
	for _, p := range panels {
		totalRatio += p.Ratio
	}
	height := unit * vg.Length(totalRatio)

	img := vgimg.NewWith(vgimg.UseWH(figureWidth, height), vgimg.UseDPI(96))
	base := draw.New(img)

	// Panels stack top down; the band heights follow the layout ratios.
	y := base.Max.Y
	for i, panel := range panels {
		bandH := vg.Length(panel.Ratio / totalRatio * float64(height))
		band := draw.Canvas{
			Canvas: base.Canvas,
			Rectangle: vg.Rectangle{
				Min: vg.Point{X: base.Min.X, Y: y - bandH},
				Max: vg.Point{X: base.Max.X, Y: y},
			},
		}
		y -= bandH

		p, err := buildPanel(o, d, panel)
		if err != nil {
			return nil, fmt.Errorf("panel %v: %w", panel.Kind, err)
		}
		if i == 0 {
			p.Title.Text = o.Spacecraft.Title()
		}
		if i == len(panels)-1 {
			p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 02\n15:04"}
			p.X.Label.Text = "Time (UTC)"
		}
		p.Draw(band)
	}

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode figure: %w", err)
	}
	return buf.Bytes(), nil
}

// buildPanel produces the plot for one slot of the stack.
func buildPanel(o Options, d Data, panel Panel) (*plot.Plot, error) {
	p := plot.New()
	p.X.Min = float64(o.Start.Unix())
	p.X.Max = float64(o.End.Unix())
	// The bottom panel alone carries time ticks; Render overrides its
	// marker after the stack is built.
	p.X.Tick.Marker = plot.ConstantTicks(nil)
	p.Legend.Top = true
	p.Legend.Left = !o.LegendsInside

	if panel.LogY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
		// Seed a positive range so an empty panel still draws; added
		// series extend it.
		p.Y.Min, p.Y.Max = 1e-9, 1e-3
	}

	switch panel.Kind {
	case PanelRadio:
		p.Y.Label.Text = "Flux [sfu]"
		addFrame(p, d.Radio, nil, panel.LogY)
		legendTitle(p, o.Spacecraft.String()+" radio")

	case PanelSTIX:
		p.Y.Label.Text = "Counts"
		if !d.STIX.Empty() {
			addFrame(p, d.STIX.Frame, nil, panel.LogY)
		}
		title := "SolO/STIX"
		if d.STIX != nil && d.STIX.Meta.LTC {
			title += " (light travel time corr.)"
		}
		legendTitle(p, title)

	case PanelGOES:
		p.Y.Label.Text = "Irradiance [W/m^2]"
		if !d.GOES.Empty() {
			addFrame(p, d.GOES.Frame, map[string]string{
				"xrsa": "0.5 - 4.0 A",
				"xrsb": "1.0 - 8.0 A",
			}, panel.LogY)
		}
		sat := 0
		if d.GOES != nil {
			sat = d.GOES.Meta.Satellite
		}
		legendTitle(p, fmt.Sprintf("GOES-%d/XRS", sat))

	case PanelElectrons:
		p.Y.Label.Text = "Intensity"
		addFrame(p, d.Electrons, nil, panel.LogY)
		legendTitle(p, o.Spacecraft.String()+" electrons")

	case PanelProtons:
		p.Y.Label.Text = "Intensity"
		addFrame(p, d.Protons, nil, panel.LogY)
		legendTitle(p, o.Spacecraft.String()+" protons")

	case PanelMagAngleLat:
		p.Y.Label.Text = "alpha [deg]"
		p.Y.Min, p.Y.Max = -90, 90
		if err := addMagAngles(p, d, o, true); err != nil {
			return nil, err
		}

	case PanelMagAngleLon:
		p.Y.Label.Text = "phi [deg]"
		p.Y.Min, p.Y.Max = 0, 360
		if err := addMagAngles(p, d, o, false); err != nil {
			return nil, err
		}

	case PanelMag:
		p.Y.Label.Text = "B [nT]"
		addFrame(p, d.Mag, map[string]string{
			"b": "|B|", "br": "Br", "bt": "Bt", "bn": "Bn",
		}, panel.LogY)
		legendTitle(p, "MAG")

	case PanelVsw:
		p.Y.Label.Text = "Vsw [km/s]"
		addColumn(p, d.SolarWind, "vsw", "Vsw", 0, panel.LogY)

	case PanelDensity:
		p.Y.Label.Text = "N [1/cm^3]"
		addColumn(p, d.SolarWind, "density", "N", 0, panel.LogY)

	case PanelTemperature:
		p.Y.Label.Text = "T [K]"
		addColumn(p, d.SolarWind, "temperature", "T", 0, panel.LogY)

	case PanelPdyn:
		p.Y.Label.Text = "Pdyn [nPa]"
		addColumn(p, d.SolarWind, "pdyn", "Pdyn", 0, panel.LogY)

	default:
		return nil, fmt.Errorf("unhandled panel kind %d", panel.Kind)
	}

	return p, nil
}

// addMagAngles draws the inclination (lat) or azimuth (lon) angle derived
// from the magnetic field columns. The inclination panel also carries the
// Parker-spiral polarity strip across its top edge.
func addMagAngles(p *plot.Plot, d Data, o Options, lat bool) error {
	if d.Mag == nil || d.Mag.Len() == 0 {
		return nil
	}
	b := d.Mag.Column("b")
	br := d.Mag.Column("br")
	bt := d.Mag.Column("bt")
	bn := d.Mag.Column("bn")
	if br == nil || bt == nil || bn == nil {
		return fmt.Errorf("mag frame missing field components")
	}
	if b == nil {
		b = fieldMagnitude(br, bt, bn)
	}

	alpha, phi := core.MagAngles(b, br, bt, bn)
	times := d.Mag.Times()
	if lat {
		addSeries(p, times, alpha, "alpha", 0, false)
		_, rel := core.ClassifyPolarity(br, bt, bn, d.State.RadiusAU, d.State.LatDeg, o.Polarity)
		p.Add(newPolarityStrip(times, rel))
	} else {
		addSeries(p, times, phi, "phi", 1, false)
	}
	return nil
}

func fieldMagnitude(br, bt, bn []float64) []float64 {
	b := make([]float64, len(br))
	for i := range b {
		b[i] = math.Sqrt(br[i]*br[i] + bt[i]*bt[i] + bn[i]*bn[i])
	}
	return b
}

// addFrame draws every column of a frame as a step line. labels maps column
// names to legend labels; unmapped columns use their own name.
func addFrame(p *plot.Plot, f *series.Frame, labels map[string]string, logY bool) {
	if f == nil {
		return
	}
	for i, name := range f.ColumnNames() {
		label := name
		if l, ok := labels[name]; ok {
			label = l
		}
		addSeries(p, f.Times(), f.Column(name), label, i, logY)
	}
}

func addColumn(p *plot.Plot, f *series.Frame, name, label string, idx int, logY bool) {
	if f == nil {
		return
	}
	col := f.Column(name)
	if col == nil {
		return
	}
	addSeries(p, f.Times(), col, label, idx, logY)
}

// addSeries draws one series as mid-step line segments, breaking at NaN
// gaps. On log panels non-positive samples are gaps too.
func addSeries(p *plot.Plot, times []time.Time, values []float64, label string, idx int, logY bool) {
	first := true
	var seg plotter.XYs

	flush := func() {
		if len(seg) == 0 {
			return
		}
		line, err := plotter.NewLine(seg)
		if err != nil {
			seg = nil
			return
		}
		line.StepStyle = plotter.MidStep
		line.Color = plotutil.Color(idx)
		p.Add(line)
		if first {
			p.Legend.Add(label, line)
			first = false
		}
		seg = nil
	}

	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || (logY && v <= 0) {
			flush()
			continue
		}
		seg = append(seg, plotter.XY{X: float64(times[i].Unix()), Y: v})
	}
	flush()
}

// legendTitle prefixes the legend with an entry-less observatory title.
func legendTitle(p *plot.Plot, title string) {
	p.Legend.Add(title)
}
