package figure

import (
	"fmt"

	"github.com/signalsfoundry/helioplot/model"
)

// PanelKind identifies what a panel in the stack draws.
type PanelKind int

const (
	PanelRadio PanelKind = iota
	PanelSTIX
	PanelGOES
	PanelElectrons
	PanelProtons
	PanelMagAngleLat // magnetic inclination alpha, carries the polarity strip
	PanelMagAngleLon // magnetic azimuth phi
	PanelMag
	PanelVsw
	PanelDensity
	PanelTemperature
	PanelPdyn
)

func (k PanelKind) String() string {
	switch k {
	case PanelRadio:
		return "radio"
	case PanelSTIX:
		return "stix"
	case PanelGOES:
		return "goes"
	case PanelElectrons:
		return "electrons"
	case PanelProtons:
		return "protons"
	case PanelMagAngleLat:
		return "mag-angle-lat"
	case PanelMagAngleLon:
		return "mag-angle-lon"
	case PanelMag:
		return "mag"
	case PanelVsw:
		return "vsw"
	case PanelDensity:
		return "density"
	case PanelTemperature:
		return "temperature"
	case PanelPdyn:
		return "pdyn"
	default:
		return "unknown"
	}
}

// Panel is one slot of the stacked figure.
type Panel struct {
	Kind PanelKind

	// Ratio is the panel's height weight relative to the other panels.
	Ratio float64

	// LogY marks panels drawn on a logarithmic value axis.
	LogY bool
}

// Layout turns the options into the ordered panel stack. Radio and the X-ray
// panels sit on top, plasma parameters at the bottom. Radio gets double
// height, as do the particle panels; the magnetic angle toggle contributes
// two panels (inclination and azimuth). SolO has no radio panel and dynamic
// pressure is drawn for PSP only. Selecting nothing is an error, not an
// empty figure.
func Layout(o Options) ([]Panel, error) {
	ins := o.Instruments
	var panels []Panel

	add := func(kind PanelKind, ratio float64, logY bool) {
		panels = append(panels, Panel{Kind: kind, Ratio: ratio, LogY: logY})
	}

	if ins.Radio && o.Spacecraft != model.SpacecraftSolO {
		add(PanelRadio, 2, false)
	}
	if ins.STIX {
		add(PanelSTIX, 1, true)
	}
	if ins.GOES {
		add(PanelGOES, 1, true)
	}
	if ins.Electrons {
		add(PanelElectrons, 2, true)
	}
	if ins.Protons {
		add(PanelProtons, 2, true)
	}
	if ins.MagAngles {
		add(PanelMagAngleLat, 1, false)
		add(PanelMagAngleLon, 1, false)
	}
	if ins.Mag {
		add(PanelMag, 1, false)
	}
	if ins.Vsw {
		add(PanelVsw, 1, false)
	}
	if ins.Density {
		add(PanelDensity, 1, false)
	}
	if ins.Temperature {
		add(PanelTemperature, 1, false)
	}
	if ins.Pdyn && o.Spacecraft == model.SpacecraftPSP {
		add(PanelPdyn, 1, false)
	}

	if len(panels) == 0 {
		return nil, fmt.Errorf("no instruments chosen")
	}

	// Three-panel figures are drawn with uniform heights; the weighted
	// ratios only pay off in taller stacks.
	if len(panels) == 3 {
		for i := range panels {
			panels[i].Ratio = 1
		}
	}

	return panels, nil
}
