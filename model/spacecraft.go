package model

import (
	"fmt"
	"strings"
)

// Spacecraft identifies the observing platform a panel stack is built for.
type Spacecraft int

const (
	SpacecraftUnknown Spacecraft = iota
	SpacecraftPSP                // Parker Solar Probe
	SpacecraftSolO               // Solar Orbiter
	SpacecraftSTEREOA            // STEREO Ahead
	SpacecraftSTEREOB            // STEREO Behind
	SpacecraftL1                 // near-Earth (Wind, SOHO)
)

// ParseSpacecraft maps user-facing spacecraft names to the enum.
// It is tolerant about case and the common short forms.
func ParseSpacecraft(s string) (Spacecraft, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "psp", "parker", "parker solar probe":
		return SpacecraftPSP, nil
	case "solo", "solar orbiter":
		return SpacecraftSolO, nil
	case "stereo", "stereo-a", "stereo a", "sta":
		return SpacecraftSTEREOA, nil
	case "stereo-b", "stereo b", "stb":
		return SpacecraftSTEREOB, nil
	case "l1", "wind", "soho", "l1 (wind/soho)":
		return SpacecraftL1, nil
	default:
		return SpacecraftUnknown, fmt.Errorf("unrecognized spacecraft %q", s)
	}
}

func (sc Spacecraft) String() string {
	switch sc {
	case SpacecraftPSP:
		return "PSP"
	case SpacecraftSolO:
		return "SolO"
	case SpacecraftSTEREOA:
		return "STEREO-A"
	case SpacecraftSTEREOB:
		return "STEREO-B"
	case SpacecraftL1:
		return "L1 (Wind/SOHO)"
	default:
		return "unknown"
	}
}

// Title returns the figure title used above the first panel.
func (sc Spacecraft) Title() string {
	switch sc {
	case SpacecraftPSP:
		return "Parker Solar Probe"
	case SpacecraftSolO:
		return "Solar Orbiter"
	case SpacecraftSTEREOA:
		return "STEREO A"
	case SpacecraftSTEREOB:
		return "STEREO B"
	case SpacecraftL1:
		return "Near-Earth spacecraft (Wind, SOHO)"
	default:
		return "unknown spacecraft"
	}
}

// Instrument identifies a dataset source within a spacecraft's payload, or
// an auxiliary observatory dataset plotted alongside it.
type Instrument string

const (
	InstrumentMag       Instrument = "mag"
	InstrumentRadio     Instrument = "radio"
	InstrumentElectrons Instrument = "electrons"
	InstrumentProtons   Instrument = "protons"
	InstrumentSolarWind Instrument = "solarwind"
	InstrumentSTIX      Instrument = "stix"
	InstrumentGOESXRS   Instrument = "goes-xrs"
)
