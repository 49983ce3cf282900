// Package figure assembles the stacked multi-panel quicklook figure: panel
// selection and height arithmetic, PNG rendering, the polarity strip, and
// its color-wheel legend.
package figure

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/helioplot/core"
	"github.com/signalsfoundry/helioplot/model"
)

// Instruments holds the per-panel toggles. Which toggles are honored depends
// on the spacecraft: SolO has no radio panel and dynamic pressure is drawn
// for PSP only.
type Instruments struct {
	Radio       bool `yaml:"radio"`
	Mag         bool `yaml:"mag"`
	MagAngles   bool `yaml:"mag_angles"`
	Vsw         bool `yaml:"vsw"`
	Density     bool `yaml:"density"`
	Temperature bool `yaml:"temperature"`
	Pdyn        bool `yaml:"pdyn"`
	Electrons   bool `yaml:"electrons"`
	Protons     bool `yaml:"protons"`
	STIX        bool `yaml:"stix"`
	GOES        bool `yaml:"goes"`
}

// Options is the immutable figure configuration. Build one with
// DefaultOptions or LoadOptions, adjust, then pass by value; nothing in this
// package mutates it.
type Options struct {
	Spacecraft model.Spacecraft
	Start, End time.Time

	// Resample aggregates every drawn series into buckets of this width.
	// Zero keeps native cadence.
	Resample time.Duration

	Instruments Instruments

	// STIXLTC shifts STIX timestamps by the Sun-spacecraft light travel
	// time before drawing.
	STIXLTC bool

	// GOESSatellite pins a GOES satellite number; zero picks the largest
	// available.
	GOESSatellite int

	// Polarity configures the Parker-spiral classification behind the
	// polarity strip.
	Polarity core.PolarityParams

	// LegendsInside places legends inside the panel frame instead of to
	// the right of it.
	LegendsInside bool
}

// DefaultOptions is the quicklook default: everything except radio and
// dynamic pressure, one-minute cadence, legends inside.
func DefaultOptions(sc model.Spacecraft, start, end time.Time) Options {
	return Options{
		Spacecraft: sc,
		Start:      start,
		End:        end,
		Resample:   time.Minute,
		Instruments: Instruments{
			Mag:         true,
			MagAngles:   true,
			Vsw:         true,
			Density:     true,
			Temperature: true,
			Electrons:   true,
			Protons:     true,
			STIX:        true,
			GOES:        true,
		},
		STIXLTC:       true,
		Polarity:      core.DefaultPolarityParams(),
		LegendsInside: true,
	}
}

// optionsFile is the YAML shape of an options file. Spacecraft and resample
// come in as strings and are parsed on load.
type optionsFile struct {
	Spacecraft    string      `yaml:"spacecraft"`
	Start         time.Time   `yaml:"start"`
	End           time.Time   `yaml:"end"`
	Resample      string      `yaml:"resample"`
	Instruments   Instruments `yaml:"instruments"`
	STIXLTC       bool        `yaml:"stix_ltc"`
	GOESSatellite int         `yaml:"goes_satellite"`
	LegendsInside bool        `yaml:"legends_inside"`
	Polarity      struct {
		WindSpeed float64 `yaml:"wind_speed"`

		// A pointer so an explicit zero, which pins the ambiguous
		// sectors to the exact boundaries, is told apart from an
		// omitted key.
		DeltaAngle *float64 `yaml:"delta_angle"`
	} `yaml:"polarity"`
}

// LoadOptions reads a YAML options file. Unrecognized keys are an error so
// typos surface instead of silently dropping a panel.
func LoadOptions(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return Options{}, fmt.Errorf("open options file: %w", err)
	}
	defer f.Close()
	opts, err := DecodeOptions(f)
	if err != nil {
		return Options{}, fmt.Errorf("options file %s: %w", path, err)
	}
	return opts, nil
}

// DecodeOptions parses YAML options from r.
func DecodeOptions(r io.Reader) (Options, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file optionsFile
	if err := dec.Decode(&file); err != nil {
		return Options{}, fmt.Errorf("decode options: %w", err)
	}

	sc, err := model.ParseSpacecraft(file.Spacecraft)
	if err != nil {
		return Options{}, err
	}

	var resample time.Duration
	if file.Resample != "" {
		resample, err = time.ParseDuration(file.Resample)
		if err != nil {
			return Options{}, fmt.Errorf("bad resample %q: %w", file.Resample, err)
		}
	}

	opts := Options{
		Spacecraft:    sc,
		Start:         file.Start,
		End:           file.End,
		Resample:      resample,
		Instruments:   file.Instruments,
		STIXLTC:       file.STIXLTC,
		GOESSatellite: file.GOESSatellite,
		Polarity: core.PolarityParams{
			WindSpeed:  file.Polarity.WindSpeed,
			DeltaAngle: -1,
		},
		LegendsInside: file.LegendsInside,
	}
	if file.Polarity.DeltaAngle != nil {
		opts.Polarity.DeltaAngle = *file.Polarity.DeltaAngle
	}
	opts.Polarity = opts.Polarity.ApplyDefaults()
	return opts, opts.Validate()
}

// Validate checks the options for internal consistency.
func (o Options) Validate() error {
	if o.Spacecraft == model.SpacecraftUnknown {
		return fmt.Errorf("no spacecraft selected")
	}
	if !o.End.After(o.Start) {
		return fmt.Errorf("plot range end %v is not after start %v", o.End, o.Start)
	}
	if o.Resample < 0 {
		return fmt.Errorf("negative resample cadence %v", o.Resample)
	}
	if o.GOESSatellite < 0 {
		return fmt.Errorf("negative GOES satellite number %d", o.GOESSatellite)
	}
	return nil
}
