package model

import (
	"time"

	"github.com/signalsfoundry/helioplot/series"
)

// State is the heliocentric context of a spacecraft over a plot interval:
// radial distance in AU and heliographic latitude in degrees. Both are held
// constant across the interval; the polarity classifier assumes a single
// Parker angle per call.
type State struct {
	RadiusAU float64
	LatDeg   float64
}

// DatasetMeta carries provenance for a fetched dataset.
type DatasetMeta struct {
	Source    string    // e.g. "NOAA SWPC", "STIX data center"
	URL       string    // endpoint the payload came from
	Satellite int       // GOES satellite number; 0 when not applicable
	LTC       bool      // light-travel-time correction applied to timestamps
	FetchedAt time.Time // wall-clock time the payload was retrieved
}

// Dataset ties a fetched time-series payload to its spacecraft, instrument,
// and provenance. Empty is the degraded "nothing retrieved" state; plotting
// code must tolerate it (the panel renders empty rather than aborting).
type Dataset struct {
	Spacecraft Spacecraft
	Instrument Instrument
	Meta       DatasetMeta

	// Frame holds the aligned samples, NaN where the source had gaps or
	// bad quality flags. May be nil when nothing was retrieved.
	Frame *series.Frame
}

// Empty reports whether the dataset holds no samples.
func (d *Dataset) Empty() bool { return d == nil || d.Frame == nil || d.Frame.Len() == 0 }

// Key identifies a dataset slot in the catalog.
type Key struct {
	Spacecraft Spacecraft
	Instrument Instrument
}

func (k Key) String() string { return k.Spacecraft.String() + "/" + string(k.Instrument) }
