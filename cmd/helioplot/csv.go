package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/helioplot/series"
)

// loadFrameCSV reads a headered CSV into a frame. The first column must be
// an RFC3339 timestamp; every other header names a float64 series. Blank
// cells and unparseable values become NaN gaps.
func loadFrameCSV(path string) (*series.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}

	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("%s: need a time column and at least one series", path)
	}

	rows := records[1:]
	times := make([]time.Time, len(rows))
	cols := make([][]float64, len(header)-1)
	for i := range cols {
		cols[i] = make([]float64, len(rows))
	}

	for i, rec := range rows {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("%s: row %d has %d fields, want %d", path, i+2, len(rec), len(header))
		}
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: bad timestamp %q: %w", path, i+2, rec[0], err)
		}
		times[i] = t
		for j, cell := range rec[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				v = math.NaN()
			}
			cols[j][i] = v
		}
	}

	frame := series.New(times)
	for j, name := range header[1:] {
		if err := frame.AddColumn(strings.TrimSpace(name), cols[j]); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return frame, nil
}
