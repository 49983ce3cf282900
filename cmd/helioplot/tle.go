package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/signalsfoundry/helioplot/core"
)

// loadGOESEphemeris reads a TLE file, with or without the leading name line,
// and builds the SGP4-backed Sun distance provider from the element pair.
func loadGOESEphemeris(path string) (core.SunDistanceProvider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var line1, line2 string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "1 "):
			line1 = line
		case strings.HasPrefix(line, "2 "):
			line2 = line
		}
	}
	if line1 == "" || line2 == "" {
		return nil, fmt.Errorf("no TLE element pair in %s", path)
	}
	return core.NewGOESEphemerisFromTLE(line1, line2), nil
}
