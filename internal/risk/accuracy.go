package risk

import (
	"math"
	"strings"
)

// Base accuracy per declared spatial resolution.
var resolutionAccuracy = map[string]float64{
	"10m":    95,
	"10-30m": 90,
	"30m":    85,
	"100m":   75,
	"250m":   65,
	"5566m":  60,
}

const defaultResolutionAccuracy = 75.0

// Accuracy estimates how trustworthy an assessment is, given the spatial
// resolution, the aggregator's confidence (0-100), and the provenance
// strings of the data that fed it. External live sources earn a bonus of 3
// points each, capped at 15; the final value is capped at 95.
func Accuracy(resolution string, confidence float64, dataSources []string) int {
	base, ok := resolutionAccuracy[resolution]
	if !ok {
		base = defaultResolutionAccuracy
	}

	liveSources := 0
	for _, s := range dataSources {
		if strings.Contains(s, "API") || strings.Contains(s, "GeoNames") || strings.Contains(s, "OpenStreetMap") {
			liveSources++
		}
	}
	bonus := math.Min(15, float64(liveSources)*3)

	return int(math.Min(95, math.Round(base*(confidence/100))+bonus))
}
