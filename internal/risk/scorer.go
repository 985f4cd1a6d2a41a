// Package risk computes landslide risk scores for the DIY region. Scoring
// is a pure weighted sum over normalized environmental factors; no I/O.
package risk

import "math"

// Level is the qualitative risk classification.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Factor weights. They sum to 1.0.
const (
	weightSlope     = 0.35
	weightRainfall  = 0.25
	weightElevation = 0.20
	weightLandCover = 0.15
	weightSoilType  = 0.05
)

// Normalization ceilings for the numeric factors.
const (
	maxSlope     = 45.0   // degrees
	maxRainfall  = 400.0  // mm/month
	maxElevation = 1000.0 // meters
)

// defaultCategoryRisk applies when a land cover or soil label is not in
// the lookup tables.
const defaultCategoryRisk = 50.0

// landCoverRisk maps land cover categories to risk contributions.
var landCoverRisk = map[string]float64{
	"Lahan Terbuka":        85,
	"Semak Belukar":        65,
	"Rumput":               55,
	"Ladang":               60,
	"Permukiman":           40,
	"Permukiman Padat":     45,
	"Kawasan Komersial":    50,
	"Hutan":                25,
	"Hutan/Pegunungan":     30,
	"Hutan Lahan Kering":   35,
	"Sawah":                30,
	"Lahan Pertanian":      35,
	"Tegalan":              50,
	"Kebun":                40,
	"Perkebunan":           35,
	"Padang Rumput":        40,
	"Lahan Kering Berbatu": 70,
	"Lahan Basah":          30,
	"Badan Air":            10,
	"Area Campuran":        50,
	"Tidak Diketahui":      50,
}

// soilRisk maps soil type categories to risk contributions.
var soilRisk = map[string]float64{
	"Liat Berat (Grumusol)": 80,
	"Grumusol (Liat Kapur)": 75,
	"Liat":                  70,
	"Andosol (Vulkanik)":    75,
	"Mediteran":             60,
	"Latosol":               45,
	"Berpasir":              35,
	"Aluvial":               30,
}

// Score computes the weighted risk score for the given factors.
// The result is always in [0, 100].
func Score(elevation, slope, rainfall float64, landCover, soilType string) int {
	slopeScore := math.Min(slope/maxSlope*100, 100)
	rainfallScore := math.Min(rainfall/maxRainfall*100, 100)
	elevationScore := math.Min(elevation/maxElevation*100, 100)

	landCoverScore, ok := landCoverRisk[landCover]
	if !ok {
		landCoverScore = defaultCategoryRisk
	}

	soilScore, ok := soilRisk[soilType]
	if !ok {
		soilScore = defaultCategoryRisk
	}

	weighted := slopeScore*weightSlope +
		rainfallScore*weightRainfall +
		elevationScore*weightElevation +
		landCoverScore*weightLandCover +
		soilScore*weightSoilType

	return int(math.Round(math.Min(math.Max(weighted, 0), 100)))
}

// LevelForScore classifies a score. Both cuts are greater-or-equal.
func LevelForScore(score int) Level {
	switch {
	case score >= 70:
		return LevelHigh
	case score >= 40:
		return LevelMedium
	}
	return LevelLow
}
