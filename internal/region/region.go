// Package region holds the static reference data for the DIY analysis
// region: the supported bounding box, the coordinate-to-district classifier,
// and the per-district soil and population tables. All lookups are pure
// functions over immutable tables loaded at startup.
package region

import (
	"errors"
	"math"
)

// ErrUnknownDistrict is returned when a coordinate cannot be classified
// into any known DIY district.
var ErrUnknownDistrict = errors.New("coordinate not in a known DIY district")

// Bounds is a rectangular geographic bounding box.
type Bounds struct {
	SouthWestLat float64
	SouthWestLng float64
	NorthEastLat float64
	NorthEastLng float64
}

// DefaultBounds covers the Daerah Istimewa Yogyakarta region.
var DefaultBounds = Bounds{
	SouthWestLat: -8.35,
	SouthWestLng: 109.95,
	NorthEastLat: -7.35,
	NorthEastLng: 110.85,
}

// Contains reports whether the coordinate lies within the box.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.SouthWestLat && lat <= b.NorthEastLat &&
		lng >= b.SouthWestLng && lng <= b.NorthEastLng
}

// soilComposition maps district name to soil type shares. Shares per
// district sum to 1.0; the dominant entry is the one reported.
var soilComposition = map[string]map[string]float64{
	"Sleman": {
		"Andosol (Vulkanik)": 0.65,
		"Latosol":            0.25,
		"Aluvial":            0.10,
	},
	"Gunungkidul": {
		"Grumusol (Liat Kapur)": 0.70,
		"Mediteran":             0.20,
		"Latosol":               0.10,
	},
	"Kulon Progo": {
		"Mediteran": 0.60,
		"Latosol":   0.30,
		"Aluvial":   0.10,
	},
	"Bantul": {
		"Latosol":               0.50,
		"Grumusol (Liat Kapur)": 0.30,
		"Aluvial":               0.20,
	},
	"Kota Yogyakarta": {
		"Aluvial": 0.80,
		"Latosol": 0.20,
	},
}

// populationDensity is people per square kilometre per district (BPS).
var populationDensity = map[string]float64{
	"Kota Yogyakarta": 11562,
	"Sleman":          2052,
	"Bantul":          2024,
	"Gunungkidul":     506,
	"Kulon Progo":     763,
}

// DistrictFromCoordinates classifies a coordinate into one of the five DIY
// districts using fixed latitude/longitude bands. Band order matters: the
// urban Kota Yogyakarta band is carved out of the Bantul band.
func DistrictFromCoordinates(lat, lng float64) (string, error) {
	switch {
	case lat > -7.75 && lat < -7.55:
		return "Sleman", nil
	case lat > -7.85 && lat < -7.75 && lng > 110.35 && lng < 110.42:
		return "Kota Yogyakarta", nil
	case lat > -8.00 && lat < -7.75:
		return "Bantul", nil
	case lat < -8.00:
		return "Gunungkidul", nil
	case lng < 110.25:
		return "Kulon Progo", nil
	}
	return "", ErrUnknownDistrict
}

// DominantSoil returns the soil type with the highest share for the
// district containing the coordinate.
func DominantSoil(lat, lng float64) (string, error) {
	district, err := DistrictFromCoordinates(lat, lng)
	if err != nil {
		return "", err
	}
	composition, ok := soilComposition[district]
	if !ok {
		return "", ErrUnknownDistrict
	}

	var dominant string
	var best float64
	for soil, share := range composition {
		if share > best || (share == best && soil < dominant) {
			dominant = soil
			best = share
		}
	}
	return dominant, nil
}

// PopulationDensity returns the per-district density for the coordinate.
func PopulationDensity(lat, lng float64) (float64, error) {
	district, err := DistrictFromCoordinates(lat, lng)
	if err != nil {
		return 0, err
	}
	density, ok := populationDensity[district]
	if !ok {
		return 0, ErrUnknownDistrict
	}
	return density, nil
}

// Representative slope per geographic zone, in degrees. Values come from
// field surveys of the DIY terrain.
const (
	slopeMerapi     = 28.0
	slopeKarst      = 22.0
	slopeMenoreh    = 21.0
	slopeLowland    = 5.0
	slopeYogyaUrban = 3.0
)

// SlopeAt derives a slope estimate for the coordinate from its geographic
// zone and elevation. Higher ground gets a fixed multiplier. The result is
// rounded to one decimal place.
func SlopeAt(lat, lng, elevation float64) float64 {
	var slope float64
	switch {
	case isMerapiSlope(lat, lng):
		slope = slopeMerapi
	case isGunungkidulKarst(lat, lng):
		slope = slopeKarst
	case isMenorehHills(lat, lng):
		slope = slopeMenoreh
	case isUrbanYogyakarta(lat, lng):
		slope = slopeYogyaUrban
	default:
		slope = slopeLowland
	}

	factor := 1.0
	switch {
	case elevation > 500:
		factor = 1.5
	case elevation > 200:
		factor = 1.2
	}

	return math.Round(slope*factor*10) / 10
}

// Representative NDVI per vegetation zone, from DIY remote-sensing studies.
const (
	ndviMerapiForest = 0.72
	ndviGunungkidul  = 0.31
	ndviUrban        = 0.22
	ndviAgricultural = 0.55
	ndviPaddyFields  = 0.65
)

// NDVIAt returns the representative vegetation index for the coordinate's
// zone. Coordinates outside every named zone default to irrigated paddies,
// the most common cover in the DIY lowlands.
func NDVIAt(lat, lng float64) float64 {
	switch {
	case isMerapiSlope(lat, lng):
		return ndviMerapiForest
	case lat < -7.95:
		return ndviGunungkidul
	case isUrbanYogyakarta(lat, lng):
		return ndviUrban
	case isAgriculturalBelt(lat, lng):
		return ndviAgricultural
	}
	return ndviPaddyFields
}

// Named zone bounding boxes.

func isMerapiSlope(lat, lng float64) bool {
	return lat > -7.60 && lat < -7.40 && lng > 110.42
}

func isGunungkidulKarst(lat, lng float64) bool {
	return lat < -7.95 && lng > 110.45
}

func isMenorehHills(lat, lng float64) bool {
	return lng < 110.25 && lat > -7.90
}

func isUrbanYogyakarta(lat, lng float64) bool {
	return lat > -7.80 && lat < -7.75 && lng > 110.35 && lng < 110.42
}

func isAgriculturalBelt(lat, lng float64) bool {
	return lat > -7.85 && lat < -7.75 && lng > 110.25 && lng < 110.35
}
