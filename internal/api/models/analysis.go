package models

import (
	"encoding/json"
	"net/http"

	"github.com/lerengaman/lerengaman/internal/geocode"
)

// AnalysisRequest is the body of a risk analysis request. Coordinates are
// pointers so missing fields can be told apart from zero values.
type AnalysisRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// BoundsPayload echoes the supported analysis region in responses.
type BoundsPayload struct {
	SouthWest [2]float64 `json:"southWest"`
	NorthEast [2]float64 `json:"northEast"`
}

// SourceAttribution names the origin of each datum in an analysis.
type SourceAttribution struct {
	Elevation  string `json:"elevation"`
	Rainfall   string `json:"rainfall"`
	LandCover  string `json:"landCover"`
	SoilType   string `json:"soilType"`
	Population string `json:"population"`
	Address    string `json:"address"`
}

// AnalysisMetadata carries quality and provenance data for an analysis.
type AnalysisMetadata struct {
	Sources        SourceAttribution `json:"sources"`
	Resolution     string            `json:"resolution"`
	Confidence     int               `json:"confidence"`
	Cached         bool              `json:"cached"`
	ProcessingTime int64             `json:"processingTime"`
	DataSources    []string          `json:"dataSources"`
}

// AnalysisResponse is the full risk analysis result.
type AnalysisResponse struct {
	Elevation         float64                `json:"elevation"`
	Slope             float64                `json:"slope"`
	LandCover         string                 `json:"landCover"`
	Rainfall          float64                `json:"rainfall"`
	SoilType          string                 `json:"soilType"`
	NDVI              float64                `json:"ndvi"`
	PopulationDensity float64                `json:"populationDensity"`
	RiskLevel         string                 `json:"riskLevel"`
	RiskScore         int                    `json:"riskScore"`
	GeologicalRisk    string                 `json:"geologicalRisk"`
	Address           string                 `json:"address"`
	AddressDetails    geocode.AddressDetails `json:"addressDetails"`
	Accuracy          int                    `json:"accuracy"`
	Timestamp         string                 `json:"timestamp"`
	Metadata          AnalysisMetadata       `json:"metadata"`
}

// AnalysisProblem is an RFC7807 problem extended with recovery guidance
// for failed analyses.
type AnalysisProblem struct {
	Problem

	// Solution suggests how to resolve the failure.
	Solution string `json:"solution,omitempty"`

	// Requires lists the preconditions for a successful analysis.
	Requires []string `json:"requires,omitempty"`

	// Note states the live-data contract.
	Note string `json:"note,omitempty"`

	// ValidBounds echoes the supported region on validation failures.
	ValidBounds *BoundsPayload `json:"validBounds,omitempty"`
}

// Write writes the extended problem as JSON to the ResponseWriter.
func (p *AnalysisProblem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("X-Request-Id", p.TraceID)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
