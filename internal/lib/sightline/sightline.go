// Package sightline tests a straight sight line between two elevated points
// against a sampled terrain profile.
package sightline

import (
	"math"

	"github.com/dpup/gridline/server/internal/lib/errs"
	"github.com/dpup/gridline/server/internal/lib/geo"
)

// Result reports a sight-line analysis. ClearanceMargin is the minimum
// vertical separation between the sight line and terrain across all samples
// and is negative when the line is obstructed.
type Result struct {
	Clear                      bool    `json:"line_of_sight_clear"`
	ClearanceMarginMeters      float64 `json:"clearance_margin_meters"`
	MaxObstructionHeightMeters float64 `json:"max_obstruction_height_meters"`
	ObstructionCount           int     `json:"obstruction_count"`
	ObstructionIndices         []int   `json:"obstruction_sample_indices,omitempty"`
	ObserverElevationMeters    float64 `json:"observer_height_asl_meters"`
	TargetElevationMeters      float64 `json:"target_height_asl_meters"`
	ProfileSamples             int     `json:"profile_samples"`
	Status                     string  `json:"status"`
}

// Analyzer evaluates terrain obstruction between two structures.
type Analyzer struct{}

// NewAnalyzer creates a sight-line Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze interpolates the sight line from (p1.Elevation + observerHeight)
// to (p2.Elevation + targetHeight) and compares it against the terrain
// profile, whose samples are assumed evenly spaced between the two points.
func (a *Analyzer) Analyze(p1, p2 geo.GeoPoint, terrainProfile []float64, observerHeight, targetHeight float64) (*Result, error) {
	if err := geo.ValidatePoint(p1); err != nil {
		return nil, err
	}
	if err := geo.ValidatePoint(p2); err != nil {
		return nil, err
	}
	if len(terrainProfile) < 2 {
		return nil, errs.Validationf("terrain_profile requires at least 2 samples, got %d", len(terrainProfile))
	}

	startElev := p1.Elevation + observerHeight
	endElev := p2.Elevation + targetHeight

	n := len(terrainProfile)
	minClearance := math.Inf(1)
	maxObstruction := 0.0
	var obstructed []int

	for i, ground := range terrainProfile {
		t := float64(i) / float64(n-1)
		sightElev := startElev + t*(endElev-startElev)

		clearance := sightElev - ground
		if clearance < minClearance {
			minClearance = clearance
		}
		if ground > sightElev {
			obstructed = append(obstructed, i)
			if height := ground - sightElev; height > maxObstruction {
				maxObstruction = height
			}
		}
	}

	clear := len(obstructed) == 0
	status := "CLEAR"
	if !clear {
		status = "OBSTRUCTED"
	}

	return &Result{
		Clear:                      clear,
		ClearanceMarginMeters:      minClearance,
		MaxObstructionHeightMeters: maxObstruction,
		ObstructionCount:           len(obstructed),
		ObstructionIndices:         obstructed,
		ObserverElevationMeters:    startElev,
		TargetElevationMeters:      endElev,
		ProfileSamples:             n,
		Status:                     status,
	}, nil
}
