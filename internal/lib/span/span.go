// Package span computes the geometry between two adjacent support structures.
package span

import (
	"math"

	"github.com/dpup/gridline/server/internal/lib/geo"
)

// Result holds the geometry of a single span.
type Result struct {
	HorizontalDistanceMeters  float64      `json:"horizontal_distance_meters"`
	SlantDistanceMeters       float64      `json:"slant_distance_meters"`
	ElevationDifferenceMeters float64      `json:"elevation_difference_meters"`
	SlopeAngleDegrees         float64      `json:"slope_angle_degrees"`
	AzimuthDegrees            float64      `json:"azimuth_degrees"`
	BackAzimuthDegrees        float64      `json:"back_azimuth_degrees"`
	Midpoint                  geo.GeoPoint `json:"midpoint"`
}

// Analyzer measures spans on the ellipsoid.
type Analyzer struct {
	geod geo.Geodesy
}

// NewAnalyzer creates a span Analyzer.
func NewAnalyzer(geod geo.Geodesy) *Analyzer {
	return &Analyzer{geod: geod}
}

// Analyze computes horizontal, slant, and vertical geometry between two
// structures. When includeElevation is false the slant distance equals the
// horizontal distance and the slope angle is zero.
func (a *Analyzer) Analyze(p1, p2 geo.GeoPoint, includeElevation bool) (*Result, error) {
	horizontal, azimuth, err := a.geod.Inverse(p1, p2)
	if err != nil {
		return nil, err
	}
	_, backAzimuth, err := a.geod.Inverse(p2, p1)
	if err != nil {
		return nil, err
	}

	midpoint, err := a.geod.Midpoint(p1, p2)
	if err != nil {
		return nil, err
	}

	elevationDiff := p2.Elevation - p1.Elevation
	slant := horizontal
	slope := 0.0
	if includeElevation {
		slant = math.Sqrt(horizontal*horizontal + elevationDiff*elevationDiff)
		slope = math.Atan2(elevationDiff, horizontal) * 180 / math.Pi
	}

	return &Result{
		HorizontalDistanceMeters:  horizontal,
		SlantDistanceMeters:       slant,
		ElevationDifferenceMeters: elevationDiff,
		SlopeAngleDegrees:         slope,
		AzimuthDegrees:            azimuth,
		BackAzimuthDegrees:        backAzimuth,
		Midpoint:                  midpoint,
	}, nil
}
