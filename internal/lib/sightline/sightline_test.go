package sightline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/gridline/server/internal/lib/errs"
	"github.com/dpup/gridline/server/internal/lib/geo"
)

func TestAnalyzer_Analyze_Clear(t *testing.T) {
	a := NewAnalyzer()

	p1 := geo.GeoPoint{Longitude: 0, Latitude: 0, Elevation: 100}
	p2 := geo.GeoPoint{Longitude: 0.01, Latitude: 0, Elevation: 120}

	// Sight line runs from 102 to 150; terrain stays well below it
	profile := []float64{100, 105, 110, 108, 120}
	result, err := a.Analyze(p1, p2, profile, 2, 30)
	require.NoError(t, err)

	assert.True(t, result.Clear)
	assert.Equal(t, "CLEAR", result.Status)
	assert.Zero(t, result.ObstructionCount)
	assert.Zero(t, result.MaxObstructionHeightMeters)
	assert.Greater(t, result.ClearanceMarginMeters, 0.0)
	assert.InDelta(t, 102, result.ObserverElevationMeters, 1e-9)
	assert.InDelta(t, 150, result.TargetElevationMeters, 1e-9)
	assert.Equal(t, 5, result.ProfileSamples)
}

func TestAnalyzer_Analyze_Obstructed(t *testing.T) {
	a := NewAnalyzer()

	p1 := geo.GeoPoint{Longitude: 0, Latitude: 0, Elevation: 100}
	p2 := geo.GeoPoint{Longitude: 0.01, Latitude: 0, Elevation: 100}

	// Sight line is flat at 110; a ridge at the middle sample reaches 140
	profile := []float64{100, 105, 140, 105, 100}
	result, err := a.Analyze(p1, p2, profile, 10, 10)
	require.NoError(t, err)

	assert.False(t, result.Clear)
	assert.Equal(t, "OBSTRUCTED", result.Status)
	assert.Equal(t, 1, result.ObstructionCount)
	assert.Equal(t, []int{2}, result.ObstructionIndices)
	assert.InDelta(t, 30, result.MaxObstructionHeightMeters, 1e-9)
	assert.InDelta(t, -30, result.ClearanceMarginMeters, 1e-9,
		"Margin goes negative by the worst obstruction height")
}

func TestAnalyzer_Analyze_GrazingTerrain(t *testing.T) {
	a := NewAnalyzer()

	p1 := geo.GeoPoint{Elevation: 100}
	p2 := geo.GeoPoint{Longitude: 0.01, Elevation: 100}

	// Terrain exactly at the sight line does not count as an obstruction
	profile := []float64{110, 110, 110}
	result, err := a.Analyze(p1, p2, profile, 10, 10)
	require.NoError(t, err)

	assert.True(t, result.Clear)
	assert.Zero(t, result.ClearanceMarginMeters)
}

func TestAnalyzer_Analyze_Validation(t *testing.T) {
	a := NewAnalyzer()

	_, err := a.Analyze(geo.GeoPoint{}, geo.GeoPoint{Longitude: 0.01}, []float64{100}, 2, 30)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	_, err = a.Analyze(geo.GeoPoint{Latitude: 91}, geo.GeoPoint{}, []float64{100, 100}, 2, 30)
	require.Error(t, err)
	assert.True(t, errs.IsGeometry(err))
}
