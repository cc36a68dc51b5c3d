package catenary

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/gridline/server/internal/lib/errs"
)

func TestModel_ComputeSag(t *testing.T) {
	m := NewModel()

	// 300m span of 1.5 kg/m conductor at 20kN horizontal tension, 25C
	result, err := m.ComputeSag(SagParams{
		SpanLength:      300,
		ConductorWeight: 1.5,
		Tension:         20000,
		Temperature:     25,
	})
	require.NoError(t, err)

	assert.InDelta(t, 8.2772, result.SagMeters, 0.001)
	assert.InDelta(t, 1359.16, result.CatenaryConstant, 0.01)
	assert.InDelta(t, 300.667, result.ConductorLengthMeters, 0.01)
	assert.InDelta(t, 1.000193, result.ThermalCoefficient, 1e-6)
	assert.InDelta(t, -result.SagMeters, result.LowestPointHeightMeters, 1e-9)
	assert.False(t, result.WindLoaded)
	assert.InDelta(t, 1.5, result.EffectiveWeightKgPerM, 1e-9)
}

func TestModel_ComputeSag_Monotonicity(t *testing.T) {
	m := NewModel()

	base := SagParams{SpanLength: 300, ConductorWeight: 1.5, Tension: 20000, Temperature: 15}
	baseline, err := m.ComputeSag(base)
	require.NoError(t, err)

	longer := base
	longer.SpanLength = 400
	r, err := m.ComputeSag(longer)
	require.NoError(t, err)
	assert.Greater(t, r.SagMeters, baseline.SagMeters, "Sag grows with span length")

	heavier := base
	heavier.ConductorWeight = 2.5
	r, err = m.ComputeSag(heavier)
	require.NoError(t, err)
	assert.Greater(t, r.SagMeters, baseline.SagMeters, "Sag grows with conductor weight")

	tighter := base
	tighter.Tension = 30000
	r, err = m.ComputeSag(tighter)
	require.NoError(t, err)
	assert.Less(t, r.SagMeters, baseline.SagMeters, "Sag shrinks as tension increases")
}

func TestModel_ComputeSag_WindLoading(t *testing.T) {
	m := NewModel()

	wind := 400.0 // Pa
	result, err := m.ComputeSag(SagParams{
		SpanLength:      300,
		ConductorWeight: 1.5,
		Tension:         20000,
		Temperature:     15,
		WindPressure:    &wind,
	})
	require.NoError(t, err)

	assert.True(t, result.WindLoaded)
	assert.Greater(t, result.EffectiveWeightKgPerM, 1.5,
		"Wind load increases the effective weight")
	// 400 Pa on a 30mm conductor: sqrt(1.5^2 + (12/9.81)^2)
	assert.InDelta(t, 1.9355, result.EffectiveWeightKgPerM, 0.001)

	calm, err := m.ComputeSag(SagParams{
		SpanLength: 300, ConductorWeight: 1.5, Tension: 20000, Temperature: 15,
	})
	require.NoError(t, err)
	assert.Greater(t, result.SagMeters, calm.SagMeters)
}

func TestModel_ComputeSag_Validation(t *testing.T) {
	m := NewModel()

	cases := []SagParams{
		{SpanLength: 0, ConductorWeight: 1.5, Tension: 20000},
		{SpanLength: -10, ConductorWeight: 1.5, Tension: 20000},
		{SpanLength: 300, ConductorWeight: 0, Tension: 20000},
		{SpanLength: 300, ConductorWeight: 1.5, Tension: -1},
	}
	for _, p := range cases {
		_, err := m.ComputeSag(p)
		require.Error(t, err)
		assert.True(t, errs.IsValidation(err), "expected ValidationError for %+v", p)
	}
}

func TestModel_ComputeSag_UnequalSupports(t *testing.T) {
	m := NewModel()

	result, err := m.ComputeSag(SagParams{
		SpanLength:      300,
		ConductorWeight: 1.5,
		Tension:         20000,
		Temperature:     15,
		ElevationDiff:   20, // right support 20m above the left
	})
	require.NoError(t, err)

	assert.True(t, result.UnequalSupports)
	assert.InDelta(t, 300, result.LowPointOffsetLeft+result.LowPointOffsetRight, 1e-6,
		"Offsets partition the span")
	assert.Less(t, result.LowPointOffsetLeft, 150.0,
		"Low point shifts toward the lower support")
	assert.Less(t, result.LowestPointHeightMeters, 0.0)

	// Offsets satisfy the catenary height-difference equation
	c := result.CatenaryConstant
	dh := c * (math.Cosh(result.LowPointOffsetRight/c) - math.Cosh(result.LowPointOffsetLeft/c))
	assert.InDelta(t, 20, dh, 1e-6)
}

func TestModel_ComputeSag_UnequalSupportsOutOfRange(t *testing.T) {
	m := NewModel()

	// At this tension the low point cannot fall within a 300m span with a
	// 100m support offset.
	_, err := m.ComputeSag(SagParams{
		SpanLength:      300,
		ConductorWeight: 1.5,
		Tension:         20000,
		Temperature:     15,
		ElevationDiff:   100,
	})
	require.Error(t, err)
	assert.True(t, errs.IsComputation(err))
}

func TestModel_GenerateCurve(t *testing.T) {
	m := NewModel()

	result, err := m.GenerateCurve(300, 8.2772, 51)
	require.NoError(t, err)
	require.Len(t, result.Points, 51)

	// Supports at y=0, low point at -sag
	assert.InDelta(t, 0, result.Points[0].Y, 1e-6)
	assert.InDelta(t, 0, result.Points[50].Y, 1e-6)
	assert.InDelta(t, -8.2772, result.Points[25].Y, 1e-6)

	// Symmetric about midspan for equal supports
	for i := 0; i < 25; i++ {
		assert.InDelta(t, result.Points[i].Y, result.Points[50-i].Y, 1e-9)
	}

	// Recovered constant is near the parabolic seed L^2/(8*sag)
	assert.InDelta(t, 1359, result.CatenaryConstant, 5)
	assert.Greater(t, result.CurveLengthMeters, 300.0)
}

func TestModel_GenerateCurve_Validation(t *testing.T) {
	m := NewModel()

	_, err := m.GenerateCurve(0, 8, 10)
	assert.True(t, errs.IsValidation(err))

	_, err = m.GenerateCurve(300, -1, 10)
	assert.True(t, errs.IsValidation(err))

	_, err = m.GenerateCurve(300, 8, 1)
	assert.True(t, errs.IsValidation(err))
}
