// Package catenary models conductor sag and shape for a span under tension,
// weight, temperature, and optional wind load.
package catenary

import (
	"math"

	"github.com/dpup/gridline/server/internal/lib/errs"
)

const (
	gravity = 9.81 // m/s^2

	// Typical ACSR conductor values
	defaultConductorDiameter = 0.03    // meters
	thermalExpansion         = 19.3e-6 // per degree C
	referenceTemperature     = 15.0    // Celsius

	maxBisectionIterations = 100
	bisectionTolerance     = 1e-9
)

// SagParams describe a single span. ElevationDiff is the elevation of the
// right support minus the left; zero means equal-height supports. Temperature
// defaults are applied by the caller; the 15C baseline lives here.
type SagParams struct {
	SpanLength      float64 // meters
	ConductorWeight float64 // kg/m
	Tension         float64 // Newtons (horizontal component)
	Temperature     float64 // Celsius
	WindPressure    *float64
	ElevationDiff   float64 // meters, right support minus left
}

// SagResult holds the computed sag geometry for a span.
type SagResult struct {
	SagMeters               float64 `json:"sag_meters"`
	CatenaryConstant        float64 `json:"catenary_constant"`
	ConductorLengthMeters   float64 `json:"conductor_length_meters"`
	LowestPointHeightMeters float64 `json:"lowest_point_height_meters"`
	ThermalCoefficient      float64 `json:"thermal_coefficient"`
	EffectiveWeightKgPerM   float64 `json:"effective_weight_kg_per_m"`
	TemperatureCelsius      float64 `json:"temperature_celsius"`
	WindLoaded              bool    `json:"wind_loaded"`

	// Unequal-height support extension. Offsets are horizontal distances from
	// the left and right supports to the low point of the curve.
	UnequalSupports     bool    `json:"unequal_supports"`
	LowPointOffsetLeft  float64 `json:"low_point_offset_left_meters,omitempty"`
	LowPointOffsetRight float64 `json:"low_point_offset_right_meters,omitempty"`
	ElevationDiffMeters float64 `json:"elevation_difference_meters,omitempty"`
}

// CurvePoint is a sampled position along the conductor curve. X runs from 0
// at the left support to the span length; Y is 0 at the supports and -sag at
// the low point.
type CurvePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CurveResult holds a sampled catenary curve for visualization.
type CurveResult struct {
	Points            []CurvePoint `json:"curve_points"`
	CatenaryConstant  float64      `json:"catenary_constant"`
	MaxSagMeters      float64      `json:"max_sag_meters"`
	SpanLengthMeters  float64      `json:"span_length_meters"`
	CurveLengthMeters float64      `json:"curve_length_meters"`
}

// Model computes catenary geometry. It holds no state between calls.
type Model struct {
	ConductorDiameter float64
}

// NewModel creates a Model with typical ACSR conductor parameters.
func NewModel() *Model {
	return &Model{ConductorDiameter: defaultConductorDiameter}
}

// ComputeSag calculates midspan sag, catenary constant, and conductor length
// for a span. Sag uses the standard parabolic approximation w*g*L^2/(8T);
// conductor length uses the exact catenary arc length 2c*sinh(L/2c) scaled by
// a linear thermal coefficient against the 15C baseline. This is a linear
// approximation, not a full thermal-tension equilibrium solve.
func (m *Model) ComputeSag(p SagParams) (*SagResult, error) {
	if p.SpanLength <= 0 {
		return nil, errs.Validationf("span_length must be positive, got %g", p.SpanLength)
	}
	if p.ConductorWeight <= 0 {
		return nil, errs.Validationf("conductor_weight must be positive, got %g", p.ConductorWeight)
	}
	if p.Tension <= 0 {
		return nil, errs.Validationf("tension must be positive, got %g", p.Tension)
	}

	// Wind load acts horizontally on the conductor face; the effective weight
	// is the magnitude of the combined vertical and wind vectors.
	effectiveWeight := p.ConductorWeight
	windLoaded := false
	if p.WindPressure != nil && *p.WindPressure > 0 {
		windLoad := *p.WindPressure * m.ConductorDiameter // N/m
		effectiveWeight = math.Sqrt(p.ConductorWeight*p.ConductorWeight +
			(windLoad/gravity)*(windLoad/gravity))
		windLoaded = true
	}

	weightPerMeter := effectiveWeight * gravity // N/m
	c := p.Tension / weightPerMeter

	sag := weightPerMeter * p.SpanLength * p.SpanLength / (8 * p.Tension)

	// Exact arc length of the catenary between equal supports
	conductorLength := 2 * c * math.Sinh(p.SpanLength/(2*c))

	// Linear elongation relative to the 15C baseline, applied to length only
	thermalCoefficient := 1 + thermalExpansion*(p.Temperature-referenceTemperature)
	conductorLength *= thermalCoefficient

	result := &SagResult{
		SagMeters:               sag,
		CatenaryConstant:        c,
		ConductorLengthMeters:   conductorLength,
		LowestPointHeightMeters: -sag,
		ThermalCoefficient:      thermalCoefficient,
		EffectiveWeightKgPerM:   effectiveWeight,
		TemperatureCelsius:      p.Temperature,
		WindLoaded:              windLoaded,
	}

	if p.ElevationDiff != 0 {
		x1, x2, err := solveLowPointOffsets(p.SpanLength, c, p.ElevationDiff)
		if err != nil {
			return nil, err
		}
		result.UnequalSupports = true
		result.LowPointOffsetLeft = x1
		result.LowPointOffsetRight = x2
		result.ElevationDiffMeters = p.ElevationDiff

		// Depth of the low point below the lower support
		xLow := x1
		if p.ElevationDiff < 0 {
			xLow = x2
		}
		result.LowestPointHeightMeters = -(c * (math.Cosh(xLow/c) - 1))
	}

	return result, nil
}

// solveLowPointOffsets finds horizontal offsets x1 (left support to low
// point) and x2 (right support to low point), x1+x2 = span, satisfying the
// catenary height-difference equation c*(cosh(x2/c) - cosh(x1/c)) = dh.
// Bisection over x1 in (0, span).
func solveLowPointOffsets(span, c, dh float64) (float64, float64, error) {
	f := func(x1 float64) float64 {
		return c*(math.Cosh((span-x1)/c)-math.Cosh(x1/c)) - dh
	}

	lo, hi := 0.0, span
	if f(lo) < 0 || f(hi) > 0 {
		// The low point lies outside the span; the supports are too steeply
		// offset for this tension.
		return 0, 0, errs.Computationf(
			"unequal-support solve has no low point within the span (dh=%g, span=%g)", dh, span)
	}

	for i := 0; i < maxBisectionIterations; i++ {
		mid := (lo + hi) / 2
		v := f(mid)
		if math.Abs(v) < bisectionTolerance || (hi-lo)/2 < bisectionTolerance {
			return mid, span - mid, nil
		}
		if v > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}

	return 0, 0, errs.Computationf(
		"unequal-support solve did not converge within %d iterations", maxBisectionIterations)
}

// GenerateCurve samples the catenary shape for a span with a known midspan
// sag. The catenary constant is recovered from span and sag by a bounded
// inverse solve, then numPoints samples are taken evenly along x in
// [0, span]. The curve is symmetric about midspan.
func (m *Model) GenerateCurve(spanLength, sag float64, numPoints int) (*CurveResult, error) {
	if spanLength <= 0 {
		return nil, errs.Validationf("span_length must be positive, got %g", spanLength)
	}
	if sag <= 0 {
		return nil, errs.Validationf("sag must be positive, got %g", sag)
	}
	if numPoints < 2 {
		return nil, errs.Validationf("num_points must be at least 2, got %d", numPoints)
	}

	c, err := solveCatenaryConstant(spanLength, sag)
	if err != nil {
		return nil, err
	}

	points := make([]CurvePoint, numPoints)
	for i := 0; i < numPoints; i++ {
		x := spanLength * float64(i) / float64(numPoints-1)
		// Supports at y=0, low point at y=-sag
		y := c*(math.Cosh((x-spanLength/2)/c)-1) - sag
		points[i] = CurvePoint{X: x, Y: y}
	}

	return &CurveResult{
		Points:            points,
		CatenaryConstant:  c,
		MaxSagMeters:      sag,
		SpanLengthMeters:  spanLength,
		CurveLengthMeters: 2 * c * math.Sinh(spanLength/(2*c)),
	}, nil
}

// solveCatenaryConstant inverts sag = c*(cosh(L/2c) - 1) for c. Substituting
// z = L/(2c), sag(z) = (L/2z)*(cosh z - 1) is monotonically increasing in z,
// so the root brackets cleanly. The parabolic seed c ~ L^2/(8*sag)
// corresponds to small z.
func solveCatenaryConstant(span, sag float64) (float64, error) {
	target := func(z float64) float64 {
		return span/(2*z)*(math.Cosh(z)-1) - sag
	}

	lo := 1e-9
	hi := 1.0
	grow := 0
	for target(hi) < 0 {
		hi *= 2
		grow++
		if grow > 60 {
			return 0, errs.Computationf("catenary constant solve failed to bracket sag %g over span %g", sag, span)
		}
	}

	for i := 0; i < maxBisectionIterations; i++ {
		mid := (lo + hi) / 2
		if target(mid) > 0 {
			hi = mid
		} else {
			lo = mid
		}
		if hi-lo < 1e-12 {
			break
		}
	}

	z := (lo + hi) / 2
	if z <= 0 {
		return 0, errs.Computationf("catenary constant solve did not converge")
	}
	return span / (2 * z), nil
}
