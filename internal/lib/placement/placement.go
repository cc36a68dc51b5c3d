// Package placement partitions a route polyline into spans that satisfy
// minimum/typical/maximum spacing constraints.
package placement

import (
	"math"

	"github.com/dpup/gridline/server/internal/lib/errs"
	"github.com/dpup/gridline/server/internal/lib/geo"
)

// Constraints bound the allowable span lengths.
type Constraints struct {
	TypicalSpan float64 `json:"typical_span_meters"`
	MinSpan     float64 `json:"min_span_meters"`
	MaxSpan     float64 `json:"max_span_meters"`
}

// Plan is a tower layout along a route. TowerPositions[0] and the final
// position always equal the route endpoints, and SpanLengths sums to the
// total route length.
type Plan struct {
	TowerCount             int            `json:"tower_count"`
	TowerPositions         []geo.GeoPoint `json:"tower_positions"`
	SpanLengths            []float64      `json:"span_lengths"`
	SpanCount              int            `json:"num_spans"`
	TotalRouteLengthMeters float64        `json:"total_route_length_meters"`
	AverageSpanMeters      float64        `json:"average_span_meters"`
	TerrainApplied         bool           `json:"terrain_applied"`
	Constraints            Constraints    `json:"constraints"`
}

// Planner places towers along routes.
type Planner struct {
	geod geo.Geodesy
}

// NewPlanner creates a Planner.
func NewPlanner(geod geo.Geodesy) *Planner {
	return &Planner{geod: geod}
}

// Plan distributes the route length evenly across the span count closest to
// total/typical that keeps every span within [min, max]. Tower positions are
// interpolated geodesically at cumulative distances along the route. Terrain
// elevations, when supplied, are assigned to towers by nearest-sample lookup;
// they do not alter span boundaries.
func (p *Planner) Plan(route geo.Polyline, c Constraints, terrainElevations []float64) (*Plan, error) {
	if c.TypicalSpan <= 0 || c.MinSpan <= 0 || c.MaxSpan <= 0 {
		return nil, errs.Validationf(
			"span constraints must be positive (typical=%g, min=%g, max=%g)",
			c.TypicalSpan, c.MinSpan, c.MaxSpan)
	}
	if c.MinSpan > c.MaxSpan {
		// An inverted bound admits no span count at all.
		return nil, errs.Infeasiblef("min_span %g exceeds max_span %g", c.MinSpan, c.MaxSpan)
	}
	if err := geo.ValidatePolyline(route, 2); err != nil {
		return nil, err
	}

	totalLength, err := p.geod.RouteLength(route)
	if err != nil {
		return nil, err
	}
	if totalLength <= 0 {
		return nil, errs.Geometryf("route has zero length")
	}

	numSpans, err := fitSpanCount(totalLength, c)
	if err != nil {
		return nil, err
	}

	equalSpan := totalLength / float64(numSpans)
	towerCount := numSpans + 1

	positions := make([]geo.GeoPoint, towerCount)
	positions[0] = route.Points[0]
	positions[towerCount-1] = route.Points[len(route.Points)-1]
	for i := 1; i < towerCount-1; i++ {
		target := totalLength * float64(i) / float64(numSpans)
		pos, err := p.geod.PointAlongRoute(route, target)
		if err != nil {
			return nil, err
		}
		positions[i] = pos
	}

	spanLengths := make([]float64, numSpans)
	for i := range spanLengths {
		spanLengths[i] = equalSpan
	}

	terrainApplied := false
	if len(terrainElevations) > 0 {
		terrainApplied = true
		last := float64(len(terrainElevations) - 1)
		for i := range positions {
			fraction := float64(i) / float64(numSpans)
			idx := int(math.Round(fraction * last))
			positions[i].Elevation = terrainElevations[idx]
		}
	}

	return &Plan{
		TowerCount:             towerCount,
		TowerPositions:         positions,
		SpanLengths:            spanLengths,
		SpanCount:              numSpans,
		TotalRouteLengthMeters: totalLength,
		AverageSpanMeters:      equalSpan,
		TerrainApplied:         terrainApplied,
		Constraints:            c,
	}, nil
}

// fitSpanCount finds the integer span count nearest round(length/typical)
// for which length/n lands inside [min, max].
func fitSpanCount(length float64, c Constraints) (int, error) {
	// Feasible counts are ceil(length/max) .. floor(length/min). The small
	// epsilon keeps exact boundary cases (length an integer multiple of a
	// bound) on the feasible side.
	const eps = 1e-9
	low := int(math.Ceil(length/c.MaxSpan - eps))
	if low < 1 {
		low = 1
	}
	high := int(math.Floor(length/c.MinSpan + eps))

	if high < low {
		return 0, errs.Infeasiblef(
			"no span count satisfies %g <= %g/n <= %g (route too short or bounds too tight)",
			c.MinSpan, length, c.MaxSpan)
	}

	n := int(math.Round(length / c.TypicalSpan))
	if n < low {
		n = low
	}
	if n > high {
		n = high
	}
	return n, nil
}
