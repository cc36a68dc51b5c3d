// Package clearance verifies minimum distance between a conductor path and
// an obstacle geometry against regulatory clearance requirements.
package clearance

import (
	"math"

	"github.com/dpup/gridline/server/internal/lib/errs"
	"github.com/dpup/gridline/server/internal/lib/geo"
)

// NESC-style approximation: lines above 50kV require 5.5m plus 1cm per kV
// over 50.
const (
	regulatoryBaseClearance = 5.5
	regulatoryVoltageFloor  = 50.0
	regulatoryPerKV         = 0.01
)

// Result reports a clearance check.
type Result struct {
	ClearanceOK               bool    `json:"clearance_ok"`
	MinimumDistanceMeters     float64 `json:"minimum_distance_meters"`
	RequiredClearanceMeters   float64 `json:"required_clearance_meters"`
	ClearanceMarginMeters     float64 `json:"clearance_margin_meters"`
	RegulatoryClearanceMeters float64 `json:"regulatory_clearance_meters"`
	VoltageKV                 float64 `json:"voltage_kv,omitempty"`
	Status                    string  `json:"status"`
}

// Checker measures conductor-to-obstacle separation.
type Checker struct{}

// NewChecker creates a clearance Checker.
func NewChecker() *Checker {
	return &Checker{}
}

// RegulatoryClearance returns the voltage-derived clearance requirement in
// meters. Voltages at or below 50kV carry no regulatory requirement here.
func RegulatoryClearance(voltageKV float64) float64 {
	if voltageKV <= regulatoryVoltageFloor {
		return 0
	}
	return regulatoryBaseClearance + regulatoryPerKV*(voltageKV-regulatoryVoltageFloor)
}

// Check computes the closest approach between the conductor path and the
// obstacle, projected onto a local tangent plane, and compares it with
// max(minimumClearance, regulatory clearance for voltageKV). A voltageKV of
// zero means the voltage was not supplied.
func (c *Checker) Check(conductorPath geo.Polyline, obstacle geo.Geometry, minimumClearance, voltageKV float64) (*Result, error) {
	if minimumClearance < 0 {
		return nil, errs.Validationf("minimum_clearance must not be negative, got %g", minimumClearance)
	}
	if err := geo.ValidatePolyline(conductorPath, 2); err != nil {
		return nil, err
	}
	if err := validateObstacle(obstacle); err != nil {
		return nil, err
	}
	if degenerate(conductorPath.Points) {
		return nil, errs.Geometryf("conductor path has zero length")
	}

	plane := geo.NewTangentPlane(append(append([]geo.GeoPoint{}, conductorPath.Points...), obstacle.Points...))
	path := projectAll(plane, conductorPath.Points)
	obs := projectAll(plane, obstacle.Points)

	var minDistance float64
	switch obstacle.Kind {
	case geo.KindPoint:
		minDistance = pathToPoint(path, obs[0])
	case geo.KindLine:
		minDistance = pathToPath(path, obs)
	case geo.KindPolygon:
		minDistance = pathToPolygon(path, obs)
	}

	regulatory := RegulatoryClearance(voltageKV)
	required := math.Max(minimumClearance, regulatory)
	margin := minDistance - required
	ok := margin >= 0

	status := "PASS"
	if !ok {
		status = "FAIL"
	}

	return &Result{
		ClearanceOK:               ok,
		MinimumDistanceMeters:     minDistance,
		RequiredClearanceMeters:   required,
		ClearanceMarginMeters:     margin,
		RegulatoryClearanceMeters: regulatory,
		VoltageKV:                 voltageKV,
		Status:                    status,
	}, nil
}

func validateObstacle(obstacle geo.Geometry) error {
	min := 0
	switch obstacle.Kind {
	case geo.KindPoint:
		min = 1
	case geo.KindLine:
		min = 2
	case geo.KindPolygon:
		min = 3
	default:
		return errs.Geometryf("unknown obstacle geometry kind %q", obstacle.Kind)
	}
	if len(obstacle.Points) < min {
		return errs.Geometryf("%s obstacle requires at least %d points, got %d",
			obstacle.Kind, min, len(obstacle.Points))
	}
	for _, p := range obstacle.Points {
		if err := geo.ValidatePoint(p); err != nil {
			return err
		}
	}
	if obstacle.Kind != geo.KindPoint && degenerate(obstacle.Points) {
		return errs.Geometryf("%s obstacle is degenerate: all points coincide", obstacle.Kind)
	}
	return nil
}

func degenerate(points []geo.GeoPoint) bool {
	for _, p := range points[1:] {
		if p.Longitude != points[0].Longitude || p.Latitude != points[0].Latitude {
			return false
		}
	}
	return true
}

type xy struct {
	x, y float64
}

func projectAll(plane geo.TangentPlane, points []geo.GeoPoint) []xy {
	out := make([]xy, len(points))
	for i, p := range points {
		out[i].x, out[i].y = plane.Project(p)
	}
	return out
}

func pathToPoint(path []xy, p xy) float64 {
	min := math.Inf(1)
	for i := 0; i < len(path)-1; i++ {
		d := pointSegmentDistance(p, path[i], path[i+1])
		if d < min {
			min = d
		}
	}
	return min
}

func pathToPath(a, b []xy) float64 {
	min := math.Inf(1)
	for i := 0; i < len(a)-1; i++ {
		for j := 0; j < len(b)-1; j++ {
			d := segmentSegmentDistance(a[i], a[i+1], b[j], b[j+1])
			if d == 0 {
				return 0
			}
			if d < min {
				min = d
			}
		}
	}
	return min
}

func pathToPolygon(path []xy, ring []xy) float64 {
	// Close the ring if the caller left it open
	closed := ring
	if ring[0] != ring[len(ring)-1] {
		closed = append(append([]xy{}, ring...), ring[0])
	}

	// Any conductor vertex inside the polygon means contact
	for _, p := range path {
		if pointInRing(p, closed) {
			return 0
		}
	}
	return pathToPath(path, closed)
}

// pointSegmentDistance is the distance from p to the segment a-b.
func pointSegmentDistance(p, a, b xy) float64 {
	dx, dy := b.x-a.x, b.y-a.y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.x-a.x, p.y-a.y)
	}
	t := ((p.x-a.x)*dx + (p.y-a.y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(p.x-(a.x+t*dx), p.y-(a.y+t*dy))
}

// segmentSegmentDistance is the distance between segments a1-a2 and b1-b2,
// zero when they intersect.
func segmentSegmentDistance(a1, a2, b1, b2 xy) float64 {
	if segmentsIntersect(a1, a2, b1, b2) {
		return 0
	}
	return math.Min(
		math.Min(pointSegmentDistance(a1, b1, b2), pointSegmentDistance(a2, b1, b2)),
		math.Min(pointSegmentDistance(b1, a1, a2), pointSegmentDistance(b2, a1, a2)),
	)
}

func segmentsIntersect(a1, a2, b1, b2 xy) bool {
	d1 := cross(b1, b2, a1)
	d2 := cross(b1, b2, a2)
	d3 := cross(a1, a2, b1)
	d4 := cross(a1, a2, b2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(b1, b2, a1)) ||
		(d2 == 0 && onSegment(b1, b2, a2)) ||
		(d3 == 0 && onSegment(a1, a2, b1)) ||
		(d4 == 0 && onSegment(a1, a2, b2))
}

func cross(a, b, p xy) float64 {
	return (b.x-a.x)*(p.y-a.y) - (b.y-a.y)*(p.x-a.x)
}

func onSegment(a, b, p xy) bool {
	return math.Min(a.x, b.x) <= p.x && p.x <= math.Max(a.x, b.x) &&
		math.Min(a.y, b.y) <= p.y && p.y <= math.Max(a.y, b.y)
}

// pointInRing uses ray casting against a closed ring.
func pointInRing(p xy, ring []xy) bool {
	inside := false
	for i := 0; i < len(ring)-1; i++ {
		a, b := ring[i], ring[i+1]
		if (a.y > p.y) != (b.y > p.y) {
			xCross := a.x + (p.y-a.y)/(b.y-a.y)*(b.x-a.x)
			if p.x < xCross {
				inside = !inside
			}
		}
	}
	return inside
}
