// Package row offsets a transmission-line centerline into a right-of-way
// corridor polygon.
package row

import (
	"math"

	"github.com/dpup/gridline/server/internal/lib/errs"
	"github.com/dpup/gridline/server/internal/lib/geo"
)

const (
	squareMetersPerAcre    = 4046.8564224
	defaultStationInterval = 100.0 // meters

	// Joins and round caps are sampled at this angular resolution
	arcStep = math.Pi / 8

	// Miter joins longer than this many half-widths degrade to a bevel
	miterLimit = 4.0
)

// CapStyle selects how the corridor is closed at the centerline endpoints.
type CapStyle string

const (
	// CapFlat cuts square across the line at the endpoint.
	CapFlat CapStyle = "flat"
	// CapRound closes with a semicircular arc around the endpoint.
	CapRound CapStyle = "round"
	// CapSquare extends the flat cap half a width beyond the endpoint.
	CapSquare CapStyle = "square"
)

// ParseCapStyle maps a request string to a CapStyle. Empty defaults to flat.
func ParseCapStyle(s string) (CapStyle, error) {
	switch CapStyle(s) {
	case "":
		return CapFlat, nil
	case CapFlat, CapRound, CapSquare:
		return CapStyle(s), nil
	}
	return "", errs.Validationf("unknown cap_style %q: must be flat, round, or square", s)
}

// Station is a distance marker along the centerline.
type Station struct {
	Number         int          `json:"station_number"`
	DistanceMeters float64      `json:"distance_meters"`
	Position       geo.GeoPoint `json:"position"`
}

// Corridor is a buffered right-of-way polygon.
type Corridor struct {
	Ring                   []geo.GeoPoint `json:"row_polygon"`
	AreaSqMeters           float64        `json:"row_area_sq_meters"`
	AreaAcres              float64        `json:"row_area_acres"`
	CenterlineLengthMeters float64        `json:"centerline_length_meters"`
	RowWidthMeters         float64        `json:"row_width_meters"`
	CapStyle               CapStyle       `json:"cap_style"`
	Stations               []Station      `json:"stations,omitempty"`
}

// Generator builds ROW corridors.
type Generator struct {
	geod            geo.Geodesy
	StationInterval float64
}

// NewGenerator creates a Generator with the default 100m station interval.
func NewGenerator(geod geo.Geodesy) *Generator {
	return &Generator{geod: geod, StationInterval: defaultStationInterval}
}

// Buffer offsets the centerline by rowWidth/2 on each side, closing the ends
// with the requested cap style. Joins at direction changes are mitered on the
// inside of the turn and rounded on the outside. Area is computed by the
// shoelace formula on the local tangent plane.
func (g *Generator) Buffer(centerline geo.Polyline, rowWidth float64, capStyle CapStyle, includeStations bool) (*Corridor, error) {
	if rowWidth <= 0 {
		return nil, errs.Validationf("row_width must be positive, got %g", rowWidth)
	}
	if len(centerline.Points) < 2 {
		return nil, errs.Validationf("centerline must have at least 2 points, got %d", len(centerline.Points))
	}
	if err := geo.ValidatePolyline(centerline, 2); err != nil {
		return nil, err
	}

	plane := geo.NewTangentPlane(centerline.Points)
	pts := dedupe(projectAll(plane, centerline.Points))
	if len(pts) < 2 {
		return nil, errs.Geometryf("centerline is degenerate: all points coincide")
	}

	half := rowWidth / 2
	left := offsetSide(pts, half)
	right := offsetSide(reverse(pts), half)

	ring := make([]xy, 0, len(left)+len(right)+18)
	ring = append(ring, left...)
	ring = append(ring, endCap(pts[len(pts)-1], pts[len(pts)-2], half, capStyle)...)
	ring = append(ring, right...)
	ring = append(ring, endCap(pts[0], pts[1], half, capStyle)...)
	ring = append(ring, ring[0]) // close

	area := math.Abs(shoelace(ring))

	geoRing := make([]geo.GeoPoint, len(ring))
	for i, p := range ring {
		geoRing[i] = plane.Unproject(p.x, p.y)
	}

	length, err := g.geod.RouteLength(centerline)
	if err != nil {
		return nil, err
	}

	corridor := &Corridor{
		Ring:                   geoRing,
		AreaSqMeters:           area,
		AreaAcres:              area / squareMetersPerAcre,
		CenterlineLengthMeters: length,
		RowWidthMeters:         rowWidth,
		CapStyle:               capStyle,
	}

	if includeStations {
		stations, err := g.stations(centerline, length)
		if err != nil {
			return nil, err
		}
		corridor.Stations = stations
	}

	return corridor, nil
}

// stations places a marker every StationInterval meters along the centerline.
func (g *Generator) stations(centerline geo.Polyline, length float64) ([]Station, error) {
	interval := g.StationInterval
	if interval <= 0 {
		interval = defaultStationInterval
	}

	count := int(length/interval) + 1
	stations := make([]Station, 0, count)
	for i := 0; i < count; i++ {
		d := float64(i) * interval
		pos, err := g.geod.PointAlongRoute(centerline, d)
		if err != nil {
			return nil, err
		}
		stations = append(stations, Station{Number: i, DistanceMeters: d, Position: pos})
	}
	return stations, nil
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

func dedupe(pts []xy) []xy {
	out := pts[:1]
	for _, p := range pts[1:] {
		last := out[len(out)-1]
		if math.Hypot(p.x-last.x, p.y-last.y) > 1e-9 {
			out = append(out, p)
		}
	}
	return out
}

func reverse(pts []xy) []xy {
	out := make([]xy, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// offsetSide traces the left-hand offset of the path at distance h, mitering
// inner joins and rounding outer joins.
func offsetSide(pts []xy, h float64) []xy {
	normals := make([]xy, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		d := unit(sub(pts[i+1], pts[i]))
		normals[i] = xy{-d.y, d.x}
	}

	out := []xy{add(pts[0], scale(normals[0], h))}
	for i := 1; i < len(pts)-1; i++ {
		nPrev, nCur := normals[i-1], normals[i]
		turn := nPrev.x*nCur.y - nPrev.y*nCur.x

		switch {
		case math.Abs(turn) < 1e-12 && dot(nPrev, nCur) > 0:
			// Collinear segments: single offset point
			out = append(out, add(pts[i], scale(nCur, h)))
		case turn < 0:
			// Turning toward this side: round join around the vertex
			out = append(out, arc(pts[i], scale(nPrev, h), scale(nCur, h))...)
		default:
			// Turning away: miter, degrading to a bevel past the limit
			m := unit(add(nPrev, nCur))
			cosHalf := dot(m, nCur)
			if cosHalf > 1/miterLimit {
				out = append(out, add(pts[i], scale(m, h/cosHalf)))
			} else {
				out = append(out,
					add(pts[i], scale(nPrev, h)),
					add(pts[i], scale(nCur, h)))
			}
		}
	}
	out = append(out, add(pts[len(pts)-1], scale(normals[len(normals)-1], h)))
	return out
}

// endCap emits the points closing the corridor beyond `end`, walking from the
// left offset of the incoming direction around to the right. `prev` is the
// vertex before the endpoint.
func endCap(end, prev xy, h float64, style CapStyle) []xy {
	d := unit(sub(end, prev))
	n := xy{-d.y, d.x}

	switch style {
	case CapSquare:
		ext := scale(d, h)
		return []xy{
			add(add(end, scale(n, h)), ext),
			add(add(end, scale(n, -h)), ext),
		}
	case CapRound:
		return arc(end, scale(n, h), scale(n, -h))
	default: // CapFlat: the side offsets already touch the cut line
		return nil
	}
}

// arc samples the rotation from offset vector `from` to `to` around center.
// Both vectors must share the same magnitude.
func arc(center, from, to xy) []xy {
	a0 := math.Atan2(from.y, from.x)
	a1 := math.Atan2(to.y, to.x)
	r := math.Hypot(from.x, from.y)

	// Sweep clockwise (the outside of the turn for the left offset)
	for a1 > a0 {
		a1 -= 2 * math.Pi
	}
	steps := int(math.Ceil((a0 - a1) / arcStep))
	if steps < 1 {
		steps = 1
	}

	out := make([]xy, 0, steps+1)
	for i := 0; i <= steps; i++ {
		a := a0 + (a1-a0)*float64(i)/float64(steps)
		out = append(out, add(center, xy{r * math.Cos(a), r * math.Sin(a)}))
	}
	return out
}

func shoelace(ring []xy) float64 {
	sum := 0.0
	for i := 0; i < len(ring)-1; i++ {
		sum += ring[i].x*ring[i+1].y - ring[i+1].x*ring[i].y
	}
	return sum / 2
}

func sub(a, b xy) xy      { return xy{a.x - b.x, a.y - b.y} }
func add(a, b xy) xy      { return xy{a.x + b.x, a.y + b.y} }
func scale(a xy, s float64) xy { return xy{a.x * s, a.y * s} }
func dot(a, b xy) float64 { return a.x*b.x + a.y*b.y }

func unit(a xy) xy {
	l := math.Hypot(a.x, a.y)
	if l == 0 {
		return xy{}
	}
	return xy{a.x / l, a.y / l}
}
