package geo

import "math"

// Meters per degree of latitude; longitude is scaled by cos(latitude).
// Adequate for the local (sub-degree) extents this engine works over.
const metersPerDegree = 111320.0

// TangentPlane projects lon/lat coordinates onto a local planar frame in
// meters, anchored at the centroid of the geometry being analyzed. Planar
// buffering and closest-approach math run in this frame and results are
// unprojected back to geodetic coordinates.
type TangentPlane struct {
	originLon float64
	originLat float64
	lonScale  float64
}

// NewTangentPlane builds a projection anchored at the mean of the given points.
func NewTangentPlane(points []GeoPoint) TangentPlane {
	var sumLon, sumLat float64
	for _, p := range points {
		sumLon += p.Longitude
		sumLat += p.Latitude
	}
	n := float64(len(points))
	if n == 0 {
		n = 1
	}
	originLat := sumLat / n
	return TangentPlane{
		originLon: sumLon / n,
		originLat: originLat,
		lonScale:  metersPerDegree * math.Cos(originLat*math.Pi/180),
	}
}

// Project converts a geodetic point to planar x/y meters.
func (t TangentPlane) Project(p GeoPoint) (x, y float64) {
	return (p.Longitude - t.originLon) * t.lonScale,
		(p.Latitude - t.originLat) * metersPerDegree
}

// Unproject converts planar x/y meters back to a geodetic point.
func (t TangentPlane) Unproject(x, y float64) GeoPoint {
	lon := t.originLon
	if t.lonScale != 0 {
		lon += x / t.lonScale
	}
	return GeoPoint{
		Longitude: lon,
		Latitude:  t.originLat + y/metersPerDegree,
	}
}
