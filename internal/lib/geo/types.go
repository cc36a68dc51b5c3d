package geo

// GeoPoint represents a WGS84 geodetic coordinate with elevation in meters
// above the reference datum. Elevation defaults to 0 when not supplied.
type GeoPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Elevation float64 `json:"elevation"`
}

// Polyline is an ordered sequence of points. Order is significant: it is the
// route direction and station order.
type Polyline struct {
	Points []GeoPoint `json:"points"`
}

// GeometryKind identifies the shape of an obstacle geometry.
type GeometryKind string

const (
	KindPoint   GeometryKind = "point"
	KindLine    GeometryKind = "line"
	KindPolygon GeometryKind = "polygon"
)

// Geometry is a point, line, or polygon obstacle. For polygons Points holds
// the outer ring; the ring need not repeat its first vertex.
type Geometry struct {
	Kind   GeometryKind `json:"kind"`
	Points []GeoPoint   `json:"points"`
}

// Geodesy defines ellipsoidal geodesic calculations on the WGS84 ellipsoid.
type Geodesy interface {
	// Inverse solves the geodesic between two points, returning the distance
	// in meters and the forward azimuth in degrees clockwise from north.
	Inverse(p1, p2 GeoPoint) (distanceMeters, azimuthDegrees float64, err error)

	// Direct follows the geodesic from origin along azimuthDegrees for
	// distanceMeters and returns the destination point.
	Direct(origin GeoPoint, azimuthDegrees, distanceMeters float64) (GeoPoint, error)

	// Midpoint returns the geodesic midpoint between two points. Elevation is
	// linearly interpolated.
	Midpoint(p1, p2 GeoPoint) (GeoPoint, error)

	// Interpolate returns the point at the given fraction (0..1) along the
	// geodesic from p1 to p2.
	Interpolate(p1, p2 GeoPoint, fraction float64) (GeoPoint, error)

	// RouteLength returns the sum of consecutive geodesic segment distances
	// along a polyline.
	RouteLength(route Polyline) (float64, error)

	// PointAlongRoute returns the point at the given cumulative distance from
	// the start of the route, interpolating within the bracketing segment.
	// Distances past the end clamp to the final vertex.
	PointAlongRoute(route Polyline, distanceMeters float64) (GeoPoint, error)
}

// NewGeodesy is implemented in geo.go
