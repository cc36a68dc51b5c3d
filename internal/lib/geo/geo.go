package geo

import (
	"math"

	"github.com/twpayne/go-polyline"

	"github.com/dpup/gridline/server/internal/lib/errs"
)

// WGS84 ellipsoid parameters
const (
	semiMajorAxis = 6378137.0
	flattening    = 1.0 / 298.257223563
	semiMinorAxis = semiMajorAxis * (1 - flattening)
)

// Vincenty's formulae converge in a handful of iterations for all but
// near-antipodal pairs; the cap keeps every call bounded.
const (
	maxGeodesicIterations = 20
	geodesicTolerance     = 1e-12
)

// geodesy implements the Geodesy interface
type geodesy struct{}

// NewGeodesy creates a new Geodesy implementation
func NewGeodesy() Geodesy {
	return &geodesy{}
}

// Inverse calculates ellipsoidal distance and forward azimuth between two
// points using Vincenty's inverse formula.
func (g *geodesy) Inverse(p1, p2 GeoPoint) (float64, float64, error) {
	if err := ValidatePoint(p1); err != nil {
		return 0, 0, err
	}
	if err := ValidatePoint(p2); err != nil {
		return 0, 0, err
	}

	if p1.Latitude == p2.Latitude && p1.Longitude == p2.Longitude {
		return 0, 0, nil
	}

	lat1 := p1.Latitude * math.Pi / 180
	lat2 := p2.Latitude * math.Pi / 180
	deltaLon := (p2.Longitude - p1.Longitude) * math.Pi / 180

	u1 := math.Atan((1 - flattening) * math.Tan(lat1))
	u2 := math.Atan((1 - flattening) * math.Tan(lat2))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := deltaLon
	var sinSigma, cosSigma, sigma, sinAlpha, cosSqAlpha, cos2SigmaM float64

	converged := false
	for i := 0; i < maxGeodesicIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		sinSigma = math.Sqrt(math.Pow(cosU2*sinLambda, 2) +
			math.Pow(cosU1*sinU2-sinU1*cosU2*cosLambda, 2))
		if sinSigma == 0 {
			// Coincident points
			return 0, 0, nil
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha = cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha == 0 {
			// Equatorial line
			cos2SigmaM = 0
		} else {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}
		c := flattening / 16 * cosSqAlpha * (4 + flattening*(4-3*cosSqAlpha))
		lambdaPrev := lambda
		lambda = deltaLon + (1-c)*flattening*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-lambdaPrev) < geodesicTolerance {
			converged = true
			break
		}
	}
	if !converged {
		return 0, 0, errs.Computationf(
			"geodesic inverse solve did not converge within %d iterations", maxGeodesicIterations)
	}

	uSq := cosSqAlpha * (semiMajorAxis*semiMajorAxis - semiMinorAxis*semiMinorAxis) /
		(semiMinorAxis * semiMinorAxis)
	bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := bigB * sinSigma * (cos2SigmaM + bigB/4*
		(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
			bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	distance := semiMinorAxis * bigA * (sigma - deltaSigma)

	sinLambda, cosLambda := math.Sincos(lambda)
	azimuth := math.Atan2(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda) * 180 / math.Pi
	if azimuth < 0 {
		azimuth += 360
	}

	return distance, azimuth, nil
}

// Direct solves Vincenty's direct problem: destination point given origin,
// initial azimuth, and distance.
func (g *geodesy) Direct(origin GeoPoint, azimuthDegrees, distanceMeters float64) (GeoPoint, error) {
	if err := ValidatePoint(origin); err != nil {
		return GeoPoint{}, err
	}
	if distanceMeters == 0 {
		return origin, nil
	}

	alpha1 := azimuthDegrees * math.Pi / 180
	sinAlpha1, cosAlpha1 := math.Sincos(alpha1)

	tanU1 := (1 - flattening) * math.Tan(origin.Latitude*math.Pi/180)
	cosU1 := 1 / math.Sqrt(1+tanU1*tanU1)
	sinU1 := tanU1 * cosU1

	sigma1 := math.Atan2(tanU1, cosAlpha1)
	sinAlpha := cosU1 * sinAlpha1
	cosSqAlpha := 1 - sinAlpha*sinAlpha
	uSq := cosSqAlpha * (semiMajorAxis*semiMajorAxis - semiMinorAxis*semiMinorAxis) /
		(semiMinorAxis * semiMinorAxis)
	bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

	sigma := distanceMeters / (semiMinorAxis * bigA)
	var cos2SigmaM, sinSigma, cosSigma float64

	converged := false
	for i := 0; i < maxGeodesicIterations; i++ {
		cos2SigmaM = math.Cos(2*sigma1 + sigma)
		sinSigma, cosSigma = math.Sincos(sigma)
		deltaSigma := bigB * sinSigma * (cos2SigmaM + bigB/4*
			(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
				bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
		sigmaPrev := sigma
		sigma = distanceMeters/(semiMinorAxis*bigA) + deltaSigma
		if math.Abs(sigma-sigmaPrev) < geodesicTolerance {
			converged = true
			break
		}
	}
	if !converged {
		return GeoPoint{}, errs.Computationf(
			"geodesic direct solve did not converge within %d iterations", maxGeodesicIterations)
	}

	sinSigma, cosSigma = math.Sincos(sigma)
	tmp := sinU1*sinSigma - cosU1*cosSigma*cosAlpha1
	lat2 := math.Atan2(sinU1*cosSigma+cosU1*sinSigma*cosAlpha1,
		(1-flattening)*math.Sqrt(sinAlpha*sinAlpha+tmp*tmp))
	lambda := math.Atan2(sinSigma*sinAlpha1, cosU1*cosSigma-sinU1*sinSigma*cosAlpha1)
	c := flattening / 16 * cosSqAlpha * (4 + flattening*(4-3*cosSqAlpha))
	deltaLon := lambda - (1-c)*flattening*sinAlpha*
		(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

	lon2 := origin.Longitude + deltaLon*180/math.Pi
	if lon2 > 180 {
		lon2 -= 360
	} else if lon2 < -180 {
		lon2 += 360
	}

	return GeoPoint{
		Longitude: lon2,
		Latitude:  lat2 * 180 / math.Pi,
		Elevation: origin.Elevation,
	}, nil
}

// Midpoint returns the geodesic midpoint between two points.
func (g *geodesy) Midpoint(p1, p2 GeoPoint) (GeoPoint, error) {
	return g.Interpolate(p1, p2, 0.5)
}

// Interpolate returns the point at fraction t along the geodesic from p1 to p2.
// Elevation is interpolated linearly.
func (g *geodesy) Interpolate(p1, p2 GeoPoint, fraction float64) (GeoPoint, error) {
	if fraction < 0 || fraction > 1 {
		return GeoPoint{}, errs.Validationf("interpolation fraction must be in [0, 1], got %g", fraction)
	}

	distance, azimuth, err := g.Inverse(p1, p2)
	if err != nil {
		return GeoPoint{}, err
	}
	if distance == 0 {
		return p1, nil
	}

	point, err := g.Direct(p1, azimuth, distance*fraction)
	if err != nil {
		return GeoPoint{}, err
	}
	point.Elevation = p1.Elevation + fraction*(p2.Elevation-p1.Elevation)
	return point, nil
}

// RouteLength sums consecutive geodesic segment distances along a polyline.
func (g *geodesy) RouteLength(route Polyline) (float64, error) {
	if len(route.Points) < 2 {
		return 0, errs.Geometryf("route must have at least 2 points, got %d", len(route.Points))
	}

	total := 0.0
	for i := 0; i < len(route.Points)-1; i++ {
		d, _, err := g.Inverse(route.Points[i], route.Points[i+1])
		if err != nil {
			return 0, err
		}
		total += d
	}
	return total, nil
}

// PointAlongRoute walks the route to the segment containing the target
// cumulative distance and interpolates within it.
func (g *geodesy) PointAlongRoute(route Polyline, distanceMeters float64) (GeoPoint, error) {
	if len(route.Points) < 2 {
		return GeoPoint{}, errs.Geometryf("route must have at least 2 points, got %d", len(route.Points))
	}
	if distanceMeters <= 0 {
		return route.Points[0], nil
	}

	remaining := distanceMeters
	for i := 0; i < len(route.Points)-1; i++ {
		segLength, _, err := g.Inverse(route.Points[i], route.Points[i+1])
		if err != nil {
			return GeoPoint{}, err
		}
		if remaining <= segLength && segLength > 0 {
			return g.Interpolate(route.Points[i], route.Points[i+1], remaining/segLength)
		}
		remaining -= segLength
	}

	// Past the end of the route
	return route.Points[len(route.Points)-1], nil
}

// DecodeRoute decodes a Google encoded polyline string into a Polyline.
func DecodeRoute(encoded string) (Polyline, error) {
	if encoded == "" {
		return Polyline{}, errs.Geometryf("encoded polyline string is empty")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return Polyline{}, errs.Geometryf("failed to decode polyline: %v", err)
	}

	points := make([]GeoPoint, len(coords))
	for i, coord := range coords {
		points[i] = GeoPoint{Latitude: coord[0], Longitude: coord[1]}
		if err := ValidatePoint(points[i]); err != nil {
			return Polyline{}, errs.Geometryf("decoded polyline contains invalid coordinates")
		}
	}
	return Polyline{Points: points}, nil
}

// ValidatePoint checks longitude/latitude ranges.
func ValidatePoint(p GeoPoint) error {
	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return errs.Geometryf(
			"invalid coordinates (%g, %g): latitude must be [-90, 90], longitude must be [-180, 180]",
			p.Longitude, p.Latitude)
	}
	return nil
}

// ValidatePolyline checks every vertex and the minimum point count.
func ValidatePolyline(line Polyline, minPoints int) error {
	if len(line.Points) < minPoints {
		return errs.Geometryf("polyline must have at least %d points, got %d", minPoints, len(line.Points))
	}
	for _, p := range line.Points {
		if err := ValidatePoint(p); err != nil {
			return err
		}
	}
	return nil
}
