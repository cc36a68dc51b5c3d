package services

import (
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/dpup/gridline/server/internal/lib/errs"
	"github.com/dpup/gridline/server/internal/lib/geo"
)

// Geometry requests arrive as WKT strings (POINT, LINESTRING, POLYGON, with
// optional Z for elevation); routes may also arrive as Google encoded
// polylines. This codec translates between the wire forms and the geo types
// the analysis libraries consume.

func parseLineWKT(s string) (geo.Polyline, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return geo.Polyline{}, errs.Geometryf("invalid WKT: %v", err)
	}
	ls, ok := g.(*geom.LineString)
	if !ok {
		return geo.Polyline{}, errs.Geometryf("expected LINESTRING geometry, got %T", g)
	}
	return geo.Polyline{Points: coordsToPoints(ls.Coords())}, nil
}

func parseObstacleWKT(s string) (geo.Geometry, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return geo.Geometry{}, errs.Geometryf("invalid WKT: %v", err)
	}
	switch v := g.(type) {
	case *geom.Point:
		return geo.Geometry{Kind: geo.KindPoint, Points: coordsToPoints([]geom.Coord{v.Coords()})}, nil
	case *geom.LineString:
		return geo.Geometry{Kind: geo.KindLine, Points: coordsToPoints(v.Coords())}, nil
	case *geom.Polygon:
		rings := v.Coords()
		if len(rings) == 0 {
			return geo.Geometry{}, errs.Geometryf("polygon has no rings")
		}
		return geo.Geometry{Kind: geo.KindPolygon, Points: coordsToPoints(rings[0])}, nil
	}
	return geo.Geometry{}, errs.Geometryf("unsupported obstacle geometry %T", g)
}

// parseRoute accepts either a WKT LINESTRING or a Google encoded polyline.
func parseRoute(routeWKT, encodedPolyline string) (geo.Polyline, error) {
	switch {
	case routeWKT != "":
		return parseLineWKT(routeWKT)
	case encodedPolyline != "":
		return geo.DecodeRoute(encodedPolyline)
	}
	return geo.Polyline{}, errs.Geometryf("route geometry is required (route_wkt or route_polyline)")
}

func formatRingWKT(ring []geo.GeoPoint) (string, error) {
	coords := make([]geom.Coord, len(ring))
	for i, p := range ring {
		coords[i] = geom.Coord{p.Longitude, p.Latitude}
	}
	poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{coords})
	return wkt.Marshal(poly)
}

func coordsToPoints(coords []geom.Coord) []geo.GeoPoint {
	points := make([]geo.GeoPoint, len(coords))
	for i, c := range coords {
		p := geo.GeoPoint{Longitude: c[0], Latitude: c[1]}
		if len(c) > 2 {
			p.Elevation = c[2]
		}
		points[i] = p
	}
	return points
}

// tripleToPoint converts a [lon, lat] or [lon, lat, elevation] array.
func tripleToPoint(coords []float64) (geo.GeoPoint, error) {
	if len(coords) < 2 || len(coords) > 3 {
		return geo.GeoPoint{}, errs.Geometryf("point requires [lon, lat] or [lon, lat, elevation], got %d values", len(coords))
	}
	p := geo.GeoPoint{Longitude: coords[0], Latitude: coords[1]}
	if len(coords) == 3 {
		p.Elevation = coords[2]
	}
	return p, geo.ValidatePoint(p)
}
