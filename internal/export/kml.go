// Package export renders analysis results as KML overlays for use in
// Google Earth and GIS viewers.
package export

import (
	"bytes"
	"fmt"

	"github.com/twpayne/go-kml/v2"

	"github.com/dpup/gridline/server/internal/lib/errs"
	"github.com/dpup/gridline/server/internal/lib/geo"
	"github.com/dpup/gridline/server/internal/lib/placement"
	"github.com/dpup/gridline/server/internal/lib/row"
)

// TowerPlanKML renders a tower plan as a KML document: one point placemark
// per tower plus a tessellated centerline connecting them.
func TowerPlanKML(name string, plan *placement.Plan) (string, error) {
	if plan == nil || len(plan.TowerPositions) == 0 {
		return "", errs.Geometryf("tower plan has no positions to export")
	}
	if name == "" {
		name = "Tower Plan"
	}

	children := []kml.Element{
		kml.Name(name),
		kml.Description(fmt.Sprintf("%d towers, %d spans, %.1f m route",
			plan.TowerCount, plan.SpanCount, plan.TotalRouteLengthMeters)),
	}

	lineCoords := make([]kml.Coordinate, len(plan.TowerPositions))
	for i, p := range plan.TowerPositions {
		lineCoords[i] = coordinate(p)

		desc := "Route start"
		switch {
		case i == len(plan.TowerPositions)-1:
			desc = fmt.Sprintf("Route end, %.1f m from tower %d", plan.SpanLengths[i-1], i)
		case i > 0:
			desc = fmt.Sprintf("%.1f m from tower %d", plan.SpanLengths[i-1], i)
		}

		children = append(children, kml.Placemark(
			kml.Name(fmt.Sprintf("Tower %d", i+1)),
			kml.Description(desc),
			kml.Point(kml.Coordinates(coordinate(p))),
		))
	}

	children = append(children, kml.Placemark(
		kml.Name("Centerline"),
		kml.LineString(
			kml.Tessellate(true),
			kml.Coordinates(lineCoords...),
		),
	))

	return render(kml.KML(kml.Document(children...)))
}

// CorridorKML renders a ROW corridor as a KML polygon, with one point
// placemark per station marker when stations were generated.
func CorridorKML(name string, c *row.Corridor) (string, error) {
	if c == nil || len(c.Ring) < 4 {
		return "", errs.Geometryf("corridor has no ring to export")
	}
	if name == "" {
		name = "ROW Corridor"
	}

	ringCoords := make([]kml.Coordinate, len(c.Ring))
	for i, p := range c.Ring {
		ringCoords[i] = coordinate(p)
	}

	children := []kml.Element{
		kml.Name(name),
		kml.Description(fmt.Sprintf("%.1f m wide, %.2f acres (%s caps)",
			c.RowWidthMeters, c.AreaAcres, c.CapStyle)),
		kml.Placemark(
			kml.Name("Corridor"),
			kml.Polygon(
				kml.Tessellate(true),
				kml.OuterBoundaryIs(kml.LinearRing(kml.Coordinates(ringCoords...))),
			),
		),
	}

	for _, st := range c.Stations {
		children = append(children, kml.Placemark(
			kml.Name(fmt.Sprintf("Station %d", st.Number)),
			kml.Description(fmt.Sprintf("%.0f m along centerline", st.DistanceMeters)),
			kml.Point(kml.Coordinates(coordinate(st.Position))),
		))
	}

	return render(kml.KML(kml.Document(children...)))
}

func coordinate(p geo.GeoPoint) kml.Coordinate {
	return kml.Coordinate{Lon: p.Longitude, Lat: p.Latitude, Alt: p.Elevation}
}

func render(doc *kml.CompoundElement) (string, error) {
	var buf bytes.Buffer
	if err := doc.WriteIndent(&buf, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}
