package services

import (
	"github.com/dpup/gridline/server/internal/lib/catenary"
	"github.com/dpup/gridline/server/internal/lib/clearance"
	"github.com/dpup/gridline/server/internal/lib/placement"
	"github.com/dpup/gridline/server/internal/lib/row"
	"github.com/dpup/gridline/server/internal/lib/sightline"
	"github.com/dpup/gridline/server/internal/lib/span"
)

// Optional request fields use pointers so that absence is distinguishable
// from zero; each response lists which inputs were filled from engine
// defaults.

// SagRequest computes conductor sag for a span.
type SagRequest struct {
	SpanLengthMeters      float64  `json:"span_length_meters" validate:"required,gt=0"`
	ConductorWeightKgPerM float64  `json:"conductor_weight_kg_per_m" validate:"required,gt=0"`
	TensionNewtons        float64  `json:"tension_newtons" validate:"required,gt=0"`
	TemperatureCelsius    *float64 `json:"temperature_celsius,omitempty"`
	WindPressurePa        *float64 `json:"wind_pressure_pa,omitempty" validate:"omitempty,gt=0"`
	ElevationDiffMeters   float64  `json:"support_elevation_diff_meters,omitempty"`
}

// SagResponse wraps the catenary result.
type SagResponse struct {
	*catenary.SagResult
	DefaultedInputs []string `json:"defaulted_inputs,omitempty"`
}

// SpanRequest measures the geometry between two structures. Points are
// [lon, lat] or [lon, lat, elevation].
type SpanRequest struct {
	Point1           []float64 `json:"point1" validate:"required,min=2,max=3"`
	Point2           []float64 `json:"point2" validate:"required,min=2,max=3"`
	IncludeElevation *bool     `json:"include_elevation,omitempty"`
}

// SpanResponse wraps the span result.
type SpanResponse struct {
	*span.Result
	DefaultedInputs []string `json:"defaulted_inputs,omitempty"`
}

// PlacementRequest plans tower positions along a route.
type PlacementRequest struct {
	RouteWKT          string    `json:"route_wkt,omitempty"`
	RoutePolyline     string    `json:"route_polyline,omitempty"`
	TypicalSpanMeters *float64  `json:"typical_span_meters,omitempty" validate:"omitempty,gt=0"`
	MinSpanMeters     *float64  `json:"min_span_meters,omitempty" validate:"omitempty,gt=0"`
	MaxSpanMeters     *float64  `json:"max_span_meters,omitempty" validate:"omitempty,gt=0"`
	TerrainElevations []float64 `json:"terrain_elevations,omitempty"`
}

// PlacementResponse wraps the tower plan.
type PlacementResponse struct {
	*placement.Plan
	DefaultedInputs []string `json:"defaulted_inputs,omitempty"`
}

// ClearanceRequest checks conductor-to-obstacle separation.
type ClearanceRequest struct {
	ConductorWKT           string   `json:"conductor_wkt" validate:"required"`
	ObstacleWKT            string   `json:"obstacle_wkt" validate:"required"`
	MinimumClearanceMeters *float64 `json:"minimum_clearance_meters,omitempty" validate:"omitempty,gte=0"`
	VoltageKV              float64  `json:"voltage_kv,omitempty" validate:"gte=0"`
}

// ClearanceResponse wraps the clearance result.
type ClearanceResponse struct {
	*clearance.Result
	DefaultedInputs []string `json:"defaulted_inputs,omitempty"`
}

// RowRequest buffers a centerline into a ROW corridor.
type RowRequest struct {
	CenterlineWKT   string   `json:"centerline_wkt" validate:"required"`
	RowWidthMeters  *float64 `json:"row_width_meters,omitempty" validate:"omitempty,gt=0"`
	CapStyle        string   `json:"cap_style,omitempty" validate:"omitempty,oneof=flat round square"`
	IncludeStations bool     `json:"include_stations,omitempty"`
}

// RowResponse reports the corridor with its ring serialized back to WKT.
type RowResponse struct {
	RowPolygonWKT          string        `json:"row_polygon_wkt"`
	RowAreaSqMeters        float64       `json:"row_area_sq_meters"`
	RowAreaAcres           float64       `json:"row_area_acres"`
	CenterlineLengthMeters float64       `json:"centerline_length_meters"`
	RowWidthMeters         float64       `json:"row_width_meters"`
	CapStyle               row.CapStyle  `json:"cap_style"`
	Stations               []row.Station `json:"stations,omitempty"`
	DefaultedInputs        []string      `json:"defaulted_inputs,omitempty"`
}

// CurveRequest samples a catenary curve for visualization.
type CurveRequest struct {
	SpanLengthMeters float64 `json:"span_length_meters" validate:"required,gt=0"`
	SagMeters        float64 `json:"sag_meters" validate:"required,gt=0"`
	NumPoints        int     `json:"num_points,omitempty" validate:"omitempty,gte=2"`
}

// CurveResponse wraps the sampled curve.
type CurveResponse struct {
	*catenary.CurveResult
	DefaultedInputs []string `json:"defaulted_inputs,omitempty"`
}

// SightLineRequest tests terrain obstruction between two structures.
type SightLineRequest struct {
	Point1               []float64 `json:"point1" validate:"required,min=2,max=3"`
	Point2               []float64 `json:"point2" validate:"required,min=2,max=3"`
	TerrainProfile       []float64 `json:"terrain_profile" validate:"required,min=2"`
	ObserverHeightMeters *float64  `json:"observer_height_meters,omitempty" validate:"omitempty,gte=0"`
	TargetHeightMeters   *float64  `json:"target_height_meters,omitempty" validate:"omitempty,gte=0"`
}

// SightLineResponse wraps the sight-line result.
type SightLineResponse struct {
	*sightline.Result
	DefaultedInputs []string `json:"defaulted_inputs,omitempty"`
}

// ExportTowerPlanRequest renders a tower plan as a KML overlay.
type ExportTowerPlanRequest struct {
	Name string `json:"name,omitempty"`
	PlacementRequest
}

// ExportRowRequest renders a ROW corridor as a KML overlay.
type ExportRowRequest struct {
	Name string `json:"name,omitempty"`
	RowRequest
}

// KMLResponse carries a serialized KML document.
type KMLResponse struct {
	KML string `json:"kml"`
}
