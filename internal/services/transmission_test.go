package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dpup/gridline/server/internal/config"
	"github.com/dpup/gridline/server/internal/lib/errs"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	cfg := config.DefaultConfig()
	svc := NewTransmissionService(&cfg.Engine, zap.NewNop())
	registry := NewRegistry()
	svc.RegisterOperations(registry)
	return registry
}

func dispatch(t *testing.T, registry *Registry, name, payload string) any {
	t.Helper()
	result, err := registry.Dispatch(context.Background(), name, json.RawMessage(payload))
	require.NoError(t, err)
	return result
}

func TestOperationsListed(t *testing.T) {
	registry := newTestRegistry(t)

	ops := registry.Operations()
	assert.Equal(t, []string{
		"calculate_conductor_sag",
		"calculate_span_length",
		"analyze_tower_placement",
		"check_clearance",
		"create_row_buffer",
		"calculate_catenary_curve",
		"analyze_line_of_sight",
		"export_tower_plan_kml",
		"export_row_corridor_kml",
	}, ops)
}

func TestDispatchUnknownOperation(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Dispatch(context.Background(), "no_such_operation", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestCalculateConductorSag(t *testing.T) {
	registry := newTestRegistry(t)

	result := dispatch(t, registry, "calculate_conductor_sag",
		`{"span_length_meters": 300, "conductor_weight_kg_per_m": 1.5, "tension_newtons": 20000}`)

	resp, ok := result.(*SagResponse)
	require.True(t, ok)
	assert.InDelta(t, 8.2772, resp.SagMeters, 0.001)
	assert.InDelta(t, 1359.16, resp.CatenaryConstant, 0.01)
	assert.Contains(t, resp.DefaultedInputs, "temperature_celsius")
}

func TestCalculateConductorSagExplicitTemperature(t *testing.T) {
	registry := newTestRegistry(t)

	result := dispatch(t, registry, "calculate_conductor_sag",
		`{"span_length_meters": 300, "conductor_weight_kg_per_m": 1.5, "tension_newtons": 20000, "temperature_celsius": 40}`)

	resp := result.(*SagResponse)
	assert.Equal(t, 40.0, resp.TemperatureCelsius)
	assert.NotContains(t, resp.DefaultedInputs, "temperature_celsius")
}

func TestCalculateConductorSagValidation(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Dispatch(context.Background(), "calculate_conductor_sag",
		json.RawMessage(`{"span_length_meters": 300, "conductor_weight_kg_per_m": 1.5}`))
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestDispatchMalformedPayload(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Dispatch(context.Background(), "calculate_conductor_sag",
		json.RawMessage(`{"span_length_meters": `))
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestCalculateSpanLength(t *testing.T) {
	registry := newTestRegistry(t)

	result := dispatch(t, registry, "calculate_span_length",
		`{"point1": [0, 0, 100], "point2": [0.005, 0, 150]}`)

	resp, ok := result.(*SpanResponse)
	require.True(t, ok)
	assert.InDelta(t, 556.6, resp.HorizontalDistanceMeters, 0.5)
	assert.Equal(t, 50.0, resp.ElevationDifferenceMeters)
	assert.Greater(t, resp.SlantDistanceMeters, resp.HorizontalDistanceMeters)
	assert.Contains(t, resp.DefaultedInputs, "include_elevation")
}

func TestCalculateSpanLengthInvalidLatitude(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Dispatch(context.Background(), "calculate_span_length",
		json.RawMessage(`{"point1": [0, 95], "point2": [0.005, 0]}`))
	require.Error(t, err)
	assert.True(t, errs.IsGeometry(err))
}

func TestAnalyzeTowerPlacement(t *testing.T) {
	registry := newTestRegistry(t)

	result := dispatch(t, registry, "analyze_tower_placement",
		`{"route_wkt": "LINESTRING (0 0, 0.02 0)"}`)

	resp, ok := result.(*PlacementResponse)
	require.True(t, ok)
	assert.Equal(t, resp.SpanCount+1, resp.TowerCount)
	assert.GreaterOrEqual(t, resp.SpanCount, 1)
	for _, s := range resp.SpanLengths {
		assert.GreaterOrEqual(t, s, 200.0)
		assert.LessOrEqual(t, s, 500.0)
	}
	assert.ElementsMatch(t, resp.DefaultedInputs,
		[]string{"typical_span_meters", "min_span_meters", "max_span_meters"})
}

func TestAnalyzeTowerPlacementEncodedPolyline(t *testing.T) {
	registry := newTestRegistry(t)

	// Decodes to (38.5, -120.2), (40.7, -120.95), (43.252, -126.453).
	result := dispatch(t, registry, "analyze_tower_placement",
		`{"route_polyline": "_p~iF~ps|U_ulLnnqC_mqNvxq` + "`" + `@", "typical_span_meters": 400, "min_span_meters": 300, "max_span_meters": 500}`)

	resp := result.(*PlacementResponse)
	assert.Greater(t, resp.TotalRouteLengthMeters, 500_000.0)
	assert.Empty(t, resp.DefaultedInputs)
}

func TestAnalyzeTowerPlacementInfeasible(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Dispatch(context.Background(), "analyze_tower_placement",
		json.RawMessage(`{"route_wkt": "LINESTRING (0 0, 0.02 0)", "min_span_meters": 600, "max_span_meters": 500, "typical_span_meters": 550}`))
	require.Error(t, err)
	assert.True(t, errs.IsInfeasible(err))
}

func TestAnalyzeTowerPlacementMissingRoute(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Dispatch(context.Background(), "analyze_tower_placement", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.True(t, errs.IsGeometry(err))
}

func TestCheckClearance(t *testing.T) {
	registry := newTestRegistry(t)

	result := dispatch(t, registry, "check_clearance",
		`{"conductor_wkt": "LINESTRING (0 0, 1 1)", "obstacle_wkt": "POINT (0.5 0.5)", "voltage_kv": 230}`)

	resp, ok := result.(*ClearanceResponse)
	require.True(t, ok)
	assert.False(t, resp.ClearanceOK)
	assert.Equal(t, "FAIL", resp.Status)
	assert.InDelta(t, 0, resp.MinimumDistanceMeters, 0.01)
	assert.InDelta(t, 7.3, resp.RegulatoryClearanceMeters, 0.001)
	assert.InDelta(t, 7.3, resp.RequiredClearanceMeters, 0.001)
	assert.Contains(t, resp.DefaultedInputs, "minimum_clearance_meters")
}

func TestCheckClearancePolygonObstacle(t *testing.T) {
	registry := newTestRegistry(t)

	result := dispatch(t, registry, "check_clearance",
		`{"conductor_wkt": "LINESTRING (0 0.001, 0.01 0.001)", "obstacle_wkt": "POLYGON ((0.004 0.002, 0.006 0.002, 0.006 0.003, 0.004 0.003, 0.004 0.002))", "minimum_clearance_meters": 50}`)

	resp := result.(*ClearanceResponse)
	assert.Greater(t, resp.MinimumDistanceMeters, 50.0)
	assert.True(t, resp.ClearanceOK)
	assert.Equal(t, "PASS", resp.Status)
}

func TestCheckClearanceBadWKT(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Dispatch(context.Background(), "check_clearance",
		json.RawMessage(`{"conductor_wkt": "LINESTRING (0 0, 1 1)", "obstacle_wkt": "CIRCLE (1 1, 5)"}`))
	require.Error(t, err)
	assert.True(t, errs.IsGeometry(err))
}

func TestCreateRowBuffer(t *testing.T) {
	registry := newTestRegistry(t)

	result := dispatch(t, registry, "create_row_buffer",
		`{"centerline_wkt": "LINESTRING (0 0, 0.01 0)", "include_stations": true}`)

	resp, ok := result.(*RowResponse)
	require.True(t, ok)
	assert.Contains(t, resp.RowPolygonWKT, "POLYGON")
	assert.Equal(t, 30.0, resp.RowWidthMeters)
	assert.InEpsilon(t, resp.CenterlineLengthMeters*30, resp.RowAreaSqMeters, 0.05)
	assert.NotEmpty(t, resp.Stations)
	assert.ElementsMatch(t, resp.DefaultedInputs, []string{"row_width_meters", "cap_style"})
}

func TestCreateRowBufferInvalidCapStyle(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Dispatch(context.Background(), "create_row_buffer",
		json.RawMessage(`{"centerline_wkt": "LINESTRING (0 0, 0.01 0)", "cap_style": "bevel"}`))
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestCalculateCatenaryCurve(t *testing.T) {
	registry := newTestRegistry(t)

	result := dispatch(t, registry, "calculate_catenary_curve",
		`{"span_length_meters": 300, "sag_meters": 8.2772}`)

	resp, ok := result.(*CurveResponse)
	require.True(t, ok)
	assert.Len(t, resp.Points, 50)
	assert.Contains(t, resp.DefaultedInputs, "num_points")
	assert.InDelta(t, 1359, resp.CatenaryConstant, 5)
}

func TestAnalyzeLineOfSight(t *testing.T) {
	registry := newTestRegistry(t)

	result := dispatch(t, registry, "analyze_line_of_sight",
		`{"point1": [0, 0, 108], "point2": [0.01, 0, 78], "terrain_profile": [100, 105, 140, 105, 100], "observer_height_meters": 2, "target_height_meters": 32}`)

	resp, ok := result.(*SightLineResponse)
	require.True(t, ok)
	assert.False(t, resp.Clear)
	assert.Equal(t, "OBSTRUCTED", resp.Status)
	assert.Equal(t, 1, resp.ObstructionCount)
	assert.Empty(t, resp.DefaultedInputs)
}

func TestAnalyzeLineOfSightDefaults(t *testing.T) {
	registry := newTestRegistry(t)

	result := dispatch(t, registry, "analyze_line_of_sight",
		`{"point1": [0, 0, 100], "point2": [0.01, 0, 100], "terrain_profile": [90, 91, 92, 91, 90]}`)

	resp := result.(*SightLineResponse)
	assert.True(t, resp.Clear)
	assert.ElementsMatch(t, resp.DefaultedInputs,
		[]string{"observer_height_meters", "target_height_meters"})
}

func TestExportTowerPlanKML(t *testing.T) {
	registry := newTestRegistry(t)

	result := dispatch(t, registry, "export_tower_plan_kml",
		`{"name": "Test Line", "route_wkt": "LINESTRING (0 0, 0.02 0)"}`)

	resp, ok := result.(*KMLResponse)
	require.True(t, ok)
	assert.Contains(t, resp.KML, "<kml xmlns=")
	assert.Contains(t, resp.KML, "<name>Test Line</name>")
	assert.Contains(t, resp.KML, "<name>Tower 1</name>")
}

func TestExportRowCorridorKML(t *testing.T) {
	registry := newTestRegistry(t)

	result := dispatch(t, registry, "export_row_corridor_kml",
		`{"centerline_wkt": "LINESTRING (0 0, 0.01 0)", "row_width_meters": 40}`)

	resp, ok := result.(*KMLResponse)
	require.True(t, ok)
	assert.Contains(t, resp.KML, "<Polygon>")
	assert.Contains(t, resp.KML, "40.0 m wide")
}

func TestParseRouteRequiresGeometry(t *testing.T) {
	_, err := parseRoute("", "")
	require.Error(t, err)
	assert.True(t, errs.IsGeometry(err))
}

func TestTripleToPoint(t *testing.T) {
	p, err := tripleToPoint([]float64{-120.5, 38.1, 450})
	require.NoError(t, err)
	assert.Equal(t, -120.5, p.Longitude)
	assert.Equal(t, 38.1, p.Latitude)
	assert.Equal(t, 450.0, p.Elevation)

	_, err = tripleToPoint([]float64{1})
	assert.True(t, errs.IsGeometry(err))
}
