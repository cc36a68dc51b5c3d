package services

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dpup/gridline/server/internal/config"
	"github.com/dpup/gridline/server/internal/export"
	"github.com/dpup/gridline/server/internal/lib/catenary"
	"github.com/dpup/gridline/server/internal/lib/clearance"
	"github.com/dpup/gridline/server/internal/lib/errs"
	"github.com/dpup/gridline/server/internal/lib/geo"
	"github.com/dpup/gridline/server/internal/lib/placement"
	"github.com/dpup/gridline/server/internal/lib/row"
	"github.com/dpup/gridline/server/internal/lib/sightline"
	"github.com/dpup/gridline/server/internal/lib/span"
)

// TransmissionService exposes the analysis libraries as named operations.
// Every operation is a pure function of its request; the service holds only
// configuration and stateless analyzers.
type TransmissionService struct {
	cfg      *config.EngineConfig
	logger   *zap.Logger
	validate *validator.Validate

	geod     geo.Geodesy
	catenary *catenary.Model
	spans    *span.Analyzer
	planner  *placement.Planner
	checker  *clearance.Checker
	rowGen   *row.Generator
	sight    *sightline.Analyzer
}

// NewTransmissionService creates a TransmissionService.
func NewTransmissionService(cfg *config.EngineConfig, logger *zap.Logger) *TransmissionService {
	geod := geo.NewGeodesy()
	rowGen := row.NewGenerator(geod)
	if cfg.StationIntervalMeters > 0 {
		rowGen.StationInterval = cfg.StationIntervalMeters
	}

	return &TransmissionService{
		cfg:      cfg,
		logger:   logger,
		validate: validator.New(),
		geod:     geod,
		catenary: catenary.NewModel(),
		spans:    span.NewAnalyzer(geod),
		planner:  placement.NewPlanner(geod),
		checker:  clearance.NewChecker(),
		rowGen:   rowGen,
		sight:    sightline.NewAnalyzer(),
	}
}

// RegisterOperations wires every operation into the registry.
func (s *TransmissionService) RegisterOperations(r *Registry) {
	r.Register("calculate_conductor_sag", handle(s, "calculate_conductor_sag", s.calculateConductorSag))
	r.Register("calculate_span_length", handle(s, "calculate_span_length", s.calculateSpanLength))
	r.Register("analyze_tower_placement", handle(s, "analyze_tower_placement", s.analyzeTowerPlacement))
	r.Register("check_clearance", handle(s, "check_clearance", s.checkClearance))
	r.Register("create_row_buffer", handle(s, "create_row_buffer", s.createRowBuffer))
	r.Register("calculate_catenary_curve", handle(s, "calculate_catenary_curve", s.calculateCatenaryCurve))
	r.Register("analyze_line_of_sight", handle(s, "analyze_line_of_sight", s.analyzeLineOfSight))
	r.Register("export_tower_plan_kml", handle(s, "export_tower_plan_kml", s.exportTowerPlanKML))
	r.Register("export_row_corridor_kml", handle(s, "export_row_corridor_kml", s.exportRowCorridorKML))
}

// handle decodes and validates the request payload before invoking fn.
func handle[Req any](s *TransmissionService, name string, fn func(context.Context, *Req) (any, error)) Handler {
	return func(ctx context.Context, payload json.RawMessage) (any, error) {
		req := new(Req)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, req); err != nil {
				return nil, errs.Validationf("invalid request payload: %v", err)
			}
		}
		if err := s.validate.Struct(req); err != nil {
			return nil, errs.Validationf("invalid request: %v", err)
		}

		result, err := fn(ctx, req)
		if err != nil {
			s.logger.Warn("operation failed", zap.String("operation", name), zap.Error(err))
			return nil, err
		}
		s.logger.Debug("operation complete", zap.String("operation", name))
		return result, nil
	}
}

func (s *TransmissionService) calculateConductorSag(_ context.Context, req *SagRequest) (any, error) {
	var defaulted []string

	temperature := s.cfg.DefaultTemperature
	if req.TemperatureCelsius != nil {
		temperature = *req.TemperatureCelsius
	} else {
		defaulted = append(defaulted, "temperature_celsius")
	}

	result, err := s.catenary.ComputeSag(catenary.SagParams{
		SpanLength:      req.SpanLengthMeters,
		ConductorWeight: req.ConductorWeightKgPerM,
		Tension:         req.TensionNewtons,
		Temperature:     temperature,
		WindPressure:    req.WindPressurePa,
		ElevationDiff:   req.ElevationDiffMeters,
	})
	if err != nil {
		return nil, err
	}
	return &SagResponse{SagResult: result, DefaultedInputs: defaulted}, nil
}

func (s *TransmissionService) calculateSpanLength(_ context.Context, req *SpanRequest) (any, error) {
	var defaulted []string

	p1, err := tripleToPoint(req.Point1)
	if err != nil {
		return nil, err
	}
	p2, err := tripleToPoint(req.Point2)
	if err != nil {
		return nil, err
	}

	includeElevation := true
	if req.IncludeElevation != nil {
		includeElevation = *req.IncludeElevation
	} else {
		defaulted = append(defaulted, "include_elevation")
	}

	result, err := s.spans.Analyze(p1, p2, includeElevation)
	if err != nil {
		return nil, err
	}
	return &SpanResponse{Result: result, DefaultedInputs: defaulted}, nil
}

func (s *TransmissionService) analyzeTowerPlacement(_ context.Context, req *PlacementRequest) (any, error) {
	plan, defaulted, err := s.planFromRequest(req)
	if err != nil {
		return nil, err
	}
	return &PlacementResponse{Plan: plan, DefaultedInputs: defaulted}, nil
}

// planFromRequest is shared between the placement and KML export operations.
func (s *TransmissionService) planFromRequest(req *PlacementRequest) (*placement.Plan, []string, error) {
	var defaulted []string

	route, err := parseRoute(req.RouteWKT, req.RoutePolyline)
	if err != nil {
		return nil, nil, err
	}

	constraints := placement.Constraints{
		TypicalSpan: s.cfg.DefaultTypicalSpan,
		MinSpan:     s.cfg.DefaultMinSpan,
		MaxSpan:     s.cfg.DefaultMaxSpan,
	}
	if req.TypicalSpanMeters != nil {
		constraints.TypicalSpan = *req.TypicalSpanMeters
	} else {
		defaulted = append(defaulted, "typical_span_meters")
	}
	if req.MinSpanMeters != nil {
		constraints.MinSpan = *req.MinSpanMeters
	} else {
		defaulted = append(defaulted, "min_span_meters")
	}
	if req.MaxSpanMeters != nil {
		constraints.MaxSpan = *req.MaxSpanMeters
	} else {
		defaulted = append(defaulted, "max_span_meters")
	}

	plan, err := s.planner.Plan(route, constraints, req.TerrainElevations)
	if err != nil {
		return nil, nil, err
	}
	return plan, defaulted, nil
}

func (s *TransmissionService) checkClearance(_ context.Context, req *ClearanceRequest) (any, error) {
	var defaulted []string

	conductor, err := parseLineWKT(req.ConductorWKT)
	if err != nil {
		return nil, err
	}
	obstacle, err := parseObstacleWKT(req.ObstacleWKT)
	if err != nil {
		return nil, err
	}

	minClearance := s.cfg.DefaultMinClearance
	if req.MinimumClearanceMeters != nil {
		minClearance = *req.MinimumClearanceMeters
	} else {
		defaulted = append(defaulted, "minimum_clearance_meters")
	}

	result, err := s.checker.Check(conductor, obstacle, minClearance, req.VoltageKV)
	if err != nil {
		return nil, err
	}
	return &ClearanceResponse{Result: result, DefaultedInputs: defaulted}, nil
}

func (s *TransmissionService) createRowBuffer(_ context.Context, req *RowRequest) (any, error) {
	corridor, defaulted, err := s.corridorFromRequest(req)
	if err != nil {
		return nil, err
	}

	ringWKT, err := formatRingWKT(corridor.Ring)
	if err != nil {
		return nil, errs.Geometryf("failed to serialize ROW polygon: %v", err)
	}

	return &RowResponse{
		RowPolygonWKT:          ringWKT,
		RowAreaSqMeters:        corridor.AreaSqMeters,
		RowAreaAcres:           corridor.AreaAcres,
		CenterlineLengthMeters: corridor.CenterlineLengthMeters,
		RowWidthMeters:         corridor.RowWidthMeters,
		CapStyle:               corridor.CapStyle,
		Stations:               corridor.Stations,
		DefaultedInputs:        defaulted,
	}, nil
}

// corridorFromRequest is shared between the buffer and KML export operations.
func (s *TransmissionService) corridorFromRequest(req *RowRequest) (*row.Corridor, []string, error) {
	var defaulted []string

	centerline, err := parseLineWKT(req.CenterlineWKT)
	if err != nil {
		return nil, nil, err
	}

	width := s.cfg.DefaultRowWidth
	if req.RowWidthMeters != nil {
		width = *req.RowWidthMeters
	} else {
		defaulted = append(defaulted, "row_width_meters")
	}

	capStyle, err := row.ParseCapStyle(req.CapStyle)
	if err != nil {
		return nil, nil, err
	}
	if req.CapStyle == "" {
		defaulted = append(defaulted, "cap_style")
	}

	corridor, err := s.rowGen.Buffer(centerline, width, capStyle, req.IncludeStations)
	if err != nil {
		return nil, nil, err
	}
	return corridor, defaulted, nil
}

func (s *TransmissionService) calculateCatenaryCurve(_ context.Context, req *CurveRequest) (any, error) {
	var defaulted []string

	numPoints := req.NumPoints
	if numPoints == 0 {
		numPoints = s.cfg.DefaultCurvePoints
		defaulted = append(defaulted, "num_points")
	}

	result, err := s.catenary.GenerateCurve(req.SpanLengthMeters, req.SagMeters, numPoints)
	if err != nil {
		return nil, err
	}
	return &CurveResponse{CurveResult: result, DefaultedInputs: defaulted}, nil
}

func (s *TransmissionService) analyzeLineOfSight(_ context.Context, req *SightLineRequest) (any, error) {
	var defaulted []string

	p1, err := tripleToPoint(req.Point1)
	if err != nil {
		return nil, err
	}
	p2, err := tripleToPoint(req.Point2)
	if err != nil {
		return nil, err
	}

	observerHeight := s.cfg.DefaultObserverHeight
	if req.ObserverHeightMeters != nil {
		observerHeight = *req.ObserverHeightMeters
	} else {
		defaulted = append(defaulted, "observer_height_meters")
	}
	targetHeight := s.cfg.DefaultTargetHeight
	if req.TargetHeightMeters != nil {
		targetHeight = *req.TargetHeightMeters
	} else {
		defaulted = append(defaulted, "target_height_meters")
	}

	result, err := s.sight.Analyze(p1, p2, req.TerrainProfile, observerHeight, targetHeight)
	if err != nil {
		return nil, err
	}
	return &SightLineResponse{Result: result, DefaultedInputs: defaulted}, nil
}

func (s *TransmissionService) exportTowerPlanKML(_ context.Context, req *ExportTowerPlanRequest) (any, error) {
	plan, _, err := s.planFromRequest(&req.PlacementRequest)
	if err != nil {
		return nil, err
	}

	doc, err := export.TowerPlanKML(req.Name, plan)
	if err != nil {
		return nil, err
	}
	return &KMLResponse{KML: doc}, nil
}

func (s *TransmissionService) exportRowCorridorKML(_ context.Context, req *ExportRowRequest) (any, error) {
	corridor, _, err := s.corridorFromRequest(&req.RowRequest)
	if err != nil {
		return nil, err
	}

	doc, err := export.CorridorKML(req.Name, corridor)
	if err != nil {
		return nil, err
	}
	return &KMLResponse{KML: doc}, nil
}
