package config

// Config represents the complete analysis engine configuration
type Config struct {
	Engine EngineConfig `yaml:"engine"`
}

// EngineConfig holds defaults applied when a request omits optional inputs.
// Physical constants for the catenary model live in the catenary package;
// these are operational defaults only.
type EngineConfig struct {
	// Temperature assumed when a sag request omits one (Celsius)
	DefaultTemperature float64 `yaml:"default_temperature"`

	// Span constraints assumed when a placement request omits them (meters)
	DefaultTypicalSpan float64 `yaml:"default_typical_span"`
	DefaultMinSpan     float64 `yaml:"default_min_span"`
	DefaultMaxSpan     float64 `yaml:"default_max_span"`

	// Clearance requirement assumed when a check omits one (meters)
	DefaultMinClearance float64 `yaml:"default_min_clearance"`

	// ROW width assumed when a buffer request omits one (meters), and the
	// spacing of station markers along the centerline
	DefaultRowWidth       float64 `yaml:"default_row_width"`
	StationIntervalMeters float64 `yaml:"station_interval_meters"`

	// Equipment heights assumed for sight-line analysis (meters above ground)
	DefaultObserverHeight float64 `yaml:"default_observer_height"`
	DefaultTargetHeight   float64 `yaml:"default_target_height"`

	// Sample count for generated catenary curves
	DefaultCurvePoints int `yaml:"default_curve_points"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			DefaultTemperature:    15.0,
			DefaultTypicalSpan:    300.0,
			DefaultMinSpan:        200.0,
			DefaultMaxSpan:        500.0,
			DefaultMinClearance:   7.0,
			DefaultRowWidth:       30.0,
			StationIntervalMeters: 100.0,
			DefaultObserverHeight: 2.0,
			DefaultTargetHeight:   30.0,
			DefaultCurvePoints:    50,
		},
	}
}
