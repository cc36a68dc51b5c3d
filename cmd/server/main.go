package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/dpup/prefab"
	"go.uber.org/zap"

	"github.com/dpup/gridline/server/internal/config"
	"github.com/dpup/gridline/server/internal/lib/errs"
	"github.com/dpup/gridline/server/internal/services"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	appConfig := loadConfig()

	// Wire the analysis engine into the operation registry.
	svc := services.NewTransmissionService(&appConfig.Engine, logger)
	registry := services.NewRegistry()
	svc.RegisterOperations(registry)

	logger.Info("Gridline analysis server starting",
		zap.Int("operations", len(registry.Operations())))

	// Server configuration (port, etc.) is loaded from prefab.yaml/env vars.
	server := prefab.New(
		prefab.WithHTTPHandlerFunc("/", homepageHandler),
		prefab.WithHTTPHandlerFunc("/v1/operations", listHandler(registry)),
		prefab.WithHTTPHandlerFunc("/v1/operations/", dispatchHandler(registry, logger)),
	)

	if err := server.Start(); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// loadConfig overlays the engine section from Prefab's config system (loaded
// from prefab.yaml and PF__ environment variables) onto the built-in
// defaults.
func loadConfig() *config.Config {
	appConfig := config.DefaultConfig()

	if err := prefab.Config.Unmarshal("engine", &appConfig.Engine); err != nil {
		log.Fatalf("Failed to unmarshal engine section: %v", err)
	}

	return appConfig
}

// listHandler responds with the registered operation names.
func listHandler(registry *services.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"operations": registry.Operations()})
	}
}

// dispatchHandler routes POST /v1/operations/{name} into the registry and
// maps engine error kinds onto HTTP statuses.
func dispatchHandler(registry *services.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/v1/operations/")
		if name == "" {
			listHandler(registry)(w, r)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation", "failed to read request body")
			return
		}

		result, err := registry.Dispatch(r.Context(), name, payload)
		if err != nil {
			status, kind := classifyError(err)
			if status == http.StatusInternalServerError {
				logger.Error("operation error", zap.String("operation", name), zap.Error(err))
			}
			writeError(w, status, kind, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// classifyError maps the engine's error taxonomy to HTTP statuses. Geometry,
// computation, and infeasibility errors all describe well-formed requests the
// engine cannot satisfy, so they map to 422 rather than 400.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrUnknownOperation):
		return http.StatusNotFound, "unknown_operation"
	case errs.IsValidation(err):
		return http.StatusBadRequest, "validation"
	case errs.IsGeometry(err):
		return http.StatusUnprocessableEntity, "geometry"
	case errs.IsInfeasible(err):
		return http.StatusUnprocessableEntity, "infeasible"
	case errs.IsComputation(err):
		return http.StatusUnprocessableEntity, "computation"
	}
	return http.StatusInternalServerError, "internal"
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]string{"error": message, "kind": kind})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("Failed to write response", zap.Error(err))
	}
}

// homepageHandler serves a simple HTML homepage at the server root
func homepageHandler(w http.ResponseWriter, r *http.Request) {
	// Only handle the root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	html := `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>gridline</title>
    <style>
        body {
            font-family: 'Courier New', Consolas, monospace;
            background: #000;
            color: #0f0;
            padding: 20px;
            line-height: 1.4;
        }
        a { color: #0ff; text-decoration: none; }
        a:hover { text-decoration: underline; }
        pre { margin: 0; }
        .header { color: #ff0; }
        .section { margin: 20px 0; }
    </style>
</head>
<body>
<pre>
<span class="header">gridline</span>

Transmission line geometry analysis: conductor sag, span measurement,
tower placement, NESC clearance checks, ROW corridors, and terrain
line-of-sight.

<span class="header">API Endpoints:</span>

  <a href="/v1/operations">GET  /v1/operations</a>          - List available operations
  POST /v1/operations/{name}    - Invoke an operation

<span class="header">Operations:</span>

  calculate_conductor_sag    - Catenary sag for a span under load
  calculate_span_length      - Geodesic span between two structures
  analyze_tower_placement    - Tower spacing along a route
  check_clearance            - Conductor-to-obstacle separation
  create_row_buffer          - Right-of-way corridor polygon
  calculate_catenary_curve   - Sampled curve for plotting
  analyze_line_of_sight      - Terrain obstruction between points
  export_tower_plan_kml      - Tower plan as KML
  export_row_corridor_kml    - ROW corridor as KML

<span class="header">Example Usage:</span>

  curl -X POST localhost:8000/v1/operations/calculate_conductor_sag \
    -d '{"span_length_meters": 300, "conductor_weight_kg_per_m": 1.5, "tension_newtons": 20000}'
</pre>
</body>
</html>`

	if _, err := fmt.Fprint(w, html); err != nil {
		zap.L().Error("Failed to write homepage HTML", zap.Error(err))
	}
}
