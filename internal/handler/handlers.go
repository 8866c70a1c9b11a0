package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Schera-ole/agentmon/internal/config"
	middlewareinternal "github.com/Schera-ole/agentmon/internal/middleware"
	models "github.com/Schera-ole/agentmon/internal/model"
	"github.com/Schera-ole/agentmon/internal/monitor"
)

func Router(
	mon *monitor.Monitor,
	logger *zap.SugaredLogger,
	config *config.MonitorConfig,
) chi.Router {
	router := chi.NewRouter()
	router.Use(middlewareinternal.LoggingMiddleware(logger))
	router.Use(middlewareinternal.GzipMiddleware)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(15 * time.Second))
	router.Post("/record", func(w http.ResponseWriter, r *http.Request) {
		RecordHandler(w, r, mon, logger, config)
	})
	router.Get("/dashboard/agent/{id}", func(w http.ResponseWriter, r *http.Request) {
		AgentDashboardHandler(w, r, mon)
	})
	router.Get("/dashboard/system", func(w http.ResponseWriter, r *http.Request) {
		SystemHealthHandler(w, r, mon)
	})
	router.Get("/stats/{name}", func(w http.ResponseWriter, r *http.Request) {
		StatsHandler(w, r, mon, config)
	})
	router.Get("/rules", func(w http.ResponseWriter, r *http.Request) {
		RulesHandler(w, r, mon)
	})
	router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		PingHandler(w, r, mon, logger)
	})
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		ListMetricsHandler(w, r, mon)
	})
	return router
}

// RecordHandler ingests a batch of telemetry records.
//
// Each record is routed by shape: task duration, error, or custom metric.
// Malformed entries are skipped rather than failing the batch, because
// telemetry failures must not propagate back into producers.
func RecordHandler(
	w http.ResponseWriter,
	r *http.Request,
	mon *monitor.Monitor,
	logger *zap.SugaredLogger,
	config *config.MonitorConfig,
) {
	body, err := ReadRequestBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := VerifyRequestHash(body, r.Header.Get("HashSHA256"), config.Key); err != nil {
		http.Error(w, "Hash verification failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
		body, err = DecompressBody(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var records []models.MetricsDTO
	if err := json.Unmarshal(body, &records); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}

	accepted := 0
	for _, record := range records {
		switch {
		case record.AgentID != "" && record.Task != "" && record.Value != nil:
			mon.RecordTaskDuration(record.AgentID, record.Task, *record.Value)
		case record.AgentID != "" && record.Error != "":
			mon.RecordError(record.AgentID, record.Error)
		case record.Metric != "" && record.Value != nil:
			mon.RecordCustomMetric(record.Metric, *record.Value, record.Tags)
		default:
			logger.Infof("skipping malformed record: %+v", record)
			continue
		}
		accepted++
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]int{"accepted": accepted})
}

// AgentDashboardHandler serves the aggregated view for one agent.
//
// An unknown agent yields a zeroed dashboard, not an error.
func AgentDashboardHandler(w http.ResponseWriter, r *http.Request, mon *monitor.Monitor) {
	agentID := chi.URLParam(r, "id")
	if agentID == "" {
		http.Error(w, "Agent id not found ", http.StatusNotFound)
		return
	}
	result := mon.Dashboard().AgentDashboard(r.Context(), agentID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// SystemHealthHandler serves the system-wide aggregated view.
func SystemHealthHandler(w http.ResponseWriter, r *http.Request, mon *monitor.Monitor) {
	result := mon.Dashboard().SystemHealth(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// StatsHandler serves windowed statistics for one metric. The window is taken
// from the "window" query parameter (Go duration syntax) and falls back to the
// configured dashboard window.
func StatsHandler(w http.ResponseWriter, r *http.Request, mon *monitor.Monitor, config *config.MonitorConfig) {
	name := chi.URLParam(r, "name")
	window := time.Duration(config.StatsWindow) * time.Second
	if raw := r.URL.Query().Get("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			http.Error(w, "Invalid window: "+err.Error(), http.StatusBadRequest)
			return
		}
		window = parsed
	}

	stats := mon.Collector().Stats(name, window)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(stats)
}

// RulesHandler lists the registered alert rules.
func RulesHandler(w http.ResponseWriter, r *http.Request, mon *monitor.Monitor) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(mon.Engine().Rules())
}

// PingHandler checks the alert journal backend.
func PingHandler(w http.ResponseWriter, r *http.Request, mon *monitor.Monitor, logger *zap.SugaredLogger) {
	err := mon.Journal().Ping(r.Context())
	if err != nil {
		logger.Errorf("journal ping failed: %v", err)
		http.Error(w, "Failed to reach alert journal: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ListMetricsHandler lists the registered metric names.
func ListMetricsHandler(w http.ResponseWriter, r *http.Request, mon *monitor.Monitor) {
	var result string
	for _, name := range mon.Collector().Names() {
		result += name + "\n"
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, result)
}
