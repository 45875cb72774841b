// Package handlers exposes the analytics engine and the meal-plan generator
// over HTTP.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"nutrition-engine/analytics"
	"nutrition-engine/logger"
	"nutrition-engine/models"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	outliersDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outliers_detected_total",
			Help: "Total number of outliers found by metric analyses",
		},
		[]string{"metric_type"},
	)

	samplesFlaggedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "samples_flagged_total",
			Help: "Incoming samples flagged by screening",
		},
		[]string{"metric_type"},
	)
)

// RecordOutliers counts outliers per metric type. It is the engine's
// OutlierCallback.
func RecordOutliers(metricType models.MetricType, count int) {
	outliersDetectedTotal.WithLabelValues(metricType.String()).Add(float64(count))
}

type MetricHandler struct {
	engine      *analytics.Engine
	defaultDays int
	log         *logger.Logger
}

func NewMetricHandler(engine *analytics.Engine, defaultDays int, log *logger.Logger) *MetricHandler {
	if defaultDays <= 0 {
		defaultDays = 90
	}
	return &MetricHandler{engine: engine, defaultDays: defaultDays, log: log}
}

// sampleRequest accepts a plain YYYY-MM-DD recorded date.
type sampleRequest struct {
	UserID       string            `json:"user_id"`
	MetricType   models.MetricType `json:"metric_type"`
	Value        *float64          `json:"value"`
	Unit         string            `json:"unit"`
	RecordedDate string            `json:"recorded_date"`
	RecordedTime string            `json:"recorded_time"`
	IsGoal       bool              `json:"is_goal"`
	Notes        string            `json:"notes"`
}

func (h *MetricHandler) HandleSample(w http.ResponseWriter, r *http.Request) {
	var req sampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, models.NewValidationError("", "invalid JSON format: "+err.Error()))
		return
	}
	if req.Value == nil {
		writeError(w, h.log, models.NewValidationError("value", "is required"))
		return
	}
	date, err := parseDate(req.RecordedDate)
	if err != nil {
		writeError(w, h.log, models.NewValidationError("recorded_date", "expected YYYY-MM-DD"))
		return
	}

	sample := &models.MetricSample{
		UserID:       req.UserID,
		Type:         req.MetricType,
		Value:        *req.Value,
		Unit:         req.Unit,
		RecordedDate: date,
		RecordedTime: req.RecordedTime,
		IsGoal:       req.IsGoal,
		Notes:        req.Notes,
	}
	screening, err := h.engine.RecordSample(r.Context(), sample)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if screening.Flagged {
		samplesFlaggedTotal.WithLabelValues(sample.Type.String()).Inc()
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"sample":    sample,
		"screening": screening,
	})
}

func (h *MetricHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	metricType, err := models.ParseMetricType(vars["metricType"])
	if err != nil {
		writeError(w, h.log, models.NewValidationError("metric_type", err.Error()))
		return
	}

	days := h.defaultDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		if days, err = strconv.Atoi(raw); err != nil {
			writeError(w, h.log, models.NewValidationError("days", "must be an integer"))
			return
		}
	}

	result, err := h.engine.AnalyzeUserMetrics(r.Context(), vars["userID"], metricType, days)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return models.DateOnly(t), nil
}
