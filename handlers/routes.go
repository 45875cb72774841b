package handlers

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registers every route. /metrics is served without instrumentation.
func NewRouter(metrics *MetricHandler, plans *MealPlanHandler, health *HealthHandler) *mux.Router {
	r := mux.NewRouter()
	r.Path("/metrics").Handler(promhttp.Handler())

	api := r.NewRoute().Subrouter()
	api.Use(Instrument)
	api.HandleFunc("/health", health.HealthCheck).Methods("GET")
	api.HandleFunc("/samples", metrics.HandleSample).Methods("POST")
	api.HandleFunc("/users/{userID}/metrics/{metricType}/analysis", metrics.HandleAnalyze).Methods("GET")
	api.HandleFunc("/users/{userID}/meal-plans", plans.HandleGenerate).Methods("POST")
	api.HandleFunc("/meal-plans/{planID}/feedback", plans.HandleFeedback).Methods("POST")
	api.HandleFunc("/meal-plans/{planID}/daily-totals", plans.HandleDailyTotals).Methods("GET")
	api.HandleFunc("/meals/{mealID}/alternatives", plans.HandleAlternatives).Methods("GET")
	api.HandleFunc("/meals/{mealID}/status", plans.HandleMealStatus).Methods("PATCH")
	return r
}
