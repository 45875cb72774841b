package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"nutrition-engine/logger"
	"nutrition-engine/mealplan"
	"nutrition-engine/models"
)

var (
	mealPlansGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meal_plans_generated_total",
			Help: "Total number of meal plans generated",
		},
	)

	mealSlotsEmptyTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meal_slots_empty_total",
			Help: "Meal slots left empty because no recipe satisfied the constraints",
		},
	)

	mealPlanRegenerationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meal_plan_regenerations_total",
			Help: "Meal plans regenerated from user feedback",
		},
	)
)

type MealPlanHandler struct {
	generator *mealplan.Generator
	log       *logger.Logger
}

func NewMealPlanHandler(generator *mealplan.Generator, log *logger.Logger) *MealPlanHandler {
	return &MealPlanHandler{generator: generator, log: log}
}

// generateRequest shadows start_date so clients can send YYYY-MM-DD.
type generateRequest struct {
	mealplan.GenerateRequest
	StartDate string `json:"start_date"`
}

func (h *MealPlanHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, models.NewValidationError("", "invalid JSON format: "+err.Error()))
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, h.log, models.NewValidationError("start_date", "expected YYYY-MM-DD"))
		return
	}
	req.GenerateRequest.StartDate = start
	req.UserID = mux.Vars(r)["userID"]

	plan, err := h.generator.Generate(r.Context(), req.GenerateRequest)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	mealPlansGeneratedTotal.Inc()
	mealSlotsEmptyTotal.Add(float64(plan.Metadata.EmptySlots))

	writeJSON(w, http.StatusCreated, plan)
}

type feedbackRequest struct {
	models.PlanFeedback
	Dates []string `json:"dates"`
}

func (h *MealPlanHandler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, models.NewValidationError("", "invalid JSON format: "+err.Error()))
		return
	}
	fb := req.PlanFeedback
	fb.Dates = make([]time.Time, 0, len(req.Dates))
	for _, raw := range req.Dates {
		d, err := parseDate(raw)
		if err != nil {
			writeError(w, h.log, models.NewValidationError("dates", "expected YYYY-MM-DD"))
			return
		}
		fb.Dates = append(fb.Dates, d)
	}

	plan, err := h.generator.RegenerateWithFeedback(r.Context(), mux.Vars(r)["planID"], fb)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	mealPlanRegenerationsTotal.Inc()
	writeJSON(w, http.StatusOK, plan)
}

func (h *MealPlanHandler) HandleAlternatives(w http.ResponseWriter, r *http.Request) {
	mealID := mux.Vars(r)["mealID"]
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		var err error
		if count, err = strconv.Atoi(raw); err != nil || count < 0 {
			writeError(w, h.log, models.NewValidationError("count", "must be a non-negative integer"))
			return
		}
	}

	alts, err := h.generator.GetAlternatives(r.Context(), mealID, count)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"meal_id":      mealID,
		"alternatives": alts,
	})
}

func (h *MealPlanHandler) HandleDailyTotals(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planID"]
	days, err := h.generator.PlanDailyTotals(r.Context(), planID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"plan_id": planID,
		"days":    days,
	})
}

func (h *MealPlanHandler) HandleMealStatus(w http.ResponseWriter, r *http.Request) {
	var upd mealplan.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, h.log, models.NewValidationError("", "invalid JSON format: "+err.Error()))
		return
	}
	meal, err := h.generator.UpdateMealStatus(r.Context(), mux.Vars(r)["mealID"], upd)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, meal)
}
