package models

import (
	"fmt"
	"strings"
	"time"
)

// MealType is a slot within a day.
type MealType int

const (
	MealUnknown MealType = iota
	MealBreakfast
	MealLunch
	MealDinner
	MealMorningSnack
	MealAfternoonSnack
	MealEveningSnack
)

func (m MealType) String() string {
	switch m {
	case MealBreakfast:
		return "breakfast"
	case MealLunch:
		return "lunch"
	case MealDinner:
		return "dinner"
	case MealMorningSnack:
		return "morning_snack"
	case MealAfternoonSnack:
		return "afternoon_snack"
	case MealEveningSnack:
		return "evening_snack"
	default:
		return "unknown"
	}
}

func ParseMealType(s string) (MealType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "breakfast":
		return MealBreakfast, nil
	case "lunch":
		return MealLunch, nil
	case "dinner":
		return MealDinner, nil
	case "morning_snack":
		return MealMorningSnack, nil
	case "afternoon_snack", "snack":
		return MealAfternoonSnack, nil
	case "evening_snack":
		return MealEveningSnack, nil
	}
	return MealUnknown, fmt.Errorf("unknown meal type %q", s)
}

func (m MealType) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *MealType) UnmarshalText(b []byte) error {
	v, err := ParseMealType(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// IsSnack reports whether the slot is one of the snack subtypes.
func (m MealType) IsSnack() bool {
	return m == MealMorningSnack || m == MealAfternoonSnack || m == MealEveningSnack
}

// Category maps a slot to the recipe category its candidates are drawn from.
func (m MealType) Category() MealCategory {
	switch m {
	case MealBreakfast:
		return CategoryBreakfast
	case MealLunch:
		return CategoryLunch
	case MealDinner:
		return CategoryDinner
	case MealMorningSnack, MealAfternoonSnack, MealEveningSnack:
		return CategorySnack
	default:
		return CategoryUnknown
	}
}

// PlanStatus is the lifecycle state of a meal plan.
type PlanStatus int

const (
	PlanDraft PlanStatus = iota
	PlanGenerating
	PlanActive
	PlanCompleted
	PlanArchived
)

func (s PlanStatus) String() string {
	switch s {
	case PlanDraft:
		return "draft"
	case PlanGenerating:
		return "generating"
	case PlanActive:
		return "active"
	case PlanCompleted:
		return "completed"
	case PlanArchived:
		return "archived"
	default:
		return "unknown"
	}
}

func ParsePlanStatus(s string) (PlanStatus, error) {
	for _, st := range []PlanStatus{PlanDraft, PlanGenerating, PlanActive, PlanCompleted, PlanArchived} {
		if st.String() == s {
			return st, nil
		}
	}
	return PlanDraft, fmt.Errorf("unknown plan status %q", s)
}

// CanTransition reports whether a plan may move from s to next.
func (s PlanStatus) CanTransition(next PlanStatus) bool {
	switch s {
	case PlanDraft:
		return next == PlanGenerating
	case PlanGenerating:
		return next == PlanActive
	case PlanActive:
		return next == PlanCompleted || next == PlanArchived
	case PlanCompleted:
		return next == PlanArchived
	default:
		return false
	}
}

func (s PlanStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *PlanStatus) UnmarshalText(b []byte) error {
	v, err := ParsePlanStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MealStatus is the lifecycle state of a single planned meal.
type MealStatus int

const (
	MealPlanned MealStatus = iota
	MealPrepped
	MealCompleted
	MealSkipped
	MealSubstituted
)

func (s MealStatus) String() string {
	switch s {
	case MealPlanned:
		return "planned"
	case MealPrepped:
		return "prepped"
	case MealCompleted:
		return "completed"
	case MealSkipped:
		return "skipped"
	case MealSubstituted:
		return "substituted"
	default:
		return "unknown"
	}
}

func ParseMealStatus(s string) (MealStatus, error) {
	for _, st := range []MealStatus{MealPlanned, MealPrepped, MealCompleted, MealSkipped, MealSubstituted} {
		if st.String() == s {
			return st, nil
		}
	}
	return MealPlanned, fmt.Errorf("unknown meal status %q", s)
}

// CanTransition enforces one-way moves; substituted may recur.
func (s MealStatus) CanTransition(next MealStatus) bool {
	switch s {
	case MealPlanned:
		return next != MealPlanned
	case MealPrepped:
		return next == MealCompleted || next == MealSkipped || next == MealSubstituted
	case MealSubstituted:
		return next == MealSubstituted || next == MealPrepped || next == MealCompleted || next == MealSkipped
	default:
		return false
	}
}

func (s MealStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *MealStatus) UnmarshalText(b []byte) error {
	v, err := ParseMealStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Macros is the per-meal or per-day macro summary.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// Add returns the element-wise sum.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
		Fiber:    m.Fiber + o.Fiber,
	}
}

// Profile widens the summary to a nutrition profile with only macros set.
func (m Macros) Profile() NutritionProfile {
	return NutritionProfile{Calories: m.Calories, Protein: m.Protein, Carbs: m.Carbs, Fat: m.Fat, Fiber: m.Fiber}
}

// DailyTargets are the per-day goals a plan is generated against.
type DailyTargets struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// PlanConstraints are the generation knobs stored with the plan.
type PlanConstraints struct {
	AvoidRepetition    bool       `json:"avoid_repetition"`
	MaxRecipeReuseDays int        `json:"max_recipe_reuse_days"`
	MealPrepEnabled    bool       `json:"meal_prep_enabled"`
	Cuisines           []string   `json:"cuisines,omitempty"`
	MaxCookingTime     int        `json:"max_cooking_time,omitempty"`
	MaxDifficulty      Difficulty `json:"max_difficulty,omitempty"`
	ServingsPerMeal    float64    `json:"servings_per_meal"`
}

// RebalanceFlag marks a day whose macro total strays from its target.
type RebalanceFlag struct {
	Date      time.Time `json:"date"`
	Nutrient  string    `json:"nutrient"`
	Actual    float64   `json:"actual"`
	Target    float64   `json:"target"`
	Deviation float64   `json:"deviation_pct"`
}

// VarietyFlag marks a recipe used on more days than the plan allows.
type VarietyFlag struct {
	RecipeID string `json:"recipe_id"`
	Days     int    `json:"days"`
	Limit    int    `json:"limit"`
}

// PrepGroup collects meals prepared on the same day.
type PrepGroup struct {
	PrepDate     time.Time `json:"prep_date"`
	MealIDs      []string  `json:"meal_ids"`
	TotalMinutes int       `json:"total_minutes"`
	Cuisines     []string  `json:"cuisines"`
	Tips         []string  `json:"tips,omitempty"`
}

// PlanFeedback is user feedback merged into a plan's metadata.
type PlanFeedback struct {
	Rating            int         `json:"rating,omitempty"`
	Comments          string      `json:"comments,omitempty"`
	Dates             []time.Time `json:"dates,omitempty"`
	MealTypes         []MealType  `json:"meal_types,omitempty"`
	DislikedRecipeIDs []string    `json:"disliked_recipe_ids,omitempty"`
	ReceivedAt        time.Time   `json:"received_at"`
}

// PlanMetadata is advisory output of the optimization passes.
type PlanMetadata struct {
	Feedback      []PlanFeedback  `json:"feedback,omitempty"`
	Rebalance     []RebalanceFlag `json:"rebalance,omitempty"`
	VarietyFlags  []VarietyFlag   `json:"variety_flags,omitempty"`
	PrepGroups    []PrepGroup     `json:"prep_groups,omitempty"`
	EmptySlots    int             `json:"empty_slots,omitempty"`
	Regenerations int             `json:"regenerations,omitempty"`
}

// MealPlan owns its meals; deleting the plan deletes them.
type MealPlan struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Name         string          `json:"name"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	DurationDays int             `json:"duration_days"`
	Targets      DailyTargets    `json:"daily_targets"`
	MealTypes    []MealType      `json:"meal_types"`
	Constraints  PlanConstraints `json:"constraints"`
	Status       PlanStatus      `json:"status"`
	Metadata     PlanMetadata    `json:"metadata"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Meals        []MealPlanMeal  `json:"meals,omitempty"`
}

// MealPlanMeal is one filled (date, meal type) slot.
type MealPlanMeal struct {
	ID            string     `json:"id"`
	MealPlanID    string     `json:"meal_plan_id"`
	RecipeID      string     `json:"recipe_id,omitempty"`
	RecipeName    string     `json:"recipe_name,omitempty"`
	Date          time.Time  `json:"date"`
	MealType      MealType   `json:"meal_type"`
	Servings      float64    `json:"servings"`
	PlannedMacros Macros     `json:"planned_macros"`
	IsMealPrep    bool       `json:"is_meal_prep"`
	PrepDate      *time.Time `json:"prep_date,omitempty"`
	Status        MealStatus `json:"status"`
	Notes         string     `json:"notes,omitempty"`
}
