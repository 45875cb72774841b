package models

import "context"

// MetricRepository reads and writes a user's metric history.
type MetricRepository interface {
	// GetHistory returns samples recorded in the last sinceDays days, ordered by date and time.
	GetHistory(ctx context.Context, userID string, metricType MetricType, sinceDays int) ([]MetricSample, error)
	// GetLatest returns the most recent non-goal sample, or nil when there is none.
	GetLatest(ctx context.Context, userID string, metricType MetricType) (*MetricSample, error)
	// Upsert stores a sample, replacing the existing non-goal sample for the same day.
	Upsert(ctx context.Context, sample *MetricSample) error
}

// RecipeRepository is the read-only recipe catalog.
type RecipeRepository interface {
	FindCandidates(ctx context.Context, criteria RecipeCriteria) ([]Recipe, error)
	Get(ctx context.Context, id string) (*Recipe, error)
}

// PreferenceRepository returns nil, nil for users without stored preferences.
type PreferenceRepository interface {
	Get(ctx context.Context, userID string) (*DietaryPreference, error)
}

// MealPlanRepository persists plans. Create and Replace are all-or-nothing.
type MealPlanRepository interface {
	Create(ctx context.Context, plan *MealPlan, meals []MealPlanMeal) (*MealPlan, error)
	Get(ctx context.Context, planID string) (*MealPlan, error)
	Replace(ctx context.Context, plan *MealPlan, meals []MealPlanMeal) error
	GetMeal(ctx context.Context, mealID string) (*MealPlanMeal, error)
	UpdateMeal(ctx context.Context, meal *MealPlanMeal) error
}
