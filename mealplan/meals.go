package mealplan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"nutrition-engine/models"
	"nutrition-engine/nutrition"
)

// DayTotal is the planned intake for one plan date.
type DayTotal struct {
	Date      time.Time     `json:"date"`
	Macros    models.Macros        `json:"macros"`
	Split     nutrition.MacroSplit `json:"macro_split"`
	MealCount int                  `json:"meal_count"`
}

// DailyTotals sums planned macros per date, oldest first. Skipped meals do
// not count.
func DailyTotals(meals []models.MealPlanMeal) []DayTotal {
	byDate := map[time.Time]*DayTotal{}
	for _, m := range meals {
		if m.Status == models.MealSkipped {
			continue
		}
		d, ok := byDate[m.Date]
		if !ok {
			d = &DayTotal{Date: m.Date}
			byDate[m.Date] = d
		}
		d.Macros = d.Macros.Add(m.PlannedMacros)
		d.MealCount++
	}
	out := make([]DayTotal, 0, len(byDate))
	for _, d := range byDate {
		d.Macros = models.Macros{
			Calories: round2(d.Macros.Calories),
			Protein:  round2(d.Macros.Protein),
			Carbs:    round2(d.Macros.Carbs),
			Fat:      round2(d.Macros.Fat),
			Fiber:    round2(d.Macros.Fiber),
		}
		d.Split = nutrition.MacroPercentages(d.Macros.Profile())
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// PlanDailyTotals loads a stored plan and sums its meals per day.
func (g *Generator) PlanDailyTotals(ctx context.Context, planID string) ([]DayTotal, error) {
	if planID == "" {
		return nil, models.NewValidationError("plan_id", "is required")
	}
	plan, err := g.plans.Get(ctx, planID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, models.NewPersistenceError("load meal plan", err)
	}
	return DailyTotals(plan.Meals), nil
}

// StatusUpdate moves a meal through its lifecycle. RecipeID is required when
// Status is substituted.
type StatusUpdate struct {
	Status   models.MealStatus `json:"status"`
	RecipeID string            `json:"recipe_id,omitempty"`
	Notes    string            `json:"notes,omitempty"`
}

// UpdateMealStatus applies a status change and recalculates the meal's planned
// macros when a substitute recipe replaces the original.
func (g *Generator) UpdateMealStatus(ctx context.Context, mealID string, upd StatusUpdate) (*models.MealPlanMeal, error) {
	if mealID == "" {
		return nil, models.NewValidationError("meal_id", "is required")
	}
	meal, err := g.plans.GetMeal(ctx, mealID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, models.NewPersistenceError("load meal", err)
	}
	if !meal.Status.CanTransition(upd.Status) {
		return nil, fmt.Errorf("meal %s %s -> %s: %w", meal.ID, meal.Status, upd.Status, models.ErrInvalidTransition)
	}

	if upd.Status == models.MealSubstituted {
		if upd.RecipeID == "" {
			return nil, models.NewValidationError("recipe_id", "is required for a substitution")
		}
		recipe, err := g.recipes.Get(ctx, upd.RecipeID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, err
			}
			return nil, models.NewPersistenceError("load recipe", err)
		}
		g.calc.FillRecipe(recipe)
		meal.RecipeID = recipe.ID
		meal.RecipeName = recipe.Name
		meal.PlannedMacros = macrosFor(recipe, meal.Servings)
		meal.IsMealPrep = false
		meal.PrepDate = nil
	}

	meal.Status = upd.Status
	if upd.Notes != "" {
		meal.Notes = upd.Notes
	}
	if err := g.plans.UpdateMeal(ctx, meal); err != nil {
		return nil, models.NewPersistenceError("update meal", err)
	}
	g.log.Debug("meal %s is now %s", meal.ID, meal.Status)
	return meal, nil
}
