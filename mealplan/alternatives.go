package mealplan

import (
	"context"
	"errors"

	"nutrition-engine/models"
	"nutrition-engine/nutrition"
)

const defaultAlternatives = 3

// comparedNutrients are reported for every alternative.
var comparedNutrients = []nutrition.Nutrient{
	nutrition.Calories, nutrition.Protein, nutrition.Carbs, nutrition.Fat, nutrition.Fiber,
}

// Alternative is a ranked replacement for a planned meal. Comparison holds
// the meal as planned (a) against this recipe at the meal's servings (b).
type Alternative struct {
	models.Recipe
	Score      float64                `json:"score"`
	Comparison []nutrition.Comparison `json:"comparison"`
}

// GenerateAlternatives returns the best count recipes for the meal's slot,
// excluding the recipe already planned, ordered by score. The result is
// deterministic and ignores the variety filter.
func (g *Generator) GenerateAlternatives(ctx context.Context, meal models.MealPlanMeal, prefs *models.DietaryPreference, constraints models.PlanConstraints, count int) ([]Alternative, error) {
	if count <= 0 {
		count = defaultAlternatives
	}
	count = min(count, g.cfg.MaxAlternatives)

	selector := NewSelector(g.recipes, g.cfg, g.newRand(), g.log)
	ranked, err := selector.rank(ctx, SlotRequest{
		Preferences: prefs,
		MealType:    meal.MealType,
		Date:        meal.Date,
		Constraints: constraints,
		Exclude:     map[string]bool{meal.RecipeID: true},
	}, false)
	if err != nil {
		return nil, err
	}

	planned := meal.PlannedMacros.Profile()
	out := make([]Alternative, 0, min(count, len(ranked)))
	for _, sr := range ranked[:min(count, len(ranked))] {
		swapped := macrosFor(&sr.Recipe, meal.Servings).Profile()
		out = append(out, Alternative{
			Recipe:     sr.Recipe,
			Score:      sr.Score,
			Comparison: nutrition.CompareNutrition(planned, swapped, comparedNutrients),
		})
	}
	return out, nil
}

// GetAlternatives looks up a stored meal and its plan, then ranks
// alternatives under the plan's constraints and the user's preferences.
func (g *Generator) GetAlternatives(ctx context.Context, mealID string, count int) ([]Alternative, error) {
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
	plan, err := g.plans.Get(ctx, meal.MealPlanID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, models.NewPersistenceError("load meal plan", err)
	}
	prefs, err := g.loadPreferences(ctx, plan.UserID)
	if err != nil {
		return nil, err
	}
	return g.GenerateAlternatives(ctx, *meal, prefs, plan.Constraints, count)
}
