package mealplan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nutrition-engine/models"
)

// RegenerateWithFeedback stores feedback on a plan and re-selects only the
// planned meals it targets: meals on the listed dates and meal types, and
// meals using a disliked recipe. The optimization flags are recomputed and
// the plan is replaced in one step. Only active plans take feedback.
func (g *Generator) RegenerateWithFeedback(ctx context.Context, planID string, fb models.PlanFeedback) (*models.MealPlan, error) {
	if planID == "" {
		return nil, models.NewValidationError("plan_id", "is required")
	}
	if fb.Rating < 0 || fb.Rating > 5 {
		return nil, models.NewValidationError("rating", "must be between 0 and 5")
	}

	plan, err := g.plans.Get(ctx, planID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, models.NewPersistenceError("load meal plan", err)
	}
	if plan.Status != models.PlanActive {
		return nil, fmt.Errorf("plan %s is %s: %w", plan.ID, plan.Status, models.ErrInvalidTransition)
	}
	prefs, err := g.loadPreferences(ctx, plan.UserID)
	if err != nil {
		return nil, err
	}

	fb.ReceivedAt = g.now()
	for i, d := range fb.Dates {
		fb.Dates[i] = models.DateOnly(d)
	}
	plan.Metadata.Feedback = append(plan.Metadata.Feedback, fb)
	plan.Metadata.Regenerations++

	disliked := map[string]bool{}
	for _, id := range fb.DislikedRecipeIDs {
		disliked[id] = true
	}
	meals := plan.Meals
	targeted := make([]bool, len(meals))
	used := map[string][]time.Time{}
	for i, m := range meals {
		targeted[i] = m.Status == models.MealPlanned && (disliked[m.RecipeID] || matchesFeedback(m, fb))
		if !targeted[i] && m.RecipeID != "" {
			used[m.RecipeID] = append(used[m.RecipeID], m.Date)
		}
	}

	rng := g.newRand()
	selector := NewSelector(g.recipes, g.cfg, rng, g.log)
	recipes := map[string]models.Recipe{}
	replaced := 0
	for i, m := range meals {
		if !targeted[i] {
			continue
		}
		exclude := map[string]bool{m.RecipeID: true}
		for id := range disliked {
			exclude[id] = true
		}
		recipe, err := selector.SelectForSlot(ctx, SlotRequest{
			Preferences:  prefs,
			MealType:     m.MealType,
			Date:         m.Date,
			Constraints:  plan.Constraints,
			RecentlyUsed: used,
			Exclude:      exclude,
		})
		if errors.Is(err, models.ErrInsufficientData) {
			g.log.Warn("plan %s: keeping meal %s, %v", plan.ID, m.ID, err)
			used[m.RecipeID] = append(used[m.RecipeID], m.Date)
			continue
		}
		if err != nil {
			return nil, err
		}

		fresh := g.newMeal(plan, recipe, m.Date, m.MealType, rng)
		fresh.ID = m.ID
		fresh.Notes = m.Notes
		meals[i] = fresh
		recipes[recipe.ID] = *recipe
		used[recipe.ID] = append(used[recipe.ID], m.Date)
		replaced++
	}

	if meals, err = g.optimize(ctx, plan, meals, recipes); err != nil {
		return nil, err
	}
	plan.Meals = meals
	plan.UpdatedAt = g.now()

	if err := g.plans.Replace(ctx, plan, meals); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, models.NewPersistenceError("replace meal plan", err)
	}
	g.log.Info("regenerated plan %s from feedback: %d meals replaced", plan.ID, replaced)
	return plan, nil
}

// matchesFeedback reports whether a meal falls in the feedback's dates and
// meal types. An empty list matches nothing on its own, so feedback naming
// neither targets no meals.
func matchesFeedback(m models.MealPlanMeal, fb models.PlanFeedback) bool {
	if len(fb.Dates) == 0 && len(fb.MealTypes) == 0 {
		return false
	}
	if len(fb.Dates) > 0 {
		found := false
		for _, d := range fb.Dates {
			if d.Equal(m.Date) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(fb.MealTypes) > 0 {
		for _, mt := range fb.MealTypes {
			if mt == m.MealType {
				return true
			}
		}
		return false
	}
	return true
}
