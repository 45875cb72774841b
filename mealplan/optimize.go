package mealplan

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"nutrition-engine/models"
)

// optimize runs the advisory passes after slots are filled: daily macro
// deviation, prep grouping and the variety ceiling. It replaces the flags in
// plan.Metadata and lets the hooks revise the meals.
func (g *Generator) optimize(ctx context.Context, plan *models.MealPlan, meals []models.MealPlanMeal, recipes map[string]models.Recipe) ([]models.MealPlanMeal, error) {
	var err error

	plan.Metadata.Rebalance = rebalanceFlags(plan.Targets, DailyTotals(meals), g.cfg.DeviationThreshold)
	if len(plan.Metadata.Rebalance) > 0 {
		if meals, err = g.rebalancer.Rebalance(ctx, plan, meals, plan.Metadata.Rebalance); err != nil {
			return nil, fmt.Errorf("rebalance plan %s: %w", plan.ID, err)
		}
	}

	plan.Metadata.PrepGroups = nil
	if plan.Constraints.MealPrepEnabled {
		if plan.Metadata.PrepGroups, err = g.prepGroups(ctx, meals, recipes); err != nil {
			return nil, err
		}
	}

	plan.Metadata.VarietyFlags = varietyFlags(meals, plan.Constraints.MaxRecipeReuseDays)
	if len(plan.Metadata.VarietyFlags) > 0 {
		if meals, err = g.substituter.Substitute(ctx, plan, meals, plan.Metadata.VarietyFlags); err != nil {
			return nil, fmt.Errorf("substitute recipes in plan %s: %w", plan.ID, err)
		}
	}
	return meals, nil
}

// rebalanceFlags marks each day and macro more than threshold away from its
// target. Days with no meals are skipped.
func rebalanceFlags(targets models.DailyTargets, days []DayTotal, threshold float64) []models.RebalanceFlag {
	var flags []models.RebalanceFlag
	for _, d := range days {
		check := []struct {
			name           string
			actual, target float64
		}{
			{"calories", d.Macros.Calories, targets.Calories},
			{"protein", d.Macros.Protein, targets.Protein},
			{"carbs", d.Macros.Carbs, targets.Carbs},
			{"fat", d.Macros.Fat, targets.Fat},
		}
		for _, c := range check {
			if c.target <= 0 {
				continue
			}
			dev := math.Abs(c.actual-c.target) / c.target
			if dev > threshold {
				flags = append(flags, models.RebalanceFlag{
					Date:      d.Date,
					Nutrient:  c.name,
					Actual:    round2(c.actual),
					Target:    c.target,
					Deviation: round2(dev * 100),
				})
			}
		}
	}
	return flags
}

// varietyFlags reports recipes planned on more distinct days than limit.
func varietyFlags(meals []models.MealPlanMeal, limit int) []models.VarietyFlag {
	if limit <= 0 {
		return nil
	}
	days := map[string]map[time.Time]bool{}
	for _, m := range meals {
		if m.RecipeID == "" {
			continue
		}
		if days[m.RecipeID] == nil {
			days[m.RecipeID] = map[time.Time]bool{}
		}
		days[m.RecipeID][m.Date] = true
	}
	var flags []models.VarietyFlag
	for id, set := range days {
		if len(set) > limit {
			flags = append(flags, models.VarietyFlag{RecipeID: id, Days: len(set), Limit: limit})
		}
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].RecipeID < flags[j].RecipeID })
	return flags
}
