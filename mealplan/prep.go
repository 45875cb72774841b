package mealplan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"nutrition-engine/models"
)

// prepEligible requires storage instructions, a recipe longer than the
// configured minimum, and a non-snack slot.
func (g *Generator) prepEligible(r *models.Recipe, mt models.MealType) bool {
	return strings.TrimSpace(r.StorageInstructions) != "" &&
		r.Minutes() > g.cfg.MealPrepMinMinutes &&
		!mt.IsSnack()
}

// prepGroups groups meal-prep meals by prep date and attaches advice to heavy
// sessions. The tips are advisory only.
func (g *Generator) prepGroups(ctx context.Context, meals []models.MealPlanMeal, recipes map[string]models.Recipe) ([]models.PrepGroup, error) {
	byDate := map[time.Time]*models.PrepGroup{}
	cuisines := map[time.Time]map[string]bool{}

	for _, m := range meals {
		if !m.IsMealPrep || m.PrepDate == nil {
			continue
		}
		r, ok := recipes[m.RecipeID]
		if !ok {
			loaded, err := g.recipes.Get(ctx, m.RecipeID)
			if errors.Is(err, models.ErrNotFound) {
				g.log.Warn("meal %s references missing recipe %s", m.ID, m.RecipeID)
				continue
			}
			if err != nil {
				return nil, models.NewPersistenceError("load recipe", err)
			}
			r = *loaded
			recipes[r.ID] = r
		}

		day := *m.PrepDate
		grp, ok := byDate[day]
		if !ok {
			grp = &models.PrepGroup{PrepDate: day}
			byDate[day] = grp
			cuisines[day] = map[string]bool{}
		}
		grp.MealIDs = append(grp.MealIDs, m.ID)
		grp.TotalMinutes += r.Minutes()
		if c := normalize(r.Cuisine); c != "" && !cuisines[day][c] {
			cuisines[day][c] = true
			grp.Cuisines = append(grp.Cuisines, c)
		}
	}

	groups := make([]models.PrepGroup, 0, len(byDate))
	for _, grp := range byDate {
		if grp.TotalMinutes > g.cfg.PrepGroupMaxMinutes {
			grp.Tips = append(grp.Tips, fmt.Sprintf(
				"This session needs about %d minutes. Consider splitting it across two days.", grp.TotalMinutes))
		}
		if len(grp.Cuisines) > g.cfg.PrepGroupMaxCuisines {
			grp.Tips = append(grp.Tips, fmt.Sprintf(
				"This session mixes %d cuisines (%s). Grouping similar dishes shares ingredients and equipment.",
				len(grp.Cuisines), strings.Join(grp.Cuisines, ", ")))
		}
		groups = append(groups, *grp)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].PrepDate.Before(groups[j].PrepDate) })
	return groups, nil
}
