package nutrition

import "nutrition-engine/models"

// RecipeProfile derives a per-serving profile from the ingredients that
// carry per-100 g nutrition. ok is false when none of them do.
func (c *Calculator) RecipeProfile(r *models.Recipe) (models.NutritionProfile, bool) {
	parts := make([]models.NutritionProfile, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if ing.Nutrition == nil {
			continue
		}
		parts = append(parts, c.CalculateNutrition(*ing.Nutrition, ing.Amount, ing.Unit, ing.Name))
	}
	if len(parts) == 0 {
		return models.NutritionProfile{}, false
	}
	p := PerServing(SumProfiles(parts...), float64(r.Servings))
	p.Label = r.Name
	return p, true
}

// FillRecipe sets r.Nutrition from the ingredient list when the catalog row
// has no macros of its own. It reports whether the profile was derived.
func (c *Calculator) FillRecipe(r *models.Recipe) bool {
	if hasMacros(r.Nutrition) {
		return false
	}
	p, ok := c.RecipeProfile(r)
	if !ok {
		return false
	}
	c.log.Debug("recipe %s: nutrition derived from %d ingredients", r.ID, len(r.Ingredients))
	r.Nutrition = p
	return true
}

func hasMacros(p models.NutritionProfile) bool {
	return p.Calories != 0 || p.Protein != 0 || p.Carbs != 0 || p.Fat != 0
}
