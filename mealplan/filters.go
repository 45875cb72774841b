package mealplan

import (
	"strings"

	"nutrition-engine/models"
)

// hardLimits merges the plan constraints with the user's preferences. The
// stricter of two limits wins.
type hardLimits struct {
	restrictions        []string
	allergens           map[string]bool
	maxMinutes          int
	maxDifficulty       models.Difficulty
	cuisines            map[string]bool
	dislikedCuisines    map[string]bool
	dislikedIngredients []string
	equipment           map[string]bool
	budget              float64
	minRating           float64
	exclude             map[string]bool
}

func newHardLimits(prefs *models.DietaryPreference, c models.PlanConstraints, minRating float64, exclude map[string]bool) hardLimits {
	l := hardLimits{
		maxMinutes:       minPositive(prefs.MaxCookingTime, c.MaxCookingTime),
		maxDifficulty:    models.Difficulty(minPositive(int(prefs.MaxDifficulty), int(c.MaxDifficulty))),
		allergens:        lowerSet(prefs.Allergens),
		cuisines:         lowerSet(c.Cuisines),
		dislikedCuisines: lowerSet(prefs.DislikedCuisines),
		equipment:        lowerSet(prefs.Equipment),
		budget:           prefs.BudgetPerServing,
		minRating:        minRating,
		exclude:          exclude,
	}
	for _, r := range prefs.Restrictions {
		if r = normalize(r); r != "" {
			l.restrictions = append(l.restrictions, r)
		}
	}
	for _, d := range prefs.DislikedIngredients {
		if d = normalize(d); d != "" {
			l.dislikedIngredients = append(l.dislikedIngredients, d)
		}
	}
	return l
}

// reject returns the first hard constraint r violates, or "" when r is allowed.
func (l hardLimits) reject(r *models.Recipe) string {
	if l.exclude[r.ID] {
		return "excluded"
	}
	if len(l.restrictions) > 0 {
		tags := lowerSet(r.DietaryTags)
		for _, want := range l.restrictions {
			if !tags[want] {
				return "restriction " + want
			}
		}
	}
	for _, a := range r.AllAllergens() {
		if l.allergens[a] {
			return "allergen " + a
		}
	}
	if l.maxMinutes > 0 && r.Minutes() > l.maxMinutes {
		return "too slow"
	}
	if l.maxDifficulty != models.DifficultyUnset && r.Difficulty > l.maxDifficulty {
		return "too hard"
	}
	cuisine := normalize(r.Cuisine)
	if len(l.cuisines) > 0 && !l.cuisines[cuisine] {
		return "cuisine not allowed"
	}
	if l.dislikedCuisines[cuisine] {
		return "disliked cuisine"
	}
	if r.AverageRating < l.minRating {
		return "rating below floor"
	}
	for _, ing := range r.Ingredients {
		name := normalize(ing.Name)
		for _, d := range l.dislikedIngredients {
			if strings.Contains(name, d) {
				return "disliked ingredient " + d
			}
		}
	}
	if len(l.equipment) > 0 {
		for _, e := range r.Equipment {
			if !l.equipment[normalize(e)] {
				return "missing equipment " + e
			}
		}
	}
	if l.budget > 0 && r.CostPerServing > 0 && r.CostPerServing > l.budget {
		return "over budget"
	}
	return ""
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v = normalize(v); v != "" {
			set[v] = true
		}
	}
	return set
}

// minPositive returns the smaller positive value, or 0 when neither is set.
func minPositive(a, b int) int {
	switch {
	case a <= 0:
		return max(b, 0)
	case b <= 0:
		return a
	default:
		return min(a, b)
	}
}
