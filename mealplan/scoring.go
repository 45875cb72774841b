package mealplan

import (
	"strings"
	"time"

	"nutrition-engine/models"
)

const (
	baseScore             = 50.0
	preferredCuisineBonus = 15.0
	preferredIngredient   = 5.0
	timePenaltyStart      = 0.8
	timePenaltyFactor     = 20.0
	proteinBonus          = 10.0
	proteinMinGrams       = 20.0
	fiberBonus            = 10.0
	fiberMinGrams         = 5.0
	ratingPivot           = 2.5
	ratingFactor          = 8.0
	popularityBonus       = 5.0
	popularityMinRatings  = 50
	categoryFitBonus      = 15.0
	slotHeuristicBonus    = 10.0
	quickBreakfastMinutes = 30
	lightSnackCalories    = 300.0
	seasonalBonus         = 5.0
)

// slotCategories lists the recipe categories that suit each meal slot.
var slotCategories = map[models.MealType][]models.MealCategory{
	models.MealBreakfast:      {models.CategoryBreakfast, models.CategorySnack},
	models.MealLunch:          {models.CategoryLunch, models.CategoryDinner},
	models.MealDinner:         {models.CategoryDinner, models.CategoryLunch},
	models.MealMorningSnack:   {models.CategorySnack, models.CategoryBreakfast},
	models.MealAfternoonSnack: {models.CategorySnack, models.CategoryDessert},
	models.MealEveningSnack:   {models.CategorySnack, models.CategoryDessert},
}

type season int

const (
	winter season = iota
	spring
	summer
	fall
)

var seasonTags = map[season][]string{
	spring: {"spring", "fresh", "light", "salad", "asparagus", "peas", "herbs"},
	summer: {"summer", "grill", "grilled", "bbq", "cold", "berries", "salad", "no-cook"},
	fall:   {"fall", "autumn", "pumpkin", "squash", "apple", "harvest", "roasted"},
	winter: {"winter", "stew", "soup", "roast", "comfort", "hearty", "casserole"},
}

func seasonOf(date time.Time) season {
	switch date.Month() {
	case time.March, time.April, time.May:
		return spring
	case time.June, time.July, time.August:
		return summer
	case time.September, time.October, time.November:
		return fall
	default:
		return winter
	}
}

// Score rates how well a recipe suits a user and slot, in [0, 100].
func Score(r *models.Recipe, prefs *models.DietaryPreference, mealType models.MealType, date time.Time) float64 {
	score := baseScore

	cuisine := normalize(r.Cuisine)
	for _, c := range prefs.PreferredCuisines {
		if normalize(c) == cuisine && cuisine != "" {
			score += preferredCuisineBonus
			break
		}
	}

	for _, ing := range r.Ingredients {
		name := normalize(ing.Name)
		for _, p := range prefs.PreferredIngredients {
			if p = normalize(p); p != "" && strings.Contains(name, p) {
				score += preferredIngredient
				break
			}
		}
	}

	if prefs.MaxCookingTime > 0 {
		ratio := float64(r.Minutes()) / float64(prefs.MaxCookingTime)
		if ratio > timePenaltyStart {
			score -= (ratio - timePenaltyStart) * timePenaltyFactor
		}
	}

	if prefs.PrioritizeProtein && r.Nutrition.Protein > proteinMinGrams {
		score += proteinBonus
	}
	if prefs.HighFiber && r.Nutrition.Fiber > fiberMinGrams {
		score += fiberBonus
	}

	score += (r.AverageRating - ratingPivot) * ratingFactor
	if r.RatingCount > popularityMinRatings {
		score += popularityBonus
	}

	for _, c := range slotCategories[mealType] {
		if r.Category == c {
			score += categoryFitBonus
			break
		}
	}
	switch {
	case mealType == models.MealBreakfast && r.Minutes() <= quickBreakfastMinutes:
		score += slotHeuristicBonus
	case mealType.IsSnack() && r.Nutrition.Calories <= lightSnackCalories:
		score += slotHeuristicBonus
	}

	if hasAnyTag(r.Tags, seasonTags[seasonOf(date)]) {
		score += seasonalBonus
	}

	return min(100, max(0, score))
}

func hasAnyTag(tags, wanted []string) bool {
	set := lowerSet(tags)
	for _, w := range wanted {
		if set[w] {
			return true
		}
	}
	return false
}
