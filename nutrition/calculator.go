// Package nutrition converts ingredient amounts to grams and scales nutrition
// profiles. Lookup misses fall back to documented defaults and are logged,
// never returned as errors.
package nutrition

import (
	"math"

	"nutrition-engine/logger"
	"nutrition-engine/models"
)

// Energy factors in kcal per gram.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

type Calculator struct {
	log *logger.Logger
}

func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{log: log}
}

// ConvertToGrams resolves amount of unit into grams. hint is the ingredient
// name and may be empty. Unknown units pass the amount through as grams.
func (c *Calculator) ConvertToGrams(amount float64, unit, hint string) float64 {
	u := normalizeUnit(unit)
	if u == "" {
		return amount
	}

	if f, ok := gramsPerUnit[u]; ok {
		return amount * f
	}

	if ml, ok := mlPerUnit[u]; ok {
		density, found := densities.lookup(hint)
		if !found {
			if hint != "" {
				c.log.Debug("no density for %q, assuming water", hint)
			}
			density = waterDensity
		}
		return amount * ml * density
	}

	if countUnits[u] {
		grams, found := servingGrams.lookup(hint)
		if !found {
			c.log.Warn("no serving size for %q, assuming %.0f g", hint, defaultServingGrams)
			grams = defaultServingGrams
		}
		return amount * grams
	}

	c.log.Warn("%v: %q, treating amount as grams", models.ErrUnrecognizedUnit, unit)
	return amount
}

// CalculateNutrition scales a per-100 g profile to the given amount.
func (c *Calculator) CalculateNutrition(per100g models.NutritionProfile, amount float64, unit, hint string) models.NutritionProfile {
	grams := c.ConvertToGrams(amount, unit, hint)
	return ScaleProfile(per100g, grams/100)
}

// ScaleProfile multiplies every nutrient by factor, rounded to 2 places.
func ScaleProfile(p models.NutritionProfile, factor float64) models.NutritionProfile {
	s := func(v float64) float64 { return round2(v * factor) }
	return models.NutritionProfile{
		Label:        p.Label,
		Calories:     s(p.Calories),
		Protein:      s(p.Protein),
		Carbs:        s(p.Carbs),
		Fat:          s(p.Fat),
		Fiber:        s(p.Fiber),
		Sugar:        s(p.Sugar),
		Sodium:       s(p.Sodium),
		SaturatedFat: s(p.SaturatedFat),
		Cholesterol:  s(p.Cholesterol),
		VitaminA:     s(p.VitaminA),
		VitaminC:     s(p.VitaminC),
		Calcium:      s(p.Calcium),
		Iron:         s(p.Iron),
		Potassium:    s(p.Potassium),
	}
}

// PerServing divides a whole-recipe profile by servings. Non-positive
// servings return the profile unchanged.
func PerServing(total models.NutritionProfile, servings float64) models.NutritionProfile {
	if servings <= 0 {
		return total
	}
	return ScaleProfile(total, 1/servings)
}

// SumProfiles adds profiles nutrient by nutrient. The label is dropped.
func SumProfiles(profiles ...models.NutritionProfile) models.NutritionProfile {
	var t models.NutritionProfile
	for _, p := range profiles {
		t.Calories += p.Calories
		t.Protein += p.Protein
		t.Carbs += p.Carbs
		t.Fat += p.Fat
		t.Fiber += p.Fiber
		t.Sugar += p.Sugar
		t.Sodium += p.Sodium
		t.SaturatedFat += p.SaturatedFat
		t.Cholesterol += p.Cholesterol
		t.VitaminA += p.VitaminA
		t.VitaminC += p.VitaminC
		t.Calcium += p.Calcium
		t.Iron += p.Iron
		t.Potassium += p.Potassium
	}
	return ScaleProfile(t, 1)
}

// MacroSplit is each macro's share of total calories, in percent.
type MacroSplit struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// MacroPercentages uses 4/4/9 kcal per gram against the profile's calories.
// A profile with no calories yields all zeros.
func MacroPercentages(p models.NutritionProfile) MacroSplit {
	if p.Calories <= 0 {
		return MacroSplit{}
	}
	pct := func(grams, factor float64) float64 { return round2(grams * factor / p.Calories * 100) }
	return MacroSplit{
		Protein: pct(p.Protein, kcalPerGramProtein),
		Carbs:   pct(p.Carbs, kcalPerGramCarbs),
		Fat:     pct(p.Fat, kcalPerGramFat),
	}
}

// GramsForCalories converts a calorie share into grams of a macro.
func GramsForCalories(kcal float64, n Nutrient) float64 {
	switch n {
	case Protein:
		return kcal / kcalPerGramProtein
	case Carbs:
		return kcal / kcalPerGramCarbs
	case Fat:
		return kcal / kcalPerGramFat
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
