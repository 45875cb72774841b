package mealplan

import (
	"context"
	"errors"
	"testing"

	"nutrition-engine/models"
	"nutrition-engine/nutrition"
)

func TestGetAlternatives(t *testing.T) {
	f := newFixture(NewRand(5))
	plan := generateWeek(t, f, 2)
	var dinner models.MealPlanMeal
	for _, m := range plan.Meals {
		if m.MealType == models.MealDinner {
			dinner = m
			break
		}
	}

	alts, err := f.gen.GetAlternatives(context.Background(), dinner.ID, 2)
	if err != nil {
		t.Fatalf("GetAlternatives: %v", err)
	}
	if len(alts) != 2 {
		t.Fatalf("got %d alternatives, want 2", len(alts))
	}
	prefs := &models.DietaryPreference{}
	prev := 101.0
	for _, r := range alts {
		if r.ID == dinner.RecipeID {
			t.Fatal("current recipe offered as an alternative")
		}
		if r.Category != models.CategoryDinner {
			t.Fatalf("alternative %s is a %s recipe", r.ID, r.Category)
		}
		s := Score(&r.Recipe, prefs, models.MealDinner, dinner.Date)
		if s != r.Score {
			t.Fatalf("alternative %s score = %v, want %v", r.ID, r.Score, s)
		}
		if s > prev {
			t.Fatal("alternatives not ordered by score")
		}
		prev = s
	}

	again, err := f.gen.GetAlternatives(context.Background(), dinner.ID, 2)
	if err != nil {
		t.Fatalf("GetAlternatives: %v", err)
	}
	for i := range alts {
		if alts[i].ID != again[i].ID {
			t.Fatal("alternatives must be deterministic")
		}
	}
}

func TestGenerateAlternativesRespectsPreferences(t *testing.T) {
	f := newFixture(fixedRand{})
	meal := models.MealPlanMeal{RecipeID: "d2", MealType: models.MealDinner, Date: monday}
	alts, err := f.gen.GenerateAlternatives(context.Background(), meal,
		&models.DietaryPreference{Allergens: []string{"fish"}}, models.PlanConstraints{}, 10)
	if err != nil {
		t.Fatalf("GenerateAlternatives: %v", err)
	}
	if len(alts) != 1 || alts[0].ID != "d3" {
		t.Fatalf("got %v, want only d3", alts)
	}
}

func TestGetAlternativesNotFound(t *testing.T) {
	f := newFixture(fixedRand{})
	if _, err := f.gen.GetAlternatives(context.Background(), "missing", 3); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.gen.GetAlternatives(context.Background(), "", 3); !models.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAlternativesCompareNutrition(t *testing.T) {
	f := newFixture(fixedRand{})
	meal := models.MealPlanMeal{
		RecipeID:      "d2",
		MealType:      models.MealDinner,
		Date:          monday,
		Servings:      1.5,
		PlannedMacros: models.Macros{Calories: 960, Protein: 36, Carbs: 120, Fat: 30, Fiber: 22.5},
	}
	alts, err := f.gen.GenerateAlternatives(context.Background(), meal,
		&models.DietaryPreference{Allergens: []string{"fish"}}, models.PlanConstraints{}, 1)
	if err != nil {
		t.Fatalf("GenerateAlternatives: %v", err)
	}
	if len(alts) != 1 || alts[0].ID != "d3" {
		t.Fatalf("got %v, want d3", alts)
	}

	want := map[nutrition.Nutrient]struct {
		a, b   float64
		better nutrition.Choice
	}{
		nutrition.Calories: {960, 1080, nutrition.ChoiceA},
		nutrition.Protein:  {36, 67.5, nutrition.ChoiceB},
		nutrition.Carbs:    {120, 75, ""},
		nutrition.Fat:      {30, 45, nutrition.ChoiceA},
		nutrition.Fiber:    {22.5, 6, nutrition.ChoiceA},
	}
	cmp := alts[0].Comparison
	if len(cmp) != len(want) {
		t.Fatalf("got %d comparisons, want %d", len(cmp), len(want))
	}
	for _, c := range cmp {
		w, ok := want[c.Nutrient]
		if !ok {
			t.Fatalf("unexpected nutrient %s", c.Nutrient)
		}
		if c.A != w.a || c.B != w.b {
			t.Errorf("%s: a=%v b=%v, want a=%v b=%v", c.Nutrient, c.A, c.B, w.a, w.b)
		}
		if w.better != "" && c.Better != w.better {
			t.Errorf("%s: better = %q, want %q", c.Nutrient, c.Better, w.better)
		}
	}
}
