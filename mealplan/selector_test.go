package mealplan

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"nutrition-engine/logger"
	"nutrition-engine/models"
)

func newTestSelector(recipes *memRecipes, rng Rand) *Selector {
	return NewSelector(recipes, DefaultGenerationConfig(), rng, logger.Nop())
}

func TestScore(t *testing.T) {
	dinner := &models.Recipe{
		Cuisine:       "Italian",
		Category:      models.CategoryDinner,
		TotalTime:     40,
		AverageRating: 3.5,
		RatingCount:   10,
		Nutrition:     nutritionOf(600, 30, 60, 20, 3),
		Ingredients: []models.RecipeIngredient{
			{Name: "Chicken breast"}, {Name: "fresh basil"}, {Name: "pasta"},
		},
	}
	prefs := &models.DietaryPreference{
		PreferredCuisines:    []string{"italian"},
		PreferredIngredients: []string{"chicken", "basil"},
		MaxCookingTime:       40,
		HighFiber:            true,
	}
	// 50 + 15 cuisine + 10 ingredients - 4 time + 8 rating + 15 category
	if got := Score(dinner, prefs, models.MealDinner, monday); math.Abs(got-94) > 1e-9 {
		t.Fatalf("dinner score=%v, want 94", got)
	}

	breakfast := &models.Recipe{
		Category:      models.CategoryBreakfast,
		TotalTime:     15,
		AverageRating: 3,
		Tags:          []string{"Berries"},
	}
	summer := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	// 50 + 4 rating + 15 category + 10 quick breakfast + 5 season
	if got := Score(breakfast, &models.DietaryPreference{}, models.MealBreakfast, summer); got != 84 {
		t.Fatalf("breakfast score=%v, want 84", got)
	}
	if got := Score(breakfast, &models.DietaryPreference{}, models.MealBreakfast, monday); got != 79 {
		t.Fatalf("out of season score=%v, want 79", got)
	}
}

func TestScoreClamped(t *testing.T) {
	slow := &models.Recipe{Category: models.CategoryDessert, TotalTime: 200, AverageRating: 1}
	if got := Score(slow, &models.DietaryPreference{MaxCookingTime: 20}, models.MealDinner, monday); got != 0 {
		t.Fatalf("score=%v, want 0", got)
	}
	best := &models.Recipe{
		Cuisine: "thai", Category: models.CategorySnack, TotalTime: 5, AverageRating: 5, RatingCount: 500,
		Nutrition: nutritionOf(150, 25, 10, 2, 8), Tags: []string{"fresh"},
	}
	prefs := &models.DietaryPreference{PreferredCuisines: []string{"thai"}, PrioritizeProtein: true, HighFiber: true}
	if got := Score(best, prefs, models.MealMorningSnack, monday); got != 100 {
		t.Fatalf("score=%v, want 100", got)
	}
}

func TestSeasonOf(t *testing.T) {
	cases := map[time.Month]season{
		time.January: winter, time.March: spring, time.May: spring, time.June: summer,
		time.August: summer, time.September: fall, time.November: fall, time.December: winter,
	}
	for month, want := range cases {
		if got := seasonOf(time.Date(2024, month, 15, 0, 0, 0, 0, time.UTC)); got != want {
			t.Errorf("%s: got %d, want %d", month, got, want)
		}
	}
}

func TestHardConstraints(t *testing.T) {
	cases := []struct {
		name        string
		prefs       models.DietaryPreference
		constraints models.PlanConstraints
		slot        models.MealType
		want        []string
	}{
		{"vegan restriction", models.DietaryPreference{Restrictions: []string{"Vegan"}}, models.PlanConstraints{}, models.MealDinner, []string{"d2"}},
		{"allergen", models.DietaryPreference{Allergens: []string{"soy", "FISH"}}, models.PlanConstraints{}, models.MealDinner, []string{"d2"}},
		{"max time from prefs", models.DietaryPreference{MaxCookingTime: 45}, models.PlanConstraints{}, models.MealDinner, []string{"d1", "d3"}},
		{"stricter plan time wins", models.DietaryPreference{MaxCookingTime: 60}, models.PlanConstraints{MaxCookingTime: 30}, models.MealDinner, []string{"d3"}},
		{"max difficulty", models.DietaryPreference{MaxDifficulty: models.DifficultyMedium}, models.PlanConstraints{}, models.MealDinner, []string{"d1", "d2"}},
		{"cuisine whitelist", models.DietaryPreference{}, models.PlanConstraints{Cuisines: []string{"Mediterranean"}}, models.MealLunch, []string{"l1", "l3"}},
		{"disliked cuisine", models.DietaryPreference{DislikedCuisines: []string{"mexican"}}, models.PlanConstraints{}, models.MealLunch, []string{"l1", "l3"}},
		{"disliked ingredient", models.DietaryPreference{DislikedIngredients: []string{"lentil"}}, models.PlanConstraints{}, models.MealLunch, []string{"l2", "l3"}},
		{"equipment", models.DietaryPreference{Equipment: []string{"Oven"}}, models.PlanConstraints{}, models.MealDinner, []string{"d1", "d2"}},
		{"rating floor", models.DietaryPreference{}, models.PlanConstraints{}, models.MealBreakfast, []string{"b1", "b2", "b3"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sel := newTestSelector(newMemRecipes(catalog()...), fixedRand{})
			prefs := c.prefs
			ranked, err := sel.RankCandidates(context.Background(), SlotRequest{
				Preferences: &prefs, MealType: c.slot, Date: monday, Constraints: c.constraints,
			})
			if err != nil {
				t.Fatalf("RankCandidates: %v", err)
			}
			got := map[string]bool{}
			for _, r := range ranked {
				got[r.Recipe.ID] = true
			}
			if len(got) != len(c.want) {
				t.Fatalf("got %v, want %v", got, c.want)
			}
			for _, id := range c.want {
				if !got[id] {
					t.Fatalf("missing %s in %v", id, got)
				}
			}
		})
	}
}

func TestBudgetConstraint(t *testing.T) {
	recipes := catalog()
	recipes[6].CostPerServing = 9.5
	recipes[7].CostPerServing = 2.5
	sel := newTestSelector(newMemRecipes(recipes...), fixedRand{})
	ranked, err := sel.RankCandidates(context.Background(), SlotRequest{
		Preferences: &models.DietaryPreference{BudgetPerServing: 5}, MealType: models.MealDinner, Date: monday,
	})
	if err != nil {
		t.Fatalf("RankCandidates: %v", err)
	}
	for _, r := range ranked {
		if r.Recipe.ID == "d1" {
			t.Fatal("over-budget recipe kept")
		}
	}
	if len(ranked) != 2 {
		t.Fatalf("got %d candidates, want 2", len(ranked))
	}
}

func TestRankCandidatesOrdered(t *testing.T) {
	sel := newTestSelector(newMemRecipes(catalog()...), fixedRand{})
	ranked, err := sel.RankCandidates(context.Background(), SlotRequest{MealType: models.MealLunch, Date: monday})
	if err != nil {
		t.Fatalf("RankCandidates: %v", err)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Fatalf("not sorted: %v before %v", ranked[i-1], ranked[i])
		}
	}
}

func TestRankCandidatesPlanCookingLimit(t *testing.T) {
	sel := newTestSelector(newMemRecipes(catalog()...), fixedRand{})
	ranked, err := sel.RankCandidates(context.Background(), SlotRequest{
		Preferences: &models.DietaryPreference{MaxCookingTime: 60},
		MealType:    models.MealLunch,
		Date:        monday,
		Constraints: models.PlanConstraints{MaxCookingTime: 30},
	})
	if err != nil {
		t.Fatalf("RankCandidates: %v", err)
	}
	var found bool
	for _, sr := range ranked {
		if sr.Recipe.ID != "l3" {
			continue
		}
		found = true
		want := Score(&sr.Recipe, &models.DietaryPreference{MaxCookingTime: 30}, models.MealLunch, monday)
		loose := Score(&sr.Recipe, &models.DietaryPreference{MaxCookingTime: 60}, models.MealLunch, monday)
		if sr.Score != want {
			t.Fatalf("l3 score = %v, want %v under the 30 minute plan limit", sr.Score, want)
		}
		if want >= loose {
			t.Fatalf("25 minute recipe not penalized at 30 minutes: %v >= %v", want, loose)
		}
	}
	if !found {
		t.Fatal("l3 missing from ranked lunch candidates")
	}
}

func TestRankCandidatesDerivesIngredientNutrition(t *testing.T) {
	bowl := models.Recipe{
		ID: "l9", Name: "Rice bowl", Category: models.CategoryLunch, Difficulty: models.DifficultyEasy,
		TotalTime: 15, Servings: 2, AverageRating: 4.0,
		Ingredients: []models.RecipeIngredient{
			{Name: "rice", Amount: 300, Unit: "g", Nutrition: &models.NutritionProfile{Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3}},
			{Name: "tofu", Amount: 200, Unit: "g", Nutrition: &models.NutritionProfile{Calories: 76, Protein: 8, Carbs: 1.9, Fat: 4.8}},
		},
	}
	sel := newTestSelector(newMemRecipes(bowl), fixedRand{})
	ranked, err := sel.RankCandidates(context.Background(), SlotRequest{MealType: models.MealLunch, Date: monday})
	if err != nil {
		t.Fatalf("RankCandidates: %v", err)
	}
	if len(ranked) != 1 {
		t.Fatalf("got %d candidates", len(ranked))
	}
	// (390 + 152) kcal over 2 servings.
	if got := ranked[0].Recipe.Nutrition; got.Calories != 271 || got.Protein != 12.05 {
		t.Fatalf("derived nutrition = %+v", got)
	}
}

func TestSelectForSlotPicksWithinTopFive(t *testing.T) {
	var recipes []models.Recipe
	for i := 0; i < 8; i++ {
		recipes = append(recipes, models.Recipe{
			ID: fmt.Sprintf("r%d", i), Category: models.CategoryDinner, TotalTime: 30,
			AverageRating: 3 + float64(i)*0.25,
		})
	}
	sel := newTestSelector(newMemRecipes(recipes...), fixedRand{n: 99})
	got, err := sel.SelectForSlot(context.Background(), SlotRequest{MealType: models.MealDinner, Date: monday})
	if err != nil {
		t.Fatalf("SelectForSlot: %v", err)
	}
	// best is r7; the fifth best is r3
	if got.ID != "r3" {
		t.Fatalf("picked %s, want r3", got.ID)
	}

	sel = newTestSelector(newMemRecipes(recipes...), fixedRand{n: 0})
	if got, _ := sel.SelectForSlot(context.Background(), SlotRequest{MealType: models.MealDinner, Date: monday}); got.ID != "r7" {
		t.Fatalf("picked %s, want r7", got.ID)
	}
}

func TestSelectForSlotNeverReturnsExcludedAllergen(t *testing.T) {
	allergens := []string{"peanuts", "dairy", "gluten", "soy", "eggs"}
	for seed := uint64(1); seed <= 200; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed))
		var pool []models.Recipe
		size := 1 + rng.IntN(8)
		for i := 0; i < size; i++ {
			r := models.Recipe{ID: fmt.Sprintf("r%d", i), Category: models.CategoryLunch, AverageRating: 4}
			for _, a := range allergens {
				if rng.IntN(3) == 0 {
					r.Ingredients = append(r.Ingredients, models.RecipeIngredient{Name: "x", Allergens: []string{a}})
				}
			}
			pool = append(pool, r)
		}
		var excluded []string
		for _, a := range allergens {
			if rng.IntN(2) == 0 {
				excluded = append(excluded, a)
			}
		}

		sel := newTestSelector(newMemRecipes(pool...), rng)
		got, err := sel.SelectForSlot(context.Background(), SlotRequest{
			Preferences: &models.DietaryPreference{Allergens: excluded}, MealType: models.MealLunch, Date: monday,
		})
		if err != nil {
			if !errors.Is(err, models.ErrInsufficientData) {
				t.Fatalf("seed %d: unexpected error %v", seed, err)
			}
			continue
		}
		for _, a := range got.AllAllergens() {
			for _, ex := range excluded {
				if a == ex {
					t.Fatalf("seed %d: picked %s containing excluded %s", seed, got.ID, a)
				}
			}
		}
	}
}

func TestSelectForSlotVarietyFallback(t *testing.T) {
	only := models.Recipe{ID: "solo", Category: models.CategoryDinner, AverageRating: 4}
	sel := newTestSelector(newMemRecipes(only), fixedRand{})
	got, err := sel.SelectForSlot(context.Background(), SlotRequest{
		MealType:     models.MealDinner,
		Date:         monday.AddDate(0, 0, 1),
		Constraints:  models.PlanConstraints{AvoidRepetition: true, MaxRecipeReuseDays: 3},
		RecentlyUsed: map[string][]time.Time{"solo": {monday}},
	})
	if err != nil || got == nil || got.ID != "solo" {
		t.Fatalf("expected fallback to solo, got %v %v", got, err)
	}
}

func TestSelectForSlotVarietyFilter(t *testing.T) {
	sel := newTestSelector(newMemRecipes(catalog()...), fixedRand{})
	used := map[string][]time.Time{"b1": {monday}, "b2": {monday.AddDate(0, 0, 1)}}
	got, err := sel.SelectForSlot(context.Background(), SlotRequest{
		MealType:     models.MealBreakfast,
		Date:         monday.AddDate(0, 0, 2),
		Constraints:  models.PlanConstraints{AvoidRepetition: true, MaxRecipeReuseDays: 3},
		RecentlyUsed: used,
	})
	if err != nil {
		t.Fatalf("SelectForSlot: %v", err)
	}
	if got.ID != "b3" {
		t.Fatalf("picked %s, want b3", got.ID)
	}
}

func TestSelectForSlotEmptyPool(t *testing.T) {
	sel := newTestSelector(newMemRecipes(catalog()...), fixedRand{})
	_, err := sel.SelectForSlot(context.Background(), SlotRequest{
		Preferences: &models.DietaryPreference{Allergens: []string{"peanuts", "sesame"}},
		MealType:    models.MealEveningSnack,
		Date:        monday,
	})
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestSelectorMemoizesPools(t *testing.T) {
	recipes := newMemRecipes(catalog()...)
	sel := newTestSelector(recipes, fixedRand{})
	for i := 0; i < 5; i++ {
		req := SlotRequest{MealType: models.MealAfternoonSnack, Date: monday.AddDate(0, 0, i)}
		if _, err := sel.SelectForSlot(context.Background(), req); err != nil {
			t.Fatalf("SelectForSlot: %v", err)
		}
		req.MealType = models.MealMorningSnack
		if _, err := sel.SelectForSlot(context.Background(), req); err != nil {
			t.Fatalf("SelectForSlot: %v", err)
		}
	}
	if recipes.finds[models.CategorySnack] != 1 {
		t.Fatalf("snack pool fetched %d times, want 1", recipes.finds[models.CategorySnack])
	}
}

func TestSelectorRepositoryFailure(t *testing.T) {
	recipes := newMemRecipes()
	recipes.failWith = errors.New("catalog offline")
	sel := newTestSelector(recipes, fixedRand{})
	_, err := sel.SelectForSlot(context.Background(), SlotRequest{MealType: models.MealLunch, Date: monday})
	if !models.IsPersistence(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}
