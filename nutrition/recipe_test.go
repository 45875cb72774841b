package nutrition

import (
	"testing"

	"nutrition-engine/logger"
	"nutrition-engine/models"
)

func pancakes() models.Recipe {
	return models.Recipe{
		ID:       "pancakes",
		Name:     "Pancakes",
		Servings: 2,
		Ingredients: []models.RecipeIngredient{
			{Name: "flour", Amount: 1, Unit: "cup",
				Nutrition: &models.NutritionProfile{Calories: 364, Protein: 10, Carbs: 76, Fat: 1}},
			{Name: "large egg", Amount: 2, Unit: "pieces",
				Nutrition: &models.NutritionProfile{Calories: 143, Protein: 12.6, Carbs: 0.7, Fat: 9.5}},
			{Name: "salt", Amount: 1, Unit: "tsp"},
		},
	}
}

func TestRecipeProfile(t *testing.T) {
	calc := NewCalculator(logger.Nop())
	r := pancakes()
	got, ok := calc.RecipeProfile(&r)
	if !ok {
		t.Fatal("expected a derived profile")
	}
	// flour: 136.8 g, eggs: 100 g, both halved per serving.
	flour := ScaleProfile(*r.Ingredients[0].Nutrition, 1.368)
	eggs := ScaleProfile(*r.Ingredients[1].Nutrition, 1)
	want := PerServing(SumProfiles(flour, eggs), 2)
	for _, n := range []Nutrient{Calories, Protein, Carbs, Fat} {
		if !approx(n.Of(got), n.Of(want)) {
			t.Errorf("%s = %v, want %v", n, n.Of(got), n.Of(want))
		}
	}
	if got.Label != "Pancakes" {
		t.Errorf("label = %q", got.Label)
	}
	if got.Calories < 320 || got.Calories > 321 {
		t.Errorf("calories = %v, want about 320.5", got.Calories)
	}
}

func TestRecipeProfileWithoutIngredientData(t *testing.T) {
	calc := NewCalculator(logger.Nop())
	r := models.Recipe{Servings: 1, Ingredients: []models.RecipeIngredient{{Name: "salt", Amount: 1, Unit: "g"}}}
	if _, ok := calc.RecipeProfile(&r); ok {
		t.Fatal("no ingredient carries nutrition, expected ok=false")
	}
}

func TestFillRecipe(t *testing.T) {
	calc := NewCalculator(logger.Nop())

	r := pancakes()
	if !calc.FillRecipe(&r) {
		t.Fatal("empty catalog profile should be derived")
	}
	if r.Nutrition.Calories <= 0 {
		t.Fatalf("calories not filled: %+v", r.Nutrition)
	}

	listed := pancakes()
	listed.Nutrition = models.NutritionProfile{Calories: 400, Protein: 20}
	if calc.FillRecipe(&listed) {
		t.Fatal("catalog macros must win over ingredient data")
	}
	if listed.Nutrition.Calories != 400 {
		t.Fatalf("catalog profile overwritten: %+v", listed.Nutrition)
	}
}
