package nutrition

import (
	"testing"

	"nutrition-engine/models"
)

func TestCompareNutrition(t *testing.T) {
	a := models.NutritionProfile{Calories: 400, Protein: 20, Carbs: 50, Sodium: 300}
	b := models.NutritionProfile{Calories: 300, Protein: 25, Carbs: 60, Sodium: 300}

	got := CompareNutrition(a, b, []Nutrient{Calories, Protein, Carbs, Sodium})
	want := []struct {
		delta  float64
		pct    float64
		better Choice
	}{
		{-100, -25, ChoiceB},
		{5, 25, ChoiceB},
		{10, 20, ChoiceNone},
		{0, 0, ChoiceEqual},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d comparisons", len(got))
	}
	for i, w := range want {
		c := got[i]
		if c.Delta != w.delta || c.PercentDelta != w.pct || c.Better != w.better {
			t.Errorf("%s: got %+v, want delta=%v pct=%v better=%q", c.Nutrient, c, w.delta, w.pct, w.better)
		}
	}
}

func TestCompareNutritionZeroBase(t *testing.T) {
	got := CompareNutrition(models.NutritionProfile{}, models.NutritionProfile{Fiber: 4}, []Nutrient{Fiber})
	if got[0].PercentDelta != 0 || got[0].Better != ChoiceB {
		t.Fatalf("unexpected %+v", got[0])
	}
}

func TestParseNutrient(t *testing.T) {
	n, err := ParseNutrient(" Vitamin_C ")
	if err != nil || n != VitaminC {
		t.Fatalf("ParseNutrient: %v %v", n, err)
	}
	if _, err := ParseNutrient("unobtainium"); err == nil {
		t.Fatal("expected error")
	}
}
