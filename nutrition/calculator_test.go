package nutrition

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"nutrition-engine/logger"
	"nutrition-engine/models"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestConvertToGrams(t *testing.T) {
	calc := NewCalculator(logger.Nop())
	cases := []struct {
		name   string
		amount float64
		unit   string
		hint   string
		want   float64
	}{
		{"grams", 150, "g", "", 150},
		{"kilograms", 1.5, "kg", "", 1500},
		{"ounces", 2, "oz", "", 56.699},
		{"cup of flour", 1, "cup", "flour", 136.8},
		{"cup without hint", 1, "cup", "", 240},
		{"cup of unknown", 1, "cup", "mystery powder", 240},
		{"brown sugar beats sugar", 1, "cup", "packed brown sugar", 223.2},
		{"tablespoons of oil", 2, "tbsp", "olive oil", 27.6},
		{"eggs", 2, "pieces", "large egg", 100},
		{"unknown piece", 1, "piece", "dragonfruit", 100},
		{"unit with dot", 1, "Tbsp.", "", 15},
		{"unknown unit", 7, "handful", "spinach", 7},
		{"empty unit", 42, "", "", 42},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := calc.ConvertToGrams(c.amount, c.unit, c.hint)
			if !approx(got, c.want) {
				t.Fatalf("ConvertToGrams(%v, %q, %q) = %v, want %v", c.amount, c.unit, c.hint, got, c.want)
			}
		})
	}
}

func TestConvertToGramsLogsUnknownUnit(t *testing.T) {
	var buf bytes.Buffer
	calc := NewCalculator(logger.New(logger.LevelWarn, &buf))
	calc.ConvertToGrams(1, "smidgen", "")
	if !strings.Contains(buf.String(), "WARNING:") || !strings.Contains(buf.String(), "smidgen") {
		t.Fatalf("expected a warning, got %q", buf.String())
	}
}

var oats = models.NutritionProfile{
	Label:    "oats",
	Calories: 389,
	Protein:  16.89,
	Carbs:    66.27,
	Fat:      6.9,
	Fiber:    10.6,
	Sodium:   2,
	Iron:     4.72,
}

func TestCalculateNutritionRoundTrip(t *testing.T) {
	calc := NewCalculator(logger.Nop())
	if got := calc.CalculateNutrition(oats, 100, "g", "oats"); got != oats {
		t.Fatalf("100 g should return the input profile, got %+v", got)
	}
}

func TestCalculateNutritionScales(t *testing.T) {
	calc := NewCalculator(logger.Nop())
	got := calc.CalculateNutrition(oats, 50, "g", "")
	if got.Calories != 194.5 || got.Protein != 8.45 || got.Label != "oats" {
		t.Fatalf("unexpected half portion %+v", got)
	}
}

func TestMacroPercentages(t *testing.T) {
	split := MacroPercentages(models.NutritionProfile{Calories: 500, Protein: 25, Carbs: 50, Fat: 20})
	if split.Protein != 20 || split.Carbs != 40 || split.Fat != 36 {
		t.Fatalf("unexpected split %+v", split)
	}
	if zero := MacroPercentages(models.NutritionProfile{Protein: 10, Fat: 3}); zero != (MacroSplit{}) {
		t.Fatalf("zero calories must yield zeros, got %+v", zero)
	}
}

func TestPerServingAndSum(t *testing.T) {
	total := SumProfiles(
		models.NutritionProfile{Calories: 300, Protein: 10},
		models.NutritionProfile{Calories: 500, Protein: 30},
	)
	if total.Calories != 800 || total.Protein != 40 {
		t.Fatalf("unexpected sum %+v", total)
	}
	each := PerServing(total, 4)
	if each.Calories != 200 || each.Protein != 10 {
		t.Fatalf("unexpected per-serving %+v", each)
	}
	if PerServing(total, 0) != total {
		t.Fatal("zero servings should return the profile unchanged")
	}
}

func TestGramsForCalories(t *testing.T) {
	if g := GramsForCalories(400, Protein); g != 100 {
		t.Fatalf("protein grams=%v", g)
	}
	if g := GramsForCalories(600, Fat); !approx(g, 66.666667) {
		t.Fatalf("fat grams=%v", g)
	}
}
