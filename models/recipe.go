package models

import (
	"fmt"
	"strings"
)

// MealCategory is the catalog classification of a recipe.
type MealCategory int

const (
	CategoryUnknown MealCategory = iota
	CategoryBreakfast
	CategoryLunch
	CategoryDinner
	CategorySnack
	CategoryDessert
)

func (c MealCategory) String() string {
	switch c {
	case CategoryBreakfast:
		return "breakfast"
	case CategoryLunch:
		return "lunch"
	case CategoryDinner:
		return "dinner"
	case CategorySnack:
		return "snack"
	case CategoryDessert:
		return "dessert"
	default:
		return "unknown"
	}
}

func ParseMealCategory(s string) (MealCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "breakfast":
		return CategoryBreakfast, nil
	case "lunch":
		return CategoryLunch, nil
	case "dinner":
		return CategoryDinner, nil
	case "snack":
		return CategorySnack, nil
	case "dessert":
		return CategoryDessert, nil
	}
	return CategoryUnknown, fmt.Errorf("unknown meal category %q", s)
}

func (c MealCategory) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *MealCategory) UnmarshalText(b []byte) error {
	if s := string(b); s == "" || s == "unknown" {
		*c = CategoryUnknown
		return nil
	}
	v, err := ParseMealCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Difficulty is ordered: a higher value is harder.
type Difficulty int

const (
	DifficultyUnset Difficulty = iota
	DifficultyEasy
	DifficultyMedium
	DifficultyHard
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	default:
		return ""
	}
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DifficultyUnset, nil
	case "easy":
		return DifficultyEasy, nil
	case "medium":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	}
	return DifficultyUnset, fmt.Errorf("unknown difficulty %q", s)
}

func (d Difficulty) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Difficulty) UnmarshalText(b []byte) error {
	v, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// NutritionProfile holds nutrient amounts. Macros are grams, sodium and
// cholesterol milligrams, vitamins and minerals in their label units.
type NutritionProfile struct {
	Label        string  `json:"label,omitempty"`
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fat          float64 `json:"fat"`
	Fiber        float64 `json:"fiber"`
	Sugar        float64 `json:"sugar"`
	Sodium       float64 `json:"sodium"`
	SaturatedFat float64 `json:"saturated_fat"`
	Cholesterol  float64 `json:"cholesterol"`
	VitaminA     float64 `json:"vitamin_a"`
	VitaminC     float64 `json:"vitamin_c"`
	Calcium      float64 `json:"calcium"`
	Iron         float64 `json:"iron"`
	Potassium    float64 `json:"potassium"`
}

// RecipeIngredient is one line of a recipe's ingredient list.
type RecipeIngredient struct {
	Name      string   `json:"name"`
	Amount    float64  `json:"amount"`
	Unit      string   `json:"unit"`
	Allergens []string `json:"allergens,omitempty"`
	// Nutrition is per 100 g of the ingredient, when the catalog knows it.
	Nutrition *NutritionProfile `json:"nutrition_per_100g,omitempty"`
}

// Recipe is read-only catalog data. Nutrition is per serving.
type Recipe struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	Cuisine             string             `json:"cuisine"`
	Category            MealCategory       `json:"meal_category"`
	Difficulty          Difficulty         `json:"difficulty"`
	PrepTime            int                `json:"prep_time"`
	CookTime            int                `json:"cook_time"`
	TotalTime           int                `json:"total_time"`
	Servings            int                `json:"servings"`
	Nutrition           NutritionProfile   `json:"nutrition"`
	Tags                []string           `json:"tags,omitempty"`
	DietaryTags         []string           `json:"dietary_tags,omitempty"`
	Allergens           []string           `json:"allergens,omitempty"`
	Equipment           []string           `json:"equipment,omitempty"`
	Ingredients         []RecipeIngredient `json:"ingredients,omitempty"`
	AverageRating       float64            `json:"average_rating"`
	RatingCount         int                `json:"rating_count"`
	CostPerServing      float64            `json:"cost_per_serving,omitempty"`
	StorageInstructions string             `json:"storage_instructions,omitempty"`
}

// Minutes returns TotalTime, or prep plus cook when TotalTime is not recorded.
func (r *Recipe) Minutes() int {
	if r.TotalTime > 0 {
		return r.TotalTime
	}
	return r.PrepTime + r.CookTime
}

// AllAllergens merges recipe level and ingredient level allergen tags, lowercased.
func (r *Recipe) AllAllergens() []string {
	seen := map[string]bool{}
	var out []string
	add := func(a string) {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" && !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	for _, a := range r.Allergens {
		add(a)
	}
	for _, ing := range r.Ingredients {
		for _, a := range ing.Allergens {
			add(a)
		}
	}
	return out
}

// RecipeCriteria narrows a catalog query. Zero values mean "no filter".
type RecipeCriteria struct {
	Category      MealCategory
	MaxTotalTime  int
	MaxDifficulty Difficulty
	MinRating     float64
	Cuisines      []string
}
