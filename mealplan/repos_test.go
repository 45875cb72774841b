package mealplan

import (
	"context"
	"sync"
	"time"

	"nutrition-engine/models"
)

type memRecipes struct {
	mu       sync.Mutex
	recipes  []models.Recipe
	finds    map[models.MealCategory]int
	failWith error
}

func newMemRecipes(recipes ...models.Recipe) *memRecipes {
	return &memRecipes{recipes: recipes, finds: map[models.MealCategory]int{}}
}

func (m *memRecipes) FindCandidates(_ context.Context, c models.RecipeCriteria) ([]models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds[c.Category]++
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.Recipe
	for _, r := range m.recipes {
		if c.Category != models.CategoryUnknown && r.Category != c.Category {
			continue
		}
		if r.AverageRating < c.MinRating {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memRecipes) Get(_ context.Context, id string) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.recipes {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

type memPrefs map[string]*models.DietaryPreference

func (m memPrefs) Get(_ context.Context, userID string) (*models.DietaryPreference, error) {
	return m[userID], nil
}

type memPlans struct {
	mu          sync.Mutex
	plans       map[string]models.MealPlan
	meals       map[string]models.MealPlanMeal
	creates     int
	replaces    int
	failCreate  error
	failReplace error
}

func newMemPlans() *memPlans {
	return &memPlans{plans: map[string]models.MealPlan{}, meals: map[string]models.MealPlanMeal{}}
}

func (m *memPlans) Create(_ context.Context, plan *models.MealPlan, meals []models.MealPlanMeal) (*models.MealPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return nil, m.failCreate
	}
	m.creates++
	m.store(plan, meals)
	cp := *plan
	return &cp, nil
}

func (m *memPlans) store(plan *models.MealPlan, meals []models.MealPlanMeal) {
	cp := *plan
	cp.Meals = nil
	m.plans[plan.ID] = cp
	for id, meal := range m.meals {
		if meal.MealPlanID == plan.ID {
			delete(m.meals, id)
		}
	}
	for _, meal := range meals {
		m.meals[meal.ID] = meal
	}
}

func (m *memPlans) Get(_ context.Context, planID string) (*models.MealPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[planID]
	if !ok {
		return nil, models.ErrNotFound
	}
	for _, meal := range m.meals {
		if meal.MealPlanID == planID {
			p.Meals = append(p.Meals, meal)
		}
	}
	sortMeals(p.Meals)
	return &p, nil
}

func (m *memPlans) Replace(_ context.Context, plan *models.MealPlan, meals []models.MealPlanMeal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReplace != nil {
		return m.failReplace
	}
	if _, ok := m.plans[plan.ID]; !ok {
		return models.ErrNotFound
	}
	m.replaces++
	m.store(plan, meals)
	return nil
}

func (m *memPlans) GetMeal(_ context.Context, mealID string) (*models.MealPlanMeal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meal, ok := m.meals[mealID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &meal, nil
}

func (m *memPlans) UpdateMeal(_ context.Context, meal *models.MealPlanMeal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.meals[meal.ID]; !ok {
		return models.ErrNotFound
	}
	m.meals[meal.ID] = *meal
	return nil
}

func sortMeals(meals []models.MealPlanMeal) {
	for i := 1; i < len(meals); i++ {
		for j := i; j > 0 && mealLess(meals[j], meals[j-1]); j-- {
			meals[j], meals[j-1] = meals[j-1], meals[j]
		}
	}
}

func mealLess(a, b models.MealPlanMeal) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.MealType < b.MealType
}

// fixedRand always picks index n, or the last index when n is out of range.
type fixedRand struct{ n int }

func (f fixedRand) IntN(limit int) int {
	if f.n >= limit {
		return limit - 1
	}
	return f.n
}

var monday = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

func nutritionOf(cal, protein, carbs, fat, fiber float64) models.NutritionProfile {
	return models.NutritionProfile{Calories: cal, Protein: protein, Carbs: carbs, Fat: fat, Fiber: fiber}
}

func catalog() []models.Recipe {
	return []models.Recipe{
		{ID: "b1", Name: "Overnight oats", Cuisine: "american", Category: models.CategoryBreakfast, Difficulty: models.DifficultyEasy,
			TotalTime: 10, Servings: 1, Nutrition: nutritionOf(420, 18, 60, 12, 8), AverageRating: 4.5, RatingCount: 80,
			DietaryTags: []string{"vegetarian"}, Allergens: []string{"dairy"}, Tags: []string{"berries"}},
		{ID: "b2", Name: "Veggie omelette", Cuisine: "french", Category: models.CategoryBreakfast, Difficulty: models.DifficultyEasy,
			TotalTime: 15, Servings: 1, Nutrition: nutritionOf(380, 24, 10, 26, 3), AverageRating: 4.2, RatingCount: 40,
			DietaryTags: []string{"vegetarian", "gluten_free"}, Allergens: []string{"eggs"}},
		{ID: "b3", Name: "Tofu scramble", Cuisine: "american", Category: models.CategoryBreakfast, Difficulty: models.DifficultyMedium,
			TotalTime: 20, Servings: 2, Nutrition: nutritionOf(350, 22, 18, 20, 5), AverageRating: 4.0, RatingCount: 12,
			DietaryTags: []string{"vegan", "vegetarian"}, Allergens: []string{"soy"}},
		{ID: "l1", Name: "Lentil soup", Cuisine: "mediterranean", Category: models.CategoryLunch, Difficulty: models.DifficultyEasy,
			TotalTime: 40, Servings: 4, Nutrition: nutritionOf(520, 26, 70, 12, 14), AverageRating: 4.6, RatingCount: 120,
			DietaryTags: []string{"vegan", "vegetarian"}, StorageInstructions: "Refrigerate up to 4 days",
			Ingredients: []models.RecipeIngredient{{Name: "red lentils", Amount: 1, Unit: "cup"}}},
		{ID: "l2", Name: "Chicken wrap", Cuisine: "mexican", Category: models.CategoryLunch, Difficulty: models.DifficultyEasy,
			TotalTime: 20, Servings: 2, Nutrition: nutritionOf(610, 38, 55, 22, 6), AverageRating: 4.1, RatingCount: 30,
			Allergens: []string{"gluten"},
			Ingredients: []models.RecipeIngredient{{Name: "chicken breast", Amount: 1, Unit: "piece"}}},
		{ID: "l3", Name: "Quinoa salad", Cuisine: "mediterranean", Category: models.CategoryLunch, Difficulty: models.DifficultyEasy,
			TotalTime: 25, Servings: 2, Nutrition: nutritionOf(480, 16, 62, 18, 9), AverageRating: 3.8, RatingCount: 18,
			DietaryTags: []string{"vegan", "vegetarian", "gluten_free"}, Tags: []string{"salad", "fresh"}},
		{ID: "d1", Name: "Salmon traybake", Cuisine: "nordic", Category: models.CategoryDinner, Difficulty: models.DifficultyMedium,
			TotalTime: 45, Servings: 2, Nutrition: nutritionOf(690, 42, 40, 34, 7), AverageRating: 4.7, RatingCount: 95,
			DietaryTags: []string{"gluten_free"}, Allergens: []string{"fish"}, StorageInstructions: "Refrigerate up to 2 days",
			Equipment: []string{"oven"}},
		{ID: "d2", Name: "Chickpea curry", Cuisine: "indian", Category: models.CategoryDinner, Difficulty: models.DifficultyMedium,
			TotalTime: 50, Servings: 4, Nutrition: nutritionOf(640, 24, 80, 20, 15), AverageRating: 4.4, RatingCount: 60,
			DietaryTags: []string{"vegan", "vegetarian", "gluten_free"}, StorageInstructions: "Freeze up to 3 months"},
		{ID: "d3", Name: "Beef stir fry", Cuisine: "chinese", Category: models.CategoryDinner, Difficulty: models.DifficultyHard,
			TotalTime: 30, Servings: 2, Nutrition: nutritionOf(720, 45, 50, 30, 4), AverageRating: 4.0, RatingCount: 22,
			Allergens: []string{"soy"}, Equipment: []string{"wok"}},
		{ID: "s1", Name: "Apple and peanut butter", Cuisine: "american", Category: models.CategorySnack, Difficulty: models.DifficultyEasy,
			TotalTime: 5, Servings: 1, Nutrition: nutritionOf(250, 7, 28, 14, 5), AverageRating: 4.3, RatingCount: 55,
			DietaryTags: []string{"vegan", "vegetarian"}, Allergens: []string{"peanuts"}},
		{ID: "s2", Name: "Hummus and carrots", Cuisine: "mediterranean", Category: models.CategorySnack, Difficulty: models.DifficultyEasy,
			TotalTime: 5, Servings: 1, Nutrition: nutritionOf(210, 6, 22, 10, 6), AverageRating: 4.0, RatingCount: 20,
			DietaryTags: []string{"vegan", "vegetarian", "gluten_free"}, Allergens: []string{"sesame"}},
		{ID: "x1", Name: "Soggy toast", Cuisine: "british", Category: models.CategoryBreakfast, Difficulty: models.DifficultyEasy,
			TotalTime: 5, Servings: 1, Nutrition: nutritionOf(200, 5, 30, 6, 1), AverageRating: 2.1, RatingCount: 4},
	}
}
