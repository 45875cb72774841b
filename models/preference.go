package models

// DietaryPreference is a user's constraint set. Read-only to the generator.
type DietaryPreference struct {
	UserID               string     `json:"user_id"`
	Restrictions         []string   `json:"restrictions,omitempty"`
	Allergens            []string   `json:"allergens,omitempty"`
	PreferredCuisines    []string   `json:"preferred_cuisines,omitempty"`
	DislikedCuisines     []string   `json:"disliked_cuisines,omitempty"`
	PreferredIngredients []string   `json:"preferred_ingredients,omitempty"`
	DislikedIngredients  []string   `json:"disliked_ingredients,omitempty"`
	MaxCookingTime       int        `json:"max_cooking_time,omitempty"`
	MaxDifficulty        Difficulty `json:"max_difficulty,omitempty"`
	CalorieTarget        float64    `json:"calorie_target,omitempty"`
	ProteinTarget        float64    `json:"protein_target,omitempty"`
	CarbTarget           float64    `json:"carb_target,omitempty"`
	FatTarget            float64    `json:"fat_target,omitempty"`
	PrioritizeProtein    bool       `json:"prioritize_protein,omitempty"`
	HighFiber            bool       `json:"high_fiber,omitempty"`
	Equipment            []string   `json:"equipment,omitempty"`
	BudgetPerServing     float64    `json:"budget_per_serving,omitempty"`
}
