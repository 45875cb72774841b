// Package mealplan generates meal plans from a recipe catalog and a user's
// dietary preferences.
package mealplan

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"nutrition-engine/logger"
	"nutrition-engine/models"
	"nutrition-engine/nutrition"
)

// GenerateRequest carries the caller's plan parameters. Zero targets fall
// back to the stored preferences, then to the configured defaults.
type GenerateRequest struct {
	UserID             string                    `json:"user_id"`
	Name               string                    `json:"name"`
	StartDate          time.Time                 `json:"start_date"`
	DurationDays       int                       `json:"duration_days"`
	CalorieTarget      float64                   `json:"calorie_target,omitempty"`
	ProteinTarget      float64                   `json:"protein_target,omitempty"`
	CarbTarget         float64                   `json:"carb_target,omitempty"`
	FatTarget          float64                   `json:"fat_target,omitempty"`
	Preferences        *models.DietaryPreference `json:"preferences,omitempty"`
	MealTypes          []models.MealType         `json:"meal_types,omitempty"`
	AvoidRepetition    bool                      `json:"avoid_repetition"`
	MaxRecipeReuseDays int                       `json:"max_recipe_reuse_days,omitempty"`
	MealPrepEnabled    bool                      `json:"meal_prep_enabled"`
	Cuisines           []string                  `json:"cuisines,omitempty"`
	MaxCookingTime     int                       `json:"max_cooking_time,omitempty"`
	MaxDifficulty      models.Difficulty         `json:"max_difficulty,omitempty"`
	ServingsPerMeal    float64                   `json:"servings_per_meal,omitempty"`
}

func (r *GenerateRequest) validate(maxDays int) error {
	switch {
	case r.UserID == "":
		return models.NewValidationError("user_id", "is required")
	case r.StartDate.IsZero():
		return models.NewValidationError("start_date", "is required")
	case r.DurationDays <= 0 || r.DurationDays > maxDays:
		return models.NewValidationError("duration_days", fmt.Sprintf("must be between 1 and %d", maxDays))
	case r.CalorieTarget < 0 || r.ProteinTarget < 0 || r.CarbTarget < 0 || r.FatTarget < 0:
		return models.NewValidationError("targets", "must not be negative")
	case r.MaxRecipeReuseDays < 0 || r.MaxCookingTime < 0 || r.ServingsPerMeal < 0:
		return models.NewValidationError("constraints", "must not be negative")
	}
	for _, mt := range r.MealTypes {
		if mt.Category() == models.CategoryUnknown {
			return models.NewValidationError("meal_types", "contains an unknown meal type")
		}
	}
	return nil
}

// Rebalancer adjusts meals for days whose macros miss their targets.
type Rebalancer interface {
	Rebalance(ctx context.Context, plan *models.MealPlan, meals []models.MealPlanMeal, flags []models.RebalanceFlag) ([]models.MealPlanMeal, error)
}

// Substituter replaces recipes used more often than the plan allows.
type Substituter interface {
	Substitute(ctx context.Context, plan *models.MealPlan, meals []models.MealPlanMeal, flags []models.VarietyFlag) ([]models.MealPlanMeal, error)
}

// logOnlyHooks records flags in the log and leaves meals untouched.
type logOnlyHooks struct {
	log *logger.Logger
}

func (h logOnlyHooks) Rebalance(_ context.Context, plan *models.MealPlan, meals []models.MealPlanMeal, flags []models.RebalanceFlag) ([]models.MealPlanMeal, error) {
	for _, f := range flags {
		h.log.Info("plan %s: %s on %s is %.1f%% off target", plan.ID, f.Nutrient, f.Date.Format(models.DateLayout), f.Deviation)
	}
	return meals, nil
}

func (h logOnlyHooks) Substitute(_ context.Context, plan *models.MealPlan, meals []models.MealPlanMeal, flags []models.VarietyFlag) ([]models.MealPlanMeal, error) {
	for _, f := range flags {
		h.log.Info("plan %s: recipe %s planned on %d days, limit %d", plan.ID, f.RecipeID, f.Days, f.Limit)
	}
	return meals, nil
}

type GeneratorOptions struct {
	Config *GenerationConfig
	// Rand, when set, is shared by every call behind a mutex. Otherwise each
	// call draws its own source from a stream seeded with Seed (0 = clock).
	Rand        Rand
	Seed        uint64
	Rebalancer  Rebalancer
	Substituter Substituter
}

// Generator builds, stores and revises meal plans. It is safe for concurrent
// use: every call works on its own selector and random source.
type Generator struct {
	recipes     models.RecipeRepository
	prefs       models.PreferenceRepository
	plans       models.MealPlanRepository
	cfg         GenerationConfig
	newRand     func() Rand
	calc        *nutrition.Calculator
	rebalancer  Rebalancer
	substituter Substituter
	log         *logger.Logger
	now         func() time.Time
}

func NewGenerator(recipes models.RecipeRepository, prefs models.PreferenceRepository, plans models.MealPlanRepository, log *logger.Logger, opts GeneratorOptions) *Generator {
	g := &Generator{
		recipes:     recipes,
		prefs:       prefs,
		plans:       plans,
		cfg:         DefaultGenerationConfig(),
		calc:        nutrition.NewCalculator(log),
		rebalancer:  opts.Rebalancer,
		substituter: opts.Substituter,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
	if opts.Config != nil {
		g.cfg = *opts.Config
	}
	if opts.Rand != nil {
		shared := &lockedRand{src: opts.Rand}
		g.newRand = func() Rand { return shared }
	} else {
		seeds := newSeedStream(opts.Seed)
		g.newRand = func() Rand { return NewRand(seeds.next()) }
	}
	hooks := logOnlyHooks{log: log}
	if g.rebalancer == nil {
		g.rebalancer = hooks
	}
	if g.substituter == nil {
		g.substituter = hooks
	}
	return g
}

// loadPreferences returns the stored preferences, or an empty set for users
// who never saved any.
func (g *Generator) loadPreferences(ctx context.Context, userID string) (*models.DietaryPreference, error) {
	prefs, err := g.prefs.Get(ctx, userID)
	if err != nil {
		return nil, models.NewPersistenceError("load dietary preferences", err)
	}
	if prefs == nil {
		prefs = &models.DietaryPreference{UserID: userID}
	}
	return prefs, nil
}

// targets resolves each daily goal: request, then preferences, then defaults.
func (g *Generator) targets(req *GenerateRequest, prefs *models.DietaryPreference) models.DailyTargets {
	pick := func(values ...float64) float64 {
		for _, v := range values {
			if v > 0 {
				return v
			}
		}
		return 0
	}
	cal := pick(req.CalorieTarget, prefs.CalorieTarget, g.cfg.DefaultCalories)
	return models.DailyTargets{
		Calories: cal,
		Protein:  round2(pick(req.ProteinTarget, prefs.ProteinTarget, nutrition.GramsForCalories(cal*g.cfg.ProteinShare, nutrition.Protein))),
		Carbs:    round2(pick(req.CarbTarget, prefs.CarbTarget, nutrition.GramsForCalories(cal*g.cfg.CarbShare, nutrition.Carbs))),
		Fat:      round2(pick(req.FatTarget, prefs.FatTarget, nutrition.GramsForCalories(cal*g.cfg.FatShare, nutrition.Fat))),
	}
}

func (g *Generator) transition(plan *models.MealPlan, next models.PlanStatus) error {
	if !plan.Status.CanTransition(next) {
		return fmt.Errorf("plan %s %s -> %s: %w", plan.ID, plan.Status, next, models.ErrInvalidTransition)
	}
	g.log.Debug("plan %s: %s -> %s", plan.ID, plan.Status, next)
	plan.Status = next
	return nil
}

// Generate fills every (date, meal type) slot and stores the plan with its
// meals in one step. Slots with no candidate stay empty and are counted in
// the plan metadata; a repository failure aborts the whole plan.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*models.MealPlan, error) {
	if err := req.validate(g.cfg.MaxDurationDays); err != nil {
		return nil, err
	}

	prefs := req.Preferences
	if prefs == nil {
		var err error
		if prefs, err = g.loadPreferences(ctx, req.UserID); err != nil {
			return nil, err
		}
	}

	mealTypes := req.MealTypes
	if len(mealTypes) == 0 {
		mealTypes = g.cfg.DefaultMealTypes
	}
	reuseDays := req.MaxRecipeReuseDays
	if reuseDays == 0 {
		reuseDays = g.cfg.MaxRecipeReuseDays
	}
	servings := req.ServingsPerMeal
	if servings == 0 {
		servings = g.cfg.DefaultServings
	}

	start := models.DateOnly(req.StartDate)
	now := g.now()
	plan := &models.MealPlan{
		ID:           uuid.New().String(),
		UserID:       req.UserID,
		Name:         req.Name,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, req.DurationDays-1),
		DurationDays: req.DurationDays,
		Targets:      g.targets(&req, prefs),
		MealTypes:    mealTypes,
		Constraints: models.PlanConstraints{
			AvoidRepetition:    req.AvoidRepetition,
			MaxRecipeReuseDays: reuseDays,
			MealPrepEnabled:    req.MealPrepEnabled,
			Cuisines:           req.Cuisines,
			MaxCookingTime:     req.MaxCookingTime,
			MaxDifficulty:      req.MaxDifficulty,
			ServingsPerMeal:    servings,
		},
		Status:    models.PlanDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if plan.Name == "" {
		plan.Name = fmt.Sprintf("Meal plan %s", start.Format(models.DateLayout))
	}
	if err := g.transition(plan, models.PlanGenerating); err != nil {
		return nil, err
	}

	rng := g.newRand()
	selector := NewSelector(g.recipes, g.cfg, rng, g.log)
	used := map[string][]time.Time{}
	recipes := map[string]models.Recipe{}
	var meals []models.MealPlanMeal

	for day := 0; day < req.DurationDays; day++ {
		date := start.AddDate(0, 0, day)
		for _, mt := range mealTypes {
			recipe, err := selector.SelectForSlot(ctx, SlotRequest{
				Preferences:  prefs,
				MealType:     mt,
				Date:         date,
				Constraints:  plan.Constraints,
				RecentlyUsed: used,
			})
			if errors.Is(err, models.ErrInsufficientData) {
				g.log.Warn("plan %s: %v", plan.ID, err)
				plan.Metadata.EmptySlots++
				continue
			}
			if err != nil {
				return nil, err
			}
			used[recipe.ID] = append(used[recipe.ID], date)
			recipes[recipe.ID] = *recipe
			meals = append(meals, g.newMeal(plan, recipe, date, mt, rng))
		}
	}

	meals, err := g.optimize(ctx, plan, meals, recipes)
	if err != nil {
		return nil, err
	}
	if err := g.transition(plan, models.PlanActive); err != nil {
		return nil, err
	}

	created, err := g.plans.Create(ctx, plan, meals)
	if err != nil {
		return nil, models.NewPersistenceError("create meal plan", err)
	}
	created.Meals = meals
	g.log.Info("generated plan %s for user %s: %d meals, %d empty slots",
		created.ID, created.UserID, len(meals), plan.Metadata.EmptySlots)
	return created, nil
}

// newMeal scales the recipe's per-serving macros by the plan's servings.
func (g *Generator) newMeal(plan *models.MealPlan, recipe *models.Recipe, date time.Time, mt models.MealType, rng Rand) models.MealPlanMeal {
	servings := plan.Constraints.ServingsPerMeal
	meal := models.MealPlanMeal{
		ID:            uuid.New().String(),
		MealPlanID:    plan.ID,
		RecipeID:      recipe.ID,
		RecipeName:    recipe.Name,
		Date:          date,
		MealType:      mt,
		Servings:      servings,
		PlannedMacros: macrosFor(recipe, servings),
		Status:        models.MealPlanned,
	}
	if plan.Constraints.MealPrepEnabled && g.prepEligible(recipe, mt) {
		window := g.cfg.PrepWindowMaxDays - g.cfg.PrepWindowMinDays + 1
		offset := g.cfg.PrepWindowMinDays + rng.IntN(max(window, 1))
		prep := date.AddDate(0, 0, -offset)
		meal.IsMealPrep = true
		meal.PrepDate = &prep
	}
	return meal
}

func macrosFor(recipe *models.Recipe, servings float64) models.Macros {
	n := nutrition.ScaleProfile(recipe.Nutrition, servings)
	return models.Macros{
		Calories: n.Calories,
		Protein:  n.Protein,
		Carbs:    n.Carbs,
		Fat:      n.Fat,
		Fiber:    n.Fiber,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
