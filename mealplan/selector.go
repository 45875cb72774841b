package mealplan

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"nutrition-engine/logger"
	"nutrition-engine/models"
	"nutrition-engine/nutrition"
)

// SlotRequest describes one (date, meal type) slot to fill.
type SlotRequest struct {
	Preferences *models.DietaryPreference
	MealType    models.MealType
	Date        time.Time
	Constraints models.PlanConstraints
	// RecentlyUsed maps recipe IDs to the dates they were planned on.
	RecentlyUsed map[string][]time.Time
	// Exclude never returns these recipe IDs.
	Exclude map[string]bool
}

// ScoredRecipe is a candidate with its slot score.
type ScoredRecipe struct {
	Recipe models.Recipe
	Score  float64
}

// Selector picks recipes for meal slots. Candidate pools are fetched once
// per category and reused, so one Selector should serve one generation.
type Selector struct {
	recipes models.RecipeRepository
	cfg     GenerationConfig
	rng     Rand
	calc    *nutrition.Calculator
	log     *logger.Logger
	pools   map[models.MealCategory][]models.Recipe
}

func NewSelector(recipes models.RecipeRepository, cfg GenerationConfig, rng Rand, log *logger.Logger) *Selector {
	return &Selector{
		recipes: recipes,
		cfg:     cfg,
		rng:     rng,
		calc:    nutrition.NewCalculator(log),
		log:     log,
		pools:   map[models.MealCategory][]models.Recipe{},
	}
}

func (s *Selector) pool(ctx context.Context, category models.MealCategory) ([]models.Recipe, error) {
	if p, ok := s.pools[category]; ok {
		return p, nil
	}
	p, err := s.recipes.FindCandidates(ctx, models.RecipeCriteria{Category: category, MinRating: s.cfg.MinRating})
	if err != nil {
		return nil, models.NewPersistenceError("load recipe candidates", err)
	}
	for i := range p {
		s.calc.FillRecipe(&p[i])
	}
	s.pools[category] = p
	return p, nil
}

// candidates applies the hard constraints and, when asked, the variety filter.
// The variety filter is dropped if it would leave nothing.
func (s *Selector) candidates(ctx context.Context, req SlotRequest, variety bool) ([]models.Recipe, error) {
	category := req.MealType.Category()
	if category == models.CategoryUnknown {
		return nil, models.NewValidationError("meal_type", "is not a plannable slot")
	}
	pool, err := s.pool(ctx, category)
	if err != nil {
		return nil, err
	}

	prefs := req.Preferences
	if prefs == nil {
		prefs = &models.DietaryPreference{}
	}
	limits := newHardLimits(prefs, req.Constraints, s.cfg.MinRating, req.Exclude)

	allowed := make([]models.Recipe, 0, len(pool))
	for i := range pool {
		if reason := limits.reject(&pool[i]); reason != "" {
			s.log.Debug("recipe %s rejected for %s: %s", pool[i].ID, req.MealType, reason)
			continue
		}
		allowed = append(allowed, pool[i])
	}
	if !variety || !req.Constraints.AvoidRepetition || len(req.RecentlyUsed) == 0 {
		return allowed, nil
	}

	reuseDays := req.Constraints.MaxRecipeReuseDays
	if reuseDays <= 0 {
		reuseDays = s.cfg.MaxRecipeReuseDays
	}
	fresh := make([]models.Recipe, 0, len(allowed))
	for _, r := range allowed {
		if !usedWithin(req.RecentlyUsed[r.ID], req.Date, reuseDays) {
			fresh = append(fresh, r)
		}
	}
	if len(fresh) == 0 && len(allowed) > 0 {
		s.log.Debug("%v: variety filter emptied %s pool on %s, ignoring it",
			models.ErrConstraintUnsatisfiable, req.MealType, req.Date.Format(models.DateLayout))
		return allowed, nil
	}
	return fresh, nil
}

func usedWithin(dates []time.Time, date time.Time, days int) bool {
	for _, d := range dates {
		if int(math.Abs(float64(models.DaysBetween(d, date)))) < days {
			return true
		}
	}
	return false
}

// RankCandidates scores every allowed candidate for the slot, best first.
// Ties break on recipe ID so the order is stable.
func (s *Selector) RankCandidates(ctx context.Context, req SlotRequest) ([]ScoredRecipe, error) {
	return s.rank(ctx, req, true)
}

func (s *Selector) rank(ctx context.Context, req SlotRequest, variety bool) ([]ScoredRecipe, error) {
	pool, err := s.candidates(ctx, req, variety)
	if err != nil {
		return nil, err
	}
	prefs := scoringPreferences(req)
	ranked := make([]ScoredRecipe, len(pool))
	for i := range pool {
		ranked[i] = ScoredRecipe{Recipe: pool[i], Score: Score(&pool[i], prefs, req.MealType, req.Date)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Recipe.ID < ranked[j].Recipe.ID
	})
	return ranked, nil
}

// scoringPreferences folds the plan's cooking time limit into the user's so
// the time penalty sees the tighter of the two.
func scoringPreferences(req SlotRequest) *models.DietaryPreference {
	var prefs models.DietaryPreference
	if req.Preferences != nil {
		prefs = *req.Preferences
	}
	prefs.MaxCookingTime = minPositive(prefs.MaxCookingTime, req.Constraints.MaxCookingTime)
	return &prefs
}

// SelectForSlot picks uniformly among the top candidates so repeated plans
// differ. An empty pool returns an error wrapping models.ErrInsufficientData.
func (s *Selector) SelectForSlot(ctx context.Context, req SlotRequest) (*models.Recipe, error) {
	ranked, err := s.RankCandidates(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("no %s candidates for %s: %w",
			req.MealType, req.Date.Format(models.DateLayout), models.ErrInsufficientData)
	}
	top := min(s.cfg.TopCandidates, len(ranked))
	if top < 1 {
		top = 1
	}
	pick := ranked[s.rng.IntN(top)].Recipe
	return &pick, nil
}
